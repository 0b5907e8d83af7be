// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line flags and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

The cobra root command registers the same flags as persistent flags and
calls Resolve once they are parsed:

	cliparse.RegisterFlags(cmd.PersistentFlags(), &cfg)
	// ...
	cfg, err = cliparse.Resolve(cfg)

# Config Fields

  - APIURL: Backend REST base URL (default: production backend)
  - WSURL: Live channel base URL (default: production backend)
  - StorageType: sqlite, postgres, redis or memory (default: sqlite)
  - StorageURL: File path, DSN or redis address
  - Verbose: Debug logging

# CLI Flags

	--api               Backend API base URL
	--ws                Live channel base URL
	-s, --storage       Session storage backend
	-d, --storage-url   Session storage location
	-c, --config        YAML config file
	-v, --verbose       Debug logging

# Precedence

Flags, then environment variables, then a .env file in the working
directory, then the YAML config file, then defaults:

	QUICKPOLL_API_URL → --api
	QUICKPOLL_WS_URL  → --ws
	STORAGE_TYPE      → -s
	STORAGE_URL       → -d
	QUICKPOLL_CONFIG  → -c

# Validation

  - API URL must be http(s), live channel URL must be ws(s)
  - Storage type must be known
  - postgres and redis storage need a URL
*/
package cliparse
