// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the quickpoll command tree.

# Command Registration

NewRootCommand returns the cobra root with every command attached:

	cmd := router.NewRootCommand()
	err := cmd.ExecuteContext(ctx)
	os.Exit(router.ExitCode(err))

# Commands

Account (the register and login pages, the navbar):

	register -u NAME -e EMAIL [-p PASSWORD] [--confirm-password PASSWORD]
	login    -u NAME [-e EMAIL] [-p PASSWORD]
	logout
	whoami

Polls:

	polls                     - List polls, newest first
	show <poll>               - One poll card
	create -t TITLE -o A -o B - New poll (requires login)

Actions:

	vote <poll> <option>  - Vote once
	like <poll>           - Toggle like
	delete <poll> [--yes] - Delete a poll you created
	watch [poll]          - Live index or live card until interrupted

Missing passwords are asked for on standard input.

# Global Flags

	--api URL            backend REST base URL
	--ws URL             live channel base URL
	-s, --storage TYPE   sqlite, postgres, redis or memory
	-d, --storage-url    file path, DSN or redis address
	-c, --config FILE    YAML config file
	-v, --verbose        debug logging on stderr

# Lifecycle

Before any command runs, the persistent pre-run resolves configuration,
opens session storage, hydrates the session store once and installs it
in the command context with session.WithStore. Storage is closed when
the command returns, whether or not it failed.

# Exit Codes

	0  success
	1  command failed (ExitFailure)
	2  configuration or storage error (ExitCommandError)
*/
package router
