// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package storage provides durable key/value state for the client.

It plays the role browser local storage plays for a web front-end: the
session package keeps the bearer token and username here under the fixed
keys "token" and "username".

# Backends

  - SQL: local_storage table in sqlite (default) or postgres
  - Redis: fields of the quickpoll:storage hash
  - Memory: process-local, for tests and throwaway sessions

Open selects one from the configuration:

	st, closer, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
*/
package storage
