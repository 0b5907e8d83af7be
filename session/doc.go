// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session holds the viewer's bearer token and username.

A single Store is created at startup, hydrated once from durable storage
and installed into the root context:

	store := session.NewStore(st)
	if err := store.Hydrate(ctx); err != nil {
		slog.Warn("could not restore session", "error", err)
	}
	ctx = session.WithStore(ctx, store)

Views read it with session.Current(ctx). Only Login and Logout mutate
it; both persist first and then notify subscribers synchronously.
Calling the package-level Login or Logout on a context without a store
returns ErrNoProvider.
*/
package session
