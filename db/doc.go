// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the SQL databases used for durable client state and
creates their schema.

# Drivers

Open picks the driver from the storage type:

  - sqlite: modernc.org/sqlite (pure Go, default)
  - postgres: github.com/lib/pq

	conn, err := db.Open("sqlite", "/home/me/.config/quickpoll/quickpoll.db")

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS.

# Tables

  - local_storage: key/value pairs standing in for browser local storage
    (session token and username)
*/
package db
