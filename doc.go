// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the quickpoll terminal client.

QuickPoll lets people create polls, vote once per poll, like polls and
watch vote counts and likes change live. This client talks to the
QuickPoll backend over REST and websockets and remembers the logged-in
session between runs.

# Running

	go run . polls
	go run . login -u alice
	go run . create -t "Lunch?" -o Pizza -o Sushi
	go run . watch

# Configuration

Flags win over environment, which wins over a .env file, which wins over
the YAML config file:

  - QUICKPOLL_API_URL (--api): backend REST base URL
  - QUICKPOLL_WS_URL (--ws): live channel base URL
  - STORAGE_TYPE (-s): sqlite (default), postgres, redis or memory
  - STORAGE_URL (-d): sqlite file, postgres DSN or redis address
  - QUICKPOLL_CONFIG (-c): YAML config file

# Architecture

  - router: cobra command tree and exit codes
  - handlers: command bodies and terminal output
  - views: poll card and poll list view-models
  - render: text rendering of poll cards
  - api: REST client
  - live: websocket push channels
  - session: session store and provider scope
  - storage, db: durable key/value storage for the session
  - events: in-process poll removal bus
  - middleware: HTTP client transport (logging, request ids, bearer token)
  - auth: form validation and token helpers
  - models: wire types and the push message union
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
