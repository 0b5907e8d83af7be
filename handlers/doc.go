// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the page logic behind the QuickPoll commands.

# Handler Types

Each handler is a struct holding the REST client and the terminal:

  - AuthHandler: register, login, logout and whoami
  - PollHandler: the index, single cards, poll creation, card actions
    and the live watch views

Handlers are created via constructor functions:

	authHandler := handlers.NewAuthHandler(client, os.Stdout)
	pollHandler := handlers.NewPollHandler(client, dialer, os.Stdout, os.Stdin)

The session comes from the context (session.WithStore); handlers never
touch storage directly.

# Pages

	polls                     → List (index page)
	show <poll>               → Show
	create                    → Create (requires login)
	vote <poll> <option>      → Vote
	like <poll>               → Like (toggles)
	delete <poll> [--yes]     → Delete (owner only, asks first)
	watch                     → Watch (live index with card actions)
	watch <poll>              → WatchPoll (live card)

Login-gated actions without a session print the login prompt and return
views.ErrLoginRequired.

# Live Index

Watch prints the list, then reprints every card that changes. It reads
one action per input line:

	vote <poll> <option>
	like <poll>
	delete <poll>
	list
	quit

A delete there removes the card from the running list through the
events bus. Output from commands and from live updates is serialized.
*/
package handlers
