// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package api is the client for the QuickPoll REST backend.

# Endpoints

	POST   /auth/register        Register
	POST   /auth/login           Login
	GET    /polls/               ListPolls
	GET    /polls/{id}           GetPoll
	POST   /polls/               CreatePoll   (token)
	DELETE /polls/{id}           DeletePoll   (token)
	POST   /votes/               Vote         (token)
	GET    /votes/user/{pollId}  UserVote     (token)
	POST   /likes/{pollId}       ToggleLike   (token)
	GET    /likes/user/{pollId}  UserLike     (token)

Calls that need a session return ErrNoToken without touching the network
when the token is empty.

# Errors

Non-2xx answers become *Error, carrying the status and the server's
message (taken from "error", "message" or "detail", in that order).
ErrUnauthorized and ErrNotFound match through errors.Is:

	if errors.Is(err, api.ErrUnauthorized) {
		// prompt for login
	}

# Transport

Requests pass through the middleware chain, which tags each one with an
X-Request-ID and logs it at debug level. Requests are never retried
because ToggleLike is not idempotent. Cancellation follows the caller's
context.
*/
package api
