// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides bearer token helpers and form validation.

# Bearer Tokens

Authenticated calls carry the session token:

	req.Header.Set("Authorization", auth.BearerHeader(token))

ParseBearer is the inverse and returns ErrInvalidToken for anything that
is not "Bearer <token>".

# Form Validation

Forms are validated with go-playground/validator tags declared on the
request models, and failures come back as ValidationErrors with readable
messages:

  - ValidateRegister: username 2-50 chars, valid email, password >= 6
  - ValidateLogin: username and password required
  - NormalizeCreatePoll: trims fields, drops blank options, requires a
    title and at least two options

# Identifiers

GenerateID creates random hex ids; the fake backend in testutil uses it
for polls and options.
*/
package auth
