// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the wire types exchanged with the QuickPoll backend.

# Request Types

Types sent as JSON bodies:

  - RegisterRequest: username, email, password
  - LoginRequest: username, email (optional), password
  - CreatePollRequest: title, description, options[{text}]
  - VoteRequest: poll_id, option_id

# Response Types

  - LoginResponse: access_token, username
  - UserVoteResponse: voted, option_id
  - LikeResponse: liked, likes (both optional)
  - UserLikeResponse: liked
  - ErrorResponse: error | message | detail

# Domain Types

  - Poll: id, title, description, options, likes_count, created_at, created_by
  - Option: id, text, votes

IDs are decoded from either JSON strings or numbers into ID.

# Push Messages

Live-channel frames are decoded at the boundary into a closed set of
variants:

	for _, p := range models.DecodePush(frame) {
		switch m := p.(type) {
		case models.VoteSnapshot: // replaces option counts
		case models.LikeUpdate:   // replaces like count
		case models.NewPoll:      // global channel only
		case models.Unknown:      // dropped
		}
	}
*/
package models
