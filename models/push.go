// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"errors"
)

// Push message types sent by the backend
const (
	PushTypeLikeUpdate = "like_update"
	PushTypeNewPoll    = "new_poll"
)

var (
	ErrMissingPollID = errors.New("push message has no poll_id")
	ErrEmptyPush     = errors.New("push message carries no known fields")
)

// Push is one decoded live-channel message. The set of implementations
// is closed: VoteSnapshot, LikeUpdate, NewPoll and Unknown.
type Push interface {
	push()
}

// VoteSnapshot replaces a poll's option vote counts.
type VoteSnapshot struct {
	PollID  ID
	Options []Option
}

// LikeUpdate replaces a poll's like count.
type LikeUpdate struct {
	PollID ID
	Likes  int
}

// NewPoll announces a freshly created poll on the global channel.
type NewPoll struct {
	Poll Poll
}

// Unknown is anything that could not be decoded into the other variants.
// Consumers drop it.
type Unknown struct {
	Raw string
	Err error
}

func (VoteSnapshot) push() {}
func (LikeUpdate) push()   {}
func (NewPoll) push()      {}
func (Unknown) push()      {}

type pushEnvelope struct {
	Type    string          `json:"type"`
	PollID  ID              `json:"poll_id"`
	Options json.RawMessage `json:"options"`
	Likes   *int            `json:"likes"`
	ID      ID              `json:"id"`
	Title   string          `json:"title"`
}

// DecodePush turns one frame into push variants. A single frame may carry
// both an options array and a like count, in which case a VoteSnapshot
// and a LikeUpdate are returned in that order. Frames that fit nothing
// yield exactly one Unknown.
func DecodePush(raw []byte) []Push {
	var env pushEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return []Push{Unknown{Raw: string(raw), Err: err}}
	}

	if env.Type == PushTypeNewPoll {
		if env.ID == "" || env.Title == "" {
			return []Push{Unknown{Raw: string(raw), Err: errors.New("new_poll without id or title")}}
		}
		var p Poll
		if err := json.Unmarshal(raw, &p); err != nil {
			return []Push{Unknown{Raw: string(raw), Err: err}}
		}
		return []Push{NewPoll{Poll: p}}
	}

	if env.PollID == "" {
		return []Push{Unknown{Raw: string(raw), Err: ErrMissingPollID}}
	}

	var out []Push
	if isJSONArray(env.Options) {
		var opts []Option
		if err := json.Unmarshal(env.Options, &opts); err != nil {
			return []Push{Unknown{Raw: string(raw), Err: err}}
		}
		out = append(out, VoteSnapshot{PollID: env.PollID, Options: opts})
	}
	if env.Likes != nil {
		out = append(out, LikeUpdate{PollID: env.PollID, Likes: *env.Likes})
	}
	if len(out) == 0 {
		return []Push{Unknown{Raw: string(raw), Err: ErrEmptyPush}}
	}
	return out
}

func isJSONArray(b json.RawMessage) bool {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
