package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Durable storage keys for the session
const (
	KeyToken    = "token"
	KeyUsername = "username"
)

// ID is a backend identifier. The backend is not consistent about
// sending ids as strings or numbers, so both are accepted.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Timestamp accepts RFC 3339 as well as the zone-less layouts some
// backends emit for naive datetimes (interpreted as UTC).
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339Nano))
}

// Request types

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

type OptionInput struct {
	Text string `json:"text" validate:"required"`
}

type CreatePollRequest struct {
	Title       string        `json:"title" validate:"required,max=200"`
	Description string        `json:"description"`
	Options     []OptionInput `json:"options" validate:"min=2,dive"`
}

type VoteRequest struct {
	PollID   ID `json:"poll_id"`
	OptionID ID `json:"option_id"`
}

// Response types

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	Username    string `json:"username"`
}

type RegisterResponse struct {
	ID       ID     `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Message  string `json:"message,omitempty"`
}

type UserVoteResponse struct {
	Voted    bool `json:"voted"`
	OptionID ID   `json:"option_id,omitempty"`
}

// LikeResponse fields are optional; absent fields leave the caller's
// optimistic value in place.
type LikeResponse struct {
	Liked *bool `json:"liked,omitempty"`
	Likes *int  `json:"likes,omitempty"`
}

type UserLikeResponse struct {
	Liked bool `json:"liked"`
}

// Domain types

type Option struct {
	ID    ID     `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type Poll struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Options     []Option  `json:"options"`
	LikesCount  int       `json:"likes_count"`
	CreatedAt   Timestamp `json:"created_at"`
	CreatedBy   string    `json:"created_by,omitempty"`
}

// Creator returns the poll author, or "Anonymous" when the backend
// did not send one.
func (p Poll) Creator() string {
	if p.CreatedBy == "" {
		return "Anonymous"
	}
	return p.CreatedBy
}

// Error response

// ErrorResponse covers the error shapes the backend sends: {"error"},
// {"message"} and {"detail"} where detail may be a string or a list of
// validation problems.
type ErrorResponse struct {
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Detail  json.RawMessage `json:"detail,omitempty"`
}

// Text returns the most readable message in the payload.
func (e ErrorResponse) Text() string {
	if e.Error != "" {
		return e.Error
	}
	if e.Message != "" {
		return e.Message
	}
	if len(e.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(e.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
