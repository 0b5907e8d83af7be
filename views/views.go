// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/quickpoll/events"
	"github.com/danielhkuo/quickpoll/live"
	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/session"
)

var (
	ErrLoginRequired   = errors.New("login required")
	ErrNoSelection     = errors.New("no option selected")
	ErrVoteFailed      = errors.New("vote failed")
	ErrNotOwner        = errors.New("only the poll creator can delete this poll")
	ErrDeleteCancelled = errors.New("delete cancelled")
)

// API is the slice of the REST client a poll card needs
type API interface {
	Vote(ctx context.Context, token string, pollID, optionID models.ID) error
	UserVote(ctx context.Context, token string, pollID models.ID) (models.UserVoteResponse, error)
	ToggleLike(ctx context.Context, token string, pollID models.ID) (models.LikeResponse, error)
	UserLike(ctx context.Context, token string, pollID models.ID) (models.UserLikeResponse, error)
	DeletePoll(ctx context.Context, token string, id models.ID) error
}

// Lister fetches the poll index
type Lister interface {
	ListPolls(ctx context.Context) ([]models.Poll, error)
}

// Stream is an open live channel
type Stream interface {
	Messages() <-chan models.Push
	Close() error
}

// Subscriber opens live channels
type Subscriber interface {
	Poll(ctx context.Context, id models.ID) (Stream, error)
	Global(ctx context.Context) (Stream, error)
}

// Viewer reports who is looking. *session.Store implements it.
type Viewer interface {
	Current() session.Session
}

// Deps are the capabilities shared by every view. Subscriber and Bus may
// be nil, in which case there are no live updates or removal broadcasts.
type Deps struct {
	API        API
	Subscriber Subscriber
	Viewer     Viewer
	Bus        *events.Bus
}

// Options select the behaviour of one page's cards
type Options struct {
	// AllowDelete offers deletion to the poll creator
	AllowDelete bool

	// Prompt is called when a gated action is attempted without a session
	Prompt func()

	// Confirm must return true before a delete is sent. A nil Confirm
	// declines every delete.
	Confirm func(models.Poll) bool

	Logger *slog.Logger

	// OnChange receives a fresh snapshot after every state change. Calls
	// for one view are serialized.
	OnChange func(PollState)

	// OnListChange is called by ListView after polls are added or removed
	OnListChange func(ids []models.ID)
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// OptionState is one option as displayed
type OptionState struct {
	ID       models.ID
	Text     string
	Votes    int
	Percent  float64
	Selected bool
}

// PollState is a consistent copy of a card's state
type PollState struct {
	ID          models.ID
	Title       string
	Description string
	Creator     string
	CreatedAt   time.Time

	Options    []OptionState
	TotalVotes int

	Likes int
	Liked bool

	HasVoted         bool
	SelectedOptionID models.ID

	CanDelete bool
	Deleting  bool
}

// ShowResults reports whether percentages are displayed
func (s PollState) ShowResults() bool {
	return s.HasVoted || s.TotalVotes > 0
}

// LiveSubscriber adapts a live.Dialer
func LiveSubscriber(d *live.Dialer) Subscriber {
	return liveSubscriber{d: d}
}

type liveSubscriber struct {
	d *live.Dialer
}

func (l liveSubscriber) Poll(ctx context.Context, id models.ID) (Stream, error) {
	sub, err := l.d.Poll(ctx, id)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (l liveSubscriber) Global(ctx context.Context) (Stream, error) {
	sub, err := l.d.Global(ctx)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
