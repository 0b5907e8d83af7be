// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/session"
)

var errBackend = errors.New("backend unavailable")

type fakeViewer session.Session

func (f fakeViewer) Current() session.Session { return session.Session(f) }

var (
	alice     = fakeViewer{Token: "tok-alice", Username: "alice"}
	bob       = fakeViewer{Token: "tok-bob", Username: "bob"}
	anonymous = fakeViewer{}
)

type fakeAPI struct {
	mu sync.Mutex

	userVote    models.UserVoteResponse
	userVoteErr error
	userLike    models.UserLikeResponse
	userLikeErr error

	voteErr   error
	votes     []models.ID
	likeErr   error
	likeRes   *models.LikeResponse
	likeCalls int
	deleteErr error
	deleted   []models.ID
	lookups   int

	// likeStarted receives once per ToggleLike before it waits on likeGate
	likeStarted chan struct{}
	likeGate    chan struct{}
	inFlight    int
	maxInFlight int
}

func (f *fakeAPI) Vote(ctx context.Context, token string, pollID, optionID models.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votes = append(f.votes, optionID)
	return f.voteErr
}

func (f *fakeAPI) UserVote(ctx context.Context, token string, pollID models.ID) (models.UserVoteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	return f.userVote, f.userVoteErr
}

func (f *fakeAPI) UserLike(ctx context.Context, token string, pollID models.ID) (models.UserLikeResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	return f.userLike, f.userLikeErr
}

func (f *fakeAPI) ToggleLike(ctx context.Context, token string, pollID models.ID) (models.LikeResponse, error) {
	f.mu.Lock()
	f.likeCalls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	started, gate := f.likeStarted, f.likeGate
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	if f.likeErr != nil {
		return models.LikeResponse{}, f.likeErr
	}
	if f.likeRes != nil {
		return *f.likeRes, nil
	}
	return models.LikeResponse{}, nil
}

func (f *fakeAPI) DeletePoll(ctx context.Context, token string, id models.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) voteCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.votes)
}

type fakeLister struct {
	polls []models.Poll
	err   error
}

func (f fakeLister) ListPolls(ctx context.Context) ([]models.Poll, error) {
	return f.polls, f.err
}

type fakeStream struct {
	ch     chan models.Push
	mu     sync.Mutex
	closed bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{ch: make(chan models.Push, 16)}
}

func (s *fakeStream) Messages() <-chan models.Push { return s.ch }

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}

func (s *fakeStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeSubscriber struct {
	mu      sync.Mutex
	polls   map[models.ID]*fakeStream
	global  *fakeStream
	pollErr error
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{polls: make(map[models.ID]*fakeStream)}
}

func (f *fakeSubscriber) Poll(ctx context.Context, id models.ID) (Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	s := newFakeStream()
	f.polls[id] = s
	return s, nil
}

func (f *fakeSubscriber) Global(ctx context.Context) (Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.global = newFakeStream()
	return f.global, nil
}

func (f *fakeSubscriber) stream(id models.ID) *fakeStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls[id]
}

func samplePoll(id models.ID, creator string, votes ...int) models.Poll {
	p := models.Poll{ID: id, Title: "Poll " + string(id), CreatedBy: creator}
	names := []string{"A", "B", "C", "D"}
	for i, n := range votes {
		p.Options = append(p.Options, models.Option{ID: models.ID(names[i]), Text: names[i], Votes: n})
	}
	return p
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met: %s", msg)
}
