// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/storage"
)

var (
	ErrNoProvider     = errors.New("session: used outside a session provider")
	ErrInvalidSession = errors.New("session: token and username are both required")
)

// Session is the viewer's identity. The zero value is unauthenticated.
type Session struct {
	Token    string
	Username string
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

type subscriber struct {
	id int
	fn func(Session)
}

// Store owns the one Session shared by every view. Only Login and Logout
// change it.
type Store struct {
	st storage.Storage

	mu       sync.RWMutex
	cur      Session
	hydrated bool
	subs     []subscriber
	nextID   int
}

func NewStore(st storage.Storage) *Store {
	return &Store{st: st}
}

// Hydrate loads the persisted session. Only the first call reads storage.
// A half-present pair (token without username or the reverse) is treated
// as logged out.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return nil
	}
	s.hydrated = true

	token, hasToken, err := s.st.Get(ctx, models.KeyToken)
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	username, hasUser, err := s.st.Get(ctx, models.KeyUsername)
	if err != nil {
		return fmt.Errorf("load username: %w", err)
	}

	if hasToken && hasUser && token != "" && username != "" {
		s.cur = Session{Token: token, Username: username}
	} else if hasToken || hasUser {
		slog.Warn("ignoring incomplete stored session", "has_token", hasToken, "has_username", hasUser)
	}
	return nil
}

// Current returns the session. A nil Store reads as logged out.
func (s *Store) Current() Session {
	if s == nil {
		return Session{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Login persists token and username and then notifies subscribers.
func (s *Store) Login(ctx context.Context, token, username string) error {
	if token == "" || username == "" {
		return ErrInvalidSession
	}

	if err := s.st.Set(ctx, models.KeyToken, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.st.Set(ctx, models.KeyUsername, username); err != nil {
		// keep storage from holding a token with no username
		if derr := s.st.Delete(ctx, models.KeyToken); derr != nil {
			slog.Error("failed to undo partial login", "error", derr)
		}
		return fmt.Errorf("persist username: %w", err)
	}

	s.set(Session{Token: token, Username: username})
	slog.Info("logged in", "username", username)
	return nil
}

// Logout clears storage and then notifies subscribers.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.st.Delete(ctx, models.KeyToken, models.KeyUsername); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	s.set(Session{})
	slog.Info("logged out")
	return nil
}

func (s *Store) set(next Session) {
	s.mu.Lock()
	s.cur = next
	s.hydrated = true
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(next)
	}
}

// Subscribe registers fn to be called synchronously after every Login
// and Logout. The returned func removes it.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

type ctxKey struct{}

// WithStore returns a context that provides s to everything below it.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the provided Store or ErrNoProvider.
func FromContext(ctx context.Context) (*Store, error) {
	s, ok := ctx.Value(ctxKey{}).(*Store)
	if !ok || s == nil {
		return nil, ErrNoProvider
	}
	return s, nil
}

// Current reads the provided session. Outside a provider it reads as
// logged out rather than failing.
func Current(ctx context.Context) Session {
	s, err := FromContext(ctx)
	if err != nil {
		return Session{}
	}
	return s.Current()
}

// Login logs in on the provided Store.
func Login(ctx context.Context, token, username string) error {
	s, err := FromContext(ctx)
	if err != nil {
		return err
	}
	return s.Login(ctx, token, username)
}

// Logout logs out on the provided Store.
func Logout(ctx context.Context) error {
	s, err := FromContext(ctx)
	if err != nil {
		return err
	}
	return s.Logout(ctx)
}
