// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/storage"
)

// failingStorage fails Set for one key
type failingStorage struct {
	*storage.Memory
	failKey string
}

func (f *failingStorage) Set(ctx context.Context, key, value string) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.Memory.Set(ctx, key, value)
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := NewStore(mem)

	if err := s.Login(ctx, "t1", "alice"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	got := s.Current()
	if got.Token != "t1" || got.Username != "alice" || !got.Authenticated() {
		t.Errorf("Unexpected session after login: %+v", got)
	}
	if v, _, _ := mem.Get(ctx, models.KeyToken); v != "t1" {
		t.Errorf("Expected token persisted, got %q", v)
	}
	if v, _, _ := mem.Get(ctx, models.KeyUsername); v != "alice" {
		t.Errorf("Expected username persisted, got %q", v)
	}

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	got = s.Current()
	if got.Token != "" || got.Username != "" || got.Authenticated() {
		t.Errorf("Expected empty session after logout, got %+v", got)
	}
	if mem.Len() != 0 {
		t.Errorf("Expected durable storage cleared, got %d keys", mem.Len())
	}
}

func TestLogin_RequiresBothFields(t *testing.T) {
	s := NewStore(storage.NewMemory())
	for _, tc := range [][2]string{{"", "alice"}, {"t1", ""}, {"", ""}} {
		if err := s.Login(context.Background(), tc[0], tc[1]); !errors.Is(err, ErrInvalidSession) {
			t.Errorf("Login(%q, %q): expected ErrInvalidSession, got %v", tc[0], tc[1], err)
		}
	}
	if s.Current().Authenticated() {
		t.Error("Expected session to stay logged out")
	}
}

func TestLogin_PartialPersistRollsBack(t *testing.T) {
	ctx := context.Background()
	fs := &failingStorage{Memory: storage.NewMemory(), failKey: models.KeyUsername}
	s := NewStore(fs)

	if err := s.Login(ctx, "t1", "alice"); err == nil {
		t.Fatal("Expected login to fail")
	}
	if s.Current().Authenticated() {
		t.Error("Session should not change when persisting fails")
	}
	if _, ok, _ := fs.Get(ctx, models.KeyToken); ok {
		t.Error("Token should not be left behind without a username")
	}
}

func TestHydrate(t *testing.T) {
	ctx := context.Background()

	t.Run("complete pair", func(t *testing.T) {
		mem := storage.NewMemory()
		mem.Set(ctx, models.KeyToken, "t1")
		mem.Set(ctx, models.KeyUsername, "alice")

		s := NewStore(mem)
		if s.Current().Authenticated() {
			t.Error("Session should read as logged out before hydration")
		}
		if err := s.Hydrate(ctx); err != nil {
			t.Fatal(err)
		}
		if got := s.Current(); got.Token != "t1" || got.Username != "alice" {
			t.Errorf("Unexpected hydrated session: %+v", got)
		}
	})

	t.Run("token only", func(t *testing.T) {
		mem := storage.NewMemory()
		mem.Set(ctx, models.KeyToken, "t1")

		s := NewStore(mem)
		if err := s.Hydrate(ctx); err != nil {
			t.Fatal(err)
		}
		if s.Current().Authenticated() {
			t.Error("Half-present session should hydrate as logged out")
		}
	})

	t.Run("only once", func(t *testing.T) {
		mem := storage.NewMemory()
		s := NewStore(mem)
		if err := s.Hydrate(ctx); err != nil {
			t.Fatal(err)
		}

		mem.Set(ctx, models.KeyToken, "late")
		mem.Set(ctx, models.KeyUsername, "mallory")
		if err := s.Hydrate(ctx); err != nil {
			t.Fatal(err)
		}
		if s.Current().Authenticated() {
			t.Error("Second Hydrate must not re-read storage")
		}
	})
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemory())

	var seen []Session
	unsubscribe := s.Subscribe(func(sess Session) {
		seen = append(seen, sess)
	})

	s.Login(ctx, "t1", "alice")
	// Notification is synchronous
	if len(seen) != 1 || seen[0].Username != "alice" {
		t.Fatalf("Expected one login notification, got %+v", seen)
	}

	s.Logout(ctx)
	if len(seen) != 2 || seen[1].Authenticated() {
		t.Fatalf("Expected logout notification, got %+v", seen)
	}

	unsubscribe()
	s.Login(ctx, "t2", "bob")
	if len(seen) != 2 {
		t.Errorf("Expected no notification after unsubscribe, got %d", len(seen))
	}
}

func TestProviderScope(t *testing.T) {
	ctx := context.Background()

	if err := Login(ctx, "t1", "alice"); !errors.Is(err, ErrNoProvider) {
		t.Errorf("Expected ErrNoProvider from Login, got %v", err)
	}
	if err := Logout(ctx); !errors.Is(err, ErrNoProvider) {
		t.Errorf("Expected ErrNoProvider from Logout, got %v", err)
	}
	if Current(ctx).Authenticated() {
		t.Error("Current outside a provider should read as logged out")
	}

	s := NewStore(storage.NewMemory())
	ctx = WithStore(ctx, s)

	if err := Login(ctx, "t1", "alice"); err != nil {
		t.Fatalf("Login within provider failed: %v", err)
	}
	if Current(ctx).Username != "alice" {
		t.Errorf("Expected alice, got %+v", Current(ctx))
	}
	if err := Logout(ctx); err != nil {
		t.Fatalf("Logout within provider failed: %v", err)
	}

	var nilStore *Store
	if nilStore.Current().Authenticated() {
		t.Error("nil store should read as logged out")
	}
}
