// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/testutil"
)

func TestRegisterAndLogin(t *testing.T) {
	backend := testutil.NewBackend(t)
	client := New(backend.APIURL())
	ctx := context.Background()

	reg, err := client.Register(ctx, models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Username != "alice" {
		t.Errorf("Expected username alice, got %s", reg.Username)
	}

	// Duplicate registration surfaces the backend message
	_, err = client.Register(ctx, models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if apiErr.Message != "Username already registered" {
		t.Errorf("Unexpected message: %q", apiErr.Message)
	}

	res, err := client.Login(ctx, models.LoginRequest{Username: "alice", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.AccessToken == "" || res.Username != "alice" {
		t.Errorf("Unexpected login response: %+v", res)
	}

	_, err = client.Login(ctx, models.LoginRequest{Username: "alice", Password: "wrong"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
	if !errors.As(err, &apiErr) || apiErr.Message != "Incorrect username or password" {
		t.Errorf("Expected readable message, got %v", err)
	}
}

func TestLogin_ErrorInOKBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"User not found"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Login(context.Background(), models.LoginRequest{Username: "x", Password: "y"})
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Message != "User not found" {
		t.Errorf("Expected 'User not found' error, got %v", err)
	}
}

func TestPolls(t *testing.T) {
	backend := testutil.NewBackend(t)
	token := backend.AddUser("alice", "pw")
	client := New(backend.APIURL())
	ctx := context.Background()

	created, err := client.CreatePoll(ctx, token, models.CreatePollRequest{
		Title:   "Lunch?",
		Options: []models.OptionInput{{Text: "Pizza"}, {Text: "Sushi"}},
	})
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}
	if created.ID == "" || created.CreatedBy != "alice" || len(created.Options) != 2 {
		t.Errorf("Unexpected created poll: %+v", created)
	}

	polls, err := client.ListPolls(ctx)
	if err != nil {
		t.Fatalf("ListPolls failed: %v", err)
	}
	if len(polls) != 1 || polls[0].ID != created.ID {
		t.Errorf("Expected the created poll to be listed, got %+v", polls)
	}

	got, err := client.GetPoll(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPoll failed: %v", err)
	}
	if got.Title != "Lunch?" {
		t.Errorf("Expected title 'Lunch?', got %q", got.Title)
	}

	if _, err := client.GetPoll(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := client.DeletePoll(ctx, token, created.ID); err != nil {
		t.Fatalf("DeletePoll failed: %v", err)
	}
	if _, ok := backend.Poll(created.ID); ok {
		t.Error("Poll should be gone after delete")
	}
}

func TestDeletePoll_NotOwner(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.AddUser("alice", "pw")
	bobToken := backend.AddUser("bob", "pw")
	poll := backend.AddPoll("Alice's poll", "alice", "A", "B")

	err := New(backend.APIURL()).DeletePoll(context.Background(), bobToken, poll.ID)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for non-owner, got %v", err)
	}
}

func TestVoteFlow(t *testing.T) {
	backend := testutil.NewBackend(t)
	token := backend.AddUser("alice", "pw")
	poll := backend.AddPoll("Q", "bob", "A", "B")
	client := New(backend.APIURL())
	ctx := context.Background()

	uv, err := client.UserVote(ctx, token, poll.ID)
	if err != nil {
		t.Fatalf("UserVote failed: %v", err)
	}
	if uv.Voted {
		t.Error("Expected no prior vote")
	}

	optionB := poll.Options[1].ID
	if err := client.Vote(ctx, token, poll.ID, optionB); err != nil {
		t.Fatalf("Vote failed: %v", err)
	}

	uv, err = client.UserVote(ctx, token, poll.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !uv.Voted || uv.OptionID != optionB {
		t.Errorf("Expected vote for %s, got %+v", optionB, uv)
	}

	// Second vote is rejected server-side
	if err := client.Vote(ctx, token, poll.ID, optionB); err == nil {
		t.Error("Expected duplicate vote to fail")
	}
}

func TestLikeFlow(t *testing.T) {
	backend := testutil.NewBackend(t)
	token := backend.AddUser("alice", "pw")
	poll := backend.AddPoll("Q", "bob", "A", "B")
	client := New(backend.APIURL())
	ctx := context.Background()

	res, err := client.ToggleLike(ctx, token, poll.ID)
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if res.Liked == nil || !*res.Liked || res.Likes == nil || *res.Likes != 1 {
		t.Errorf("Expected liked=true likes=1, got %+v", res)
	}

	ul, err := client.UserLike(ctx, token, poll.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !ul.Liked {
		t.Error("Expected user like to be recorded")
	}

	res, err = client.ToggleLike(ctx, token, poll.ID)
	if err != nil {
		t.Fatal(err)
	}
	if *res.Liked || *res.Likes != 0 {
		t.Errorf("Expected liked=false likes=0, got liked=%v likes=%d", *res.Liked, *res.Likes)
	}
}

func TestAuthenticatedCallsNeedToken(t *testing.T) {
	backend := testutil.NewBackend(t)
	client := New(backend.APIURL())
	ctx := context.Background()

	checks := map[string]error{
		"vote":      client.Vote(ctx, "", "p", "o"),
		"delete":    client.DeletePoll(ctx, "", "p"),
		"create":    func() error { _, err := client.CreatePoll(ctx, "", models.CreatePollRequest{}); return err }(),
		"like":      func() error { _, err := client.ToggleLike(ctx, "", "p"); return err }(),
		"user vote": func() error { _, err := client.UserVote(ctx, "", "p"); return err }(),
		"user like": func() error { _, err := client.UserLike(ctx, "", "p"); return err }(),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrNoToken) {
			t.Errorf("%s: expected ErrNoToken, got %v", name, err)
		}
	}

	// Nothing reached the backend
	if n := backend.Calls(testutil.RouteVote); n != 0 {
		t.Errorf("Expected no vote calls, got %d", n)
	}
}

func TestBearerHeaderSent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{"liked":false}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL).UserLike(context.Background(), "tok123", "p1"); err != nil {
		t.Fatal(err)
	}
	if got != "Bearer tok123" {
		t.Errorf("Expected 'Bearer tok123', got %q", got)
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := New(url).ListPolls(context.Background()); err == nil {
		t.Error("Expected error when the backend is unreachable")
	}
}
