// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package render

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/danielhkuo/quickpoll/views"
)

var now = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

func assertGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, got)
}

var (
	unvoted = views.PollState{
		ID:          "p1",
		Title:       "Lunch?",
		Description: "Where should we eat?",
		Creator:     "alice",
		CreatedAt:   now.Add(-72 * time.Hour),
		Options: []views.OptionState{
			{ID: "A", Text: "Pizza"},
			{ID: "B", Text: "Sushi"},
		},
		Likes: 5,
	}

	voted = views.PollState{
		ID:      "p1",
		Title:   "Lunch?",
		Creator: "Anonymous",
		Options: []views.OptionState{
			{ID: "A", Text: "Pizza", Votes: 1, Percent: 25},
			{ID: "B", Text: "Sushi", Votes: 3, Percent: 75, Selected: true},
			{ID: "C", Text: "Tacos"},
		},
		TotalVotes:       4,
		Likes:            1234,
		Liked:            true,
		HasVoted:         true,
		SelectedOptionID: "B",
	}

	noOptions = views.PollState{
		ID:      "p3",
		Title:   "Empty",
		Creator: "bob",
	}

	pending = views.PollState{
		ID:        "p4",
		Title:     "Pets",
		Creator:   "carol",
		CreatedAt: now,
		Options: []views.OptionState{
			{ID: "c", Text: "Cats", Selected: true},
			{ID: "d", Text: "Dogs"},
			{ID: "x", Text: "Axolotl"},
		},
		SelectedOptionID: "c",
	}
)

func TestPollCard(t *testing.T) {
	tests := []struct {
		golden string
		state  views.PollState
	}{
		{"card_unvoted", unvoted},
		{"card_voted", voted},
		{"card_no_options", noOptions},
		{"card_selected_pending", pending},
	}

	for _, tt := range tests {
		t.Run(tt.golden, func(t *testing.T) {
			var buf bytes.Buffer
			if err := PollCard(&buf, tt.state, now); err != nil {
				t.Fatalf("PollCard failed: %v", err)
			}
			assertGolden(t, tt.golden, buf.Bytes())
		})
	}
}

func TestPollList(t *testing.T) {
	var buf bytes.Buffer
	if err := PollList(&buf, nil, now); err != nil {
		t.Fatal(err)
	}
	assertGolden(t, "list_empty", buf.Bytes())

	buf.Reset()
	if err := PollList(&buf, []views.PollState{noOptions, pending}, now); err != nil {
		t.Fatal(err)
	}
	assertGolden(t, "list_two", buf.Bytes())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestPollCard_WriteError(t *testing.T) {
	if err := PollCard(failingWriter{}, voted, now); err == nil {
		t.Error("Expected write error")
	}
	if err := PollList(failingWriter{}, nil, now); err == nil {
		t.Error("Expected write error for empty list")
	}
}

func TestVotes(t *testing.T) {
	tests := map[int]string{0: "0 votes", 1: "1 vote", 2: "2 votes", 12345: "12,345 votes"}
	for n, want := range tests {
		if got := votes(n); got != want {
			t.Errorf("votes(%d): expected %q, got %q", n, want, got)
		}
	}
}
