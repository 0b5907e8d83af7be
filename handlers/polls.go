// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/danielhkuo/quickpoll/api"
	"github.com/danielhkuo/quickpoll/auth"
	"github.com/danielhkuo/quickpoll/events"
	"github.com/danielhkuo/quickpoll/live"
	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/render"
	"github.com/danielhkuo/quickpoll/session"
	"github.com/danielhkuo/quickpoll/views"
)

// PollHandler runs the poll pages: the index, a single card, the create
// form and the card actions.
type PollHandler struct {
	client *api.Client
	dialer *live.Dialer
	bus    *events.Bus
	con    *console
	logger *slog.Logger
}

// NewPollHandler wires a handler. dialer may be nil when live updates are
// not wanted.
func NewPollHandler(client *api.Client, dialer *live.Dialer, out io.Writer, in io.Reader) *PollHandler {
	return &PollHandler{
		client: client,
		dialer: dialer,
		bus:    events.NewBus(),
		con:    newConsole(out, in),
		logger: slog.Default(),
	}
}

func (h *PollHandler) deps(ctx context.Context, withLive bool) views.Deps {
	store, err := session.FromContext(ctx)
	if err != nil {
		h.logger.Debug("no session provider, viewing anonymously")
	}
	d := views.Deps{API: h.client, Viewer: store, Bus: h.bus}
	if withLive && h.dialer != nil {
		d.Subscriber = views.LiveSubscriber(h.dialer)
	}
	return d
}

func (h *PollHandler) options(ctx context.Context) views.Options {
	return views.Options{
		AllowDelete: true,
		Prompt:      h.con.loginNudge,
		Confirm: func(p models.Poll) bool {
			return h.con.confirm(ctx, fmt.Sprintf("Delete poll %q? This cannot be undone.", p.Title))
		},
		Logger: h.logger,
	}
}

// mountPoll fetches one poll and mounts a card for it without live
// updates
func (h *PollHandler) mountPoll(ctx context.Context, id models.ID, opts views.Options) (*views.PollView, error) {
	p, err := h.client.GetPoll(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, fmt.Errorf("poll %s not found", id)
		}
		return nil, fmt.Errorf("load poll: %w", err)
	}
	v := views.NewPollView(p, h.deps(ctx, false), opts)
	v.Mount(ctx)
	return v, nil
}

func (h *PollHandler) card(v *views.PollView) error {
	st := v.Snapshot()
	return h.con.locked(func(w io.Writer) error {
		return render.PollCard(w, st, h.con.now())
	})
}

// List handles the polls command (the index page)
func (h *PollHandler) List(ctx context.Context) error {
	list := views.NewListView(h.client, h.deps(ctx, false), h.options(ctx))
	if err := list.Load(ctx); err != nil {
		return fmt.Errorf("failed to load polls: %w", err)
	}
	defer list.Close()

	states := list.Snapshots()
	return h.con.locked(func(w io.Writer) error {
		return render.PollList(w, states, h.con.now())
	})
}

// Show handles the show command
func (h *PollHandler) Show(ctx context.Context, id models.ID) error {
	v, err := h.mountPoll(ctx, id, h.options(ctx))
	if err != nil {
		return err
	}
	defer v.Unmount()
	return h.card(v)
}

// Create handles the create command. Without a session it refuses, the
// way the create page sends visitors to the login page.
func (h *PollHandler) Create(ctx context.Context, req models.CreatePollRequest) error {
	s := session.Current(ctx)
	if !s.Authenticated() {
		h.con.printf("Please login first to create a poll.\n")
		return views.ErrLoginRequired
	}

	req, err := auth.NormalizeCreatePoll(req)
	if err != nil {
		return err
	}

	p, err := h.client.CreatePoll(ctx, s.Token, req)
	if err != nil {
		h.logger.Error("failed to create poll", "error", err)
		h.con.printf("Failed to create poll. Please try again.\n")
		return err
	}

	h.logger.Info("poll created", "poll_id", p.ID, "options", len(p.Options))
	h.con.printf("Poll created.\n")
	v := views.NewPollView(p, h.deps(ctx, false), h.options(ctx))
	return h.card(v)
}

// Vote handles the vote command: select then submit
func (h *PollHandler) Vote(ctx context.Context, pollID, optionID models.ID) error {
	v, err := h.mountPoll(ctx, pollID, h.options(ctx))
	if err != nil {
		return err
	}
	defer v.Unmount()
	return h.vote(ctx, v, optionID, true)
}

// vote selects and submits. showCard prints the card afterwards; the
// live index reprints it on its own.
func (h *PollHandler) vote(ctx context.Context, v *views.PollView, optionID models.ID, showCard bool) error {
	if !v.Select(optionID) {
		if st := v.Snapshot(); st.HasVoted {
			h.con.printf("You already voted on this poll.\n")
			return nil
		}
		return fmt.Errorf("option %s is not on poll %s", optionID, v.ID())
	}

	if err := v.SubmitVote(ctx); err != nil {
		if errors.Is(err, views.ErrVoteFailed) {
			h.con.printf("You might have already voted for this poll.\n")
		}
		return err
	}
	h.con.printf("Vote recorded.\n")
	if !showCard {
		return nil
	}
	return h.card(v)
}

// Like handles the like command. Liking again unlikes.
func (h *PollHandler) Like(ctx context.Context, pollID models.ID) error {
	v, err := h.mountPoll(ctx, pollID, h.options(ctx))
	if err != nil {
		return err
	}
	defer v.Unmount()
	return h.like(ctx, v)
}

func (h *PollHandler) like(ctx context.Context, v *views.PollView) error {
	if err := v.ToggleLike(ctx); err != nil {
		return err
	}
	st := v.Snapshot()
	if st.Liked {
		h.con.printf("Liked %q (%d likes).\n", st.Title, st.Likes)
	} else {
		h.con.printf("Unliked %q (%d likes).\n", st.Title, st.Likes)
	}
	return nil
}

// Delete handles the delete command. yes skips the confirmation question.
func (h *PollHandler) Delete(ctx context.Context, pollID models.ID, yes bool) error {
	opts := h.options(ctx)
	if yes {
		opts.Confirm = func(models.Poll) bool { return true }
	}

	v, err := h.mountPoll(ctx, pollID, opts)
	if err != nil {
		return err
	}
	defer v.Unmount()
	return h.remove(ctx, v)
}

func (h *PollHandler) remove(ctx context.Context, v *views.PollView) error {
	if err := v.RequestDelete(ctx); err != nil {
		if errors.Is(err, views.ErrDeleteCancelled) {
			h.con.printf("Delete cancelled.\n")
			return nil
		}
		return err
	}
	h.con.printf("Poll deleted.\n")
	return nil
}
