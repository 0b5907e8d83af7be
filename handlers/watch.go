// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/render"
	"github.com/danielhkuo/quickpoll/views"
)

const watchHelp = `Commands: vote <poll> <option> | like <poll> | delete <poll> | list | quit`

// WatchPoll shows one card and reprints it on every live update until ctx
// is done.
func (h *PollHandler) WatchPoll(ctx context.Context, id models.ID) error {
	p, err := h.client.GetPoll(ctx, id)
	if err != nil {
		return fmt.Errorf("load poll: %w", err)
	}

	var ready atomic.Bool
	opts := h.options(ctx)
	opts.OnChange = func(st views.PollState) {
		if !ready.Load() {
			return
		}
		h.con.locked(func(w io.Writer) error {
			fmt.Fprintln(w)
			return render.PollCard(w, st, h.con.now())
		})
	}

	// Print first: every push after Mount reprints the card.
	v := views.NewPollView(p, h.deps(ctx, true), opts)
	if err := h.card(v); err != nil {
		return err
	}
	ready.Store(true)

	if err := v.Mount(ctx); err != nil {
		h.con.printf("Live updates unavailable: %v\n", err)
	}
	defer v.Unmount()

	<-ctx.Done()
	return nil
}

// Watch is the live index. It prints the list, then reprints cards as
// they change and reads card actions from input until quit, end of input
// or ctx is done.
func (h *PollHandler) Watch(ctx context.Context) error {
	var ready atomic.Bool
	opts := h.options(ctx)
	opts.OnChange = func(st views.PollState) {
		if !ready.Load() {
			return
		}
		h.con.locked(func(w io.Writer) error {
			fmt.Fprintln(w)
			return render.PollCard(w, st, h.con.now())
		})
	}
	opts.OnListChange = func(ids []models.ID) {
		if ready.Load() {
			h.con.printf("\n%d polls\n", len(ids))
		}
	}

	list := views.NewListView(h.client, h.deps(ctx, true), opts)
	if err := list.Load(ctx); err != nil {
		return fmt.Errorf("failed to load polls: %w", err)
	}
	defer list.Close()

	states := list.Snapshots()
	if err := h.con.locked(func(w io.Writer) error {
		if err := render.PollList(w, states, h.con.now()); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\n%s\n", watchHelp)
		return err
	}); err != nil {
		return err
	}
	ready.Store(true)

	for {
		line, ok := h.con.readLine(ctx)
		if !ok {
			// end of input: keep watching until interrupted
			<-ctx.Done()
			return nil
		}
		if quit := h.dispatch(ctx, list, line); quit {
			return nil
		}
	}
}

func (h *PollHandler) dispatch(ctx context.Context, list *views.ListView, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	cardFor := func(arg int) *views.PollView {
		if len(fields) <= arg {
			h.con.printf("%s\n", watchHelp)
			return nil
		}
		v := list.View(models.ID(fields[arg]))
		if v == nil {
			h.con.printf("No poll %s on the list.\n", fields[arg])
		}
		return v
	}

	var err error
	switch strings.ToLower(fields[0]) {
	case "q", "quit", "exit":
		return true
	case "list", "ls":
		states := list.Snapshots()
		err = h.con.locked(func(w io.Writer) error {
			return render.PollList(w, states, h.con.now())
		})
	case "vote", "v":
		if v := cardFor(1); v != nil {
			if len(fields) < 3 {
				h.con.printf("%s\n", watchHelp)
				return false
			}
			err = h.vote(ctx, v, models.ID(fields[2]), false)
		}
	case "like", "l":
		if v := cardFor(1); v != nil {
			err = h.like(ctx, v)
		}
	case "delete", "d":
		if v := cardFor(1); v != nil {
			err = h.remove(ctx, v)
		}
	default:
		h.con.printf("%s\n", watchHelp)
	}

	if err != nil && !errors.Is(err, views.ErrLoginRequired) {
		h.con.printf("Error: %v\n", err)
	}
	return false
}
