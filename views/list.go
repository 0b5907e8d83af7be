// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielhkuo/quickpoll/events"
	"github.com/danielhkuo/quickpoll/models"
)

// ListView is the poll index: one PollView per poll, newest first. It
// prepends polls announced on the global channel and drops polls whose
// removal is published on the bus.
type ListView struct {
	lister Lister
	deps   Deps
	opts   Options
	logger *slog.Logger

	mu     sync.Mutex
	views  []*PollView
	closed bool

	global  Stream
	removed chan events.Removed
	wg      sync.WaitGroup
	once    sync.Once
}

func NewListView(lister Lister, deps Deps, opts Options) *ListView {
	return &ListView{
		lister: lister,
		deps:   deps,
		opts:   opts,
		logger: opts.logger(),
	}
}

// Load fetches the index, mounts a view per poll and starts listening for
// new and removed polls. It is meant to be called once.
func (l *ListView) Load(ctx context.Context) error {
	polls, err := l.lister.ListPolls(ctx)
	if err != nil {
		return fmt.Errorf("load polls: %w", err)
	}

	views := make([]*PollView, 0, len(polls))
	seen := make(map[models.ID]bool, len(polls))
	for _, p := range polls {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		views = append(views, NewPollView(p, l.deps, l.opts))
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.views = views
	l.mu.Unlock()

	l.mountAll(ctx, views)

	if l.deps.Bus != nil {
		l.removed = l.deps.Bus.Subscribe()
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			for ev := range l.removed {
				l.remove(ev.PollID)
			}
		}()
	}

	if l.deps.Subscriber != nil {
		global, err := l.deps.Subscriber.Global(ctx)
		if err != nil {
			l.logger.Warn("new poll announcements unavailable", "error", err)
		} else {
			l.global = global
			l.wg.Add(1)
			go func() {
				defer l.wg.Done()
				for p := range global.Messages() {
					if np, ok := p.(models.NewPoll); ok {
						l.prepend(ctx, np.Poll)
					}
				}
			}()
		}
	}

	l.logger.Debug("poll list loaded", "count", len(views))
	l.changed()
	return nil
}

func (l *ListView) mountAll(ctx context.Context, views []*PollView) {
	var wg sync.WaitGroup
	for _, v := range views {
		wg.Add(1)
		go func(v *PollView) {
			defer wg.Done()
			// Mount logs its own failures; the card still renders.
			v.Mount(ctx)
		}(v)
	}
	wg.Wait()
}

func (l *ListView) prepend(ctx context.Context, p models.Poll) {
	if p.ID == "" || p.Title == "" {
		return
	}

	l.mu.Lock()
	if l.closed || l.indexOf(p.ID) >= 0 {
		l.mu.Unlock()
		return
	}
	v := NewPollView(p, l.deps, l.opts)
	l.views = append([]*PollView{v}, l.views...)
	l.mu.Unlock()

	l.logger.Info("new poll", "poll_id", p.ID, "title", p.Title)
	v.Mount(ctx)
	l.changed()
}

func (l *ListView) remove(id models.ID) {
	l.mu.Lock()
	i := l.indexOf(id)
	if i < 0 {
		l.mu.Unlock()
		return
	}
	v := l.views[i]
	l.views = append(l.views[:i:i], l.views[i+1:]...)
	l.mu.Unlock()

	v.Unmount()
	l.logger.Info("poll removed", "poll_id", id)
	l.changed()
}

// indexOf must be called with l.mu held
func (l *ListView) indexOf(id models.ID) int {
	for i, v := range l.views {
		if v.ID() == id {
			return i
		}
	}
	return -1
}

// IDs returns the poll ids in display order
func (l *ListView) IDs() []models.ID {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]models.ID, len(l.views))
	for i, v := range l.views {
		ids[i] = v.ID()
	}
	return ids
}

// Views returns the cards in display order
func (l *ListView) Views() []*PollView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*PollView(nil), l.views...)
}

// View returns the card for id, or nil
func (l *ListView) View(id models.ID) *PollView {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexOf(id); i >= 0 {
		return l.views[i]
	}
	return nil
}

// Snapshots returns every card's state in display order
func (l *ListView) Snapshots() []PollState {
	views := l.Views()
	out := make([]PollState, len(views))
	for i, v := range views {
		out[i] = v.Snapshot()
	}
	return out
}

func (l *ListView) changed() {
	if l.opts.OnListChange != nil {
		l.opts.OnListChange(l.IDs())
	}
}

// Close stops the global channel and the removal listener, then unmounts
// every card. It is idempotent.
func (l *ListView) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()

		if l.global != nil {
			if err := l.global.Close(); err != nil {
				l.logger.Debug("closing global channel", "error", err)
			}
		}
		if l.removed != nil {
			l.deps.Bus.Unsubscribe(l.removed)
		}
		l.wg.Wait()

		l.mu.Lock()
		views := l.views
		l.views = nil
		l.mu.Unlock()

		for _, v := range views {
			v.Unmount()
		}
	})
}
