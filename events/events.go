// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"log/slog"
	"sync"

	"github.com/danielhkuo/quickpoll/models"
)

// Removed announces that a poll was deleted by its owner
type Removed struct {
	PollID models.ID
}

// Bus fans Removed events out to every subscriber. The zero value is
// ready to use.
type Bus struct {
	mu      sync.Mutex
	clients map[chan Removed]bool
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new client to receive events
func (b *Bus) Subscribe() chan Removed {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.clients == nil {
		b.clients = make(map[chan Removed]bool)
	}
	ch := make(chan Removed, 16)
	b.clients[ch] = true
	return ch
}

// Unsubscribe removes a client and closes its channel. Calling it twice
// is harmless.
func (b *Bus) Unsubscribe(ch chan Removed) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.clients[ch]; exists {
		delete(b.clients, ch)
		close(ch)
	}
}

// Publish sends ev to all subscribed clients without blocking. A client
// whose buffer is full misses the event.
func (b *Bus) Publish(ev Removed) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.clients {
		select {
		case ch <- ev:
		default:
			slog.Warn("dropping removal event for slow subscriber", "poll_id", ev.PollID)
		}
	}
}

// Subscribers reports the number of registered clients
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}
