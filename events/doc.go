// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package events carries poll removal announcements between views.

When a poll owner deletes a poll from its card, the card publishes a
Removed event and the list that contains the card drops it:

	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)
	for ev := range ch {
		list.remove(ev.PollID)
	}

Publish never blocks; each subscriber has a small buffer.
*/
package events
