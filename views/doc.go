// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package views holds the state behind poll cards and the poll index.

# PollView

A PollView is the single source of truth for one displayed poll. It
reconciles four sources of updates:

 1. Mount looks up the viewer's vote and like concurrently. Failures are
    logged and read as "no prior interaction".
 2. The poll's live channel delivers VoteSnapshot and LikeUpdate pushes.
    Pushes for other polls are ignored; the latest push wins.
 3. SubmitVote sends the selected option. Success moves the view to
    voted for good. Counts are not bumped locally; they change when the
    next snapshot arrives.
 4. ToggleLike flips the like and the count at once, lets the server's
    liked/likes overwrite the guess, and restores the captured values
    exactly if the call fails.

Likes and pushes share one counter with no sequence numbers, so a push
that lands while a toggle is in flight can be overwritten by that
toggle's result. The next push corrects it.

Deletion is offered only when Options.AllowDelete is set and the viewer
created the poll. Options.Confirm must approve it. On success the view
publishes events.Removed and leaves its own state alone.

Gated actions without a session call Options.Prompt and return
ErrLoginRequired.

# ListView

A ListView loads GET /polls/, mounts one PollView per poll, prepends
polls announced on the global channel and drops polls removed through
the events bus:

	list := views.NewListView(client, views.Deps{
		API:        client,
		Subscriber: views.LiveSubscriber(dialer),
		Viewer:     store,
		Bus:        bus,
	}, views.Options{AllowDelete: true, Confirm: confirm})
	if err := list.Load(ctx); err != nil {
		return err
	}
	defer list.Close()

Unmount and Close release every live channel and are idempotent.
*/
package views
