// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package live subscribes to the backend's push channels over websockets.

There are two kinds of channel:

	/ws/polls/{id}   vote snapshots and like counts for one poll
	/ws/polls        new poll announcements

Each frame is decoded with models.DecodePush. Frames that decode to
models.Unknown are logged and dropped; the connection stays open.

	sub, err := live.NewDialer(cfg.WSURL).Poll(ctx, pollID)
	if err != nil {
		return err
	}
	defer sub.Close()

	for p := range sub.Messages() {
		view.Apply(p)
	}

Close is idempotent and returns after the reader goroutine has exited,
so Messages is closed by then. Keep-alive pings go out every 15 seconds.
There is no reconnect: a lost channel is logged and its Messages channel
closes.
*/
package live
