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
	"github.com/danielhkuo/quickpoll/session"
)

// PollView owns the displayed state of one poll: vote counts, like count
// and what the viewer has done. Four sources write to it: the initial
// lookups, live pushes, the viewer's vote and the viewer's like toggles.
type PollView struct {
	deps   Deps
	opts   Options
	logger *slog.Logger

	mu       sync.Mutex
	poll     models.Poll
	likes    int
	liked    bool
	voted    bool
	selected models.ID
	deleting bool

	voteMu   sync.Mutex
	likeMu   sync.Mutex
	notifyMu sync.Mutex

	lifeMu    sync.Mutex
	mounted   bool
	unmounted bool
	stream    Stream
	wg        sync.WaitGroup
}

func NewPollView(p models.Poll, deps Deps, opts Options) *PollView {
	p.Options = append([]models.Option(nil), p.Options...)
	return &PollView{
		deps:   deps,
		opts:   opts,
		logger: opts.logger().With("poll_id", p.ID),
		poll:   p,
		likes:  p.LikesCount,
	}
}

func (v *PollView) ID() models.ID {
	return v.poll.ID
}

func (v *PollView) viewer() session.Session {
	if v.deps.Viewer == nil {
		return session.Session{}
	}
	return v.deps.Viewer.Current()
}

// Mount seeds the vote and like state and opens the live channel. The two
// lookups run concurrently and fail open. A failed subscription is
// returned, but the view stays usable without live updates.
func (v *PollView) Mount(ctx context.Context) error {
	v.lifeMu.Lock()
	defer v.lifeMu.Unlock()

	if v.mounted || v.unmounted {
		return nil
	}
	v.mounted = true

	if s := v.viewer(); s.Authenticated() && v.deps.API != nil {
		v.seed(ctx, s.Token)
	}

	if v.deps.Subscriber == nil {
		return nil
	}
	stream, err := v.deps.Subscriber.Poll(ctx, v.poll.ID)
	if err != nil {
		v.logger.Warn("live updates unavailable", "error", err)
		return fmt.Errorf("subscribe to poll %s: %w", v.poll.ID, err)
	}
	v.stream = stream

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		for p := range stream.Messages() {
			v.Apply(p)
		}
	}()
	return nil
}

func (v *PollView) seed(ctx context.Context, token string) {
	var (
		wg      sync.WaitGroup
		voteRes models.UserVoteResponse
		likeRes models.UserLikeResponse
		voteErr error
		likeErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		voteRes, voteErr = v.deps.API.UserVote(ctx, token, v.poll.ID)
	}()
	go func() {
		defer wg.Done()
		likeRes, likeErr = v.deps.API.UserLike(ctx, token, v.poll.ID)
	}()
	wg.Wait()

	if voteErr != nil {
		v.logger.Warn("user vote lookup failed", "error", voteErr)
	}
	if likeErr != nil {
		v.logger.Warn("user like lookup failed", "error", likeErr)
	}

	v.mu.Lock()
	if voteErr == nil && voteRes.Voted {
		v.voted = true
		v.selected = voteRes.OptionID
	}
	if likeErr == nil && likeRes.Liked {
		v.liked = true
	}
	v.mu.Unlock()

	v.notify()
}

// Unmount closes the live channel and waits for the consumer to stop. It
// is idempotent, and a view that was unmounted cannot be mounted again.
func (v *PollView) Unmount() {
	v.lifeMu.Lock()
	defer v.lifeMu.Unlock()

	if v.unmounted {
		return
	}
	v.unmounted = true

	if v.stream != nil {
		if err := v.stream.Close(); err != nil {
			v.logger.Debug("closing live channel", "error", err)
		}
		v.wg.Wait()
		v.stream = nil
	}
}

// Apply folds one push into the view. Pushes for other polls and variants
// a card does not consume change nothing. Later pushes win.
func (v *PollView) Apply(p models.Push) bool {
	v.mu.Lock()
	changed := false
	switch m := p.(type) {
	case models.VoteSnapshot:
		if m.PollID == v.poll.ID {
			v.poll.Options = append([]models.Option(nil), m.Options...)
			changed = true
		}
	case models.LikeUpdate:
		if m.PollID == v.poll.ID {
			v.likes = m.Likes
			changed = true
		}
	}
	v.mu.Unlock()

	if changed {
		v.notify()
	}
	return changed
}

// Select marks an option locally. It is refused once the viewer has voted
// or when the option is not on the poll.
func (v *PollView) Select(optionID models.ID) bool {
	v.mu.Lock()
	if v.voted || !v.hasOption(optionID) {
		v.mu.Unlock()
		return false
	}
	v.selected = optionID
	v.mu.Unlock()

	v.notify()
	return true
}

// hasOption must be called with v.mu held
func (v *PollView) hasOption(id models.ID) bool {
	for _, o := range v.poll.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// SubmitVote sends the selected option. Once voted it does nothing. A
// successful vote is never reverted; the counts only move when a snapshot
// arrives.
func (v *PollView) SubmitVote(ctx context.Context) error {
	v.voteMu.Lock()
	defer v.voteMu.Unlock()

	v.mu.Lock()
	voted, selected := v.voted, v.selected
	v.mu.Unlock()

	if voted {
		return nil
	}
	if selected == "" {
		return ErrNoSelection
	}

	s, err := v.gate()
	if err != nil {
		return err
	}

	if err := v.deps.API.Vote(ctx, s.Token, v.poll.ID, selected); err != nil {
		v.logger.Warn("vote failed", "option_id", selected, "error", err)
		return fmt.Errorf("%w: %w", ErrVoteFailed, err)
	}

	v.mu.Lock()
	v.voted = true
	v.selected = selected
	v.mu.Unlock()

	v.logger.Info("vote recorded", "option_id", selected)
	v.notify()
	return nil
}

// ToggleLike flips the like immediately, then lets the server's answer
// overwrite the guess. On failure the exact previous values come back.
// Toggles on one view run one at a time.
func (v *PollView) ToggleLike(ctx context.Context) error {
	s, err := v.gate()
	if err != nil {
		return err
	}

	v.likeMu.Lock()
	defer v.likeMu.Unlock()

	v.mu.Lock()
	prevLiked, prevLikes := v.liked, v.likes
	v.liked = !prevLiked
	if prevLiked {
		v.likes--
	} else {
		v.likes++
	}
	v.mu.Unlock()
	v.notify()

	res, err := v.deps.API.ToggleLike(ctx, s.Token, v.poll.ID)
	if err != nil {
		v.mu.Lock()
		v.liked, v.likes = prevLiked, prevLikes
		v.mu.Unlock()
		v.notify()

		v.logger.Warn("like failed", "error", err)
		return fmt.Errorf("toggle like: %w", err)
	}

	if res.Liked != nil || res.Likes != nil {
		v.mu.Lock()
		if res.Liked != nil {
			v.liked = *res.Liked
		}
		if res.Likes != nil {
			v.likes = *res.Likes
		}
		v.mu.Unlock()
		v.notify()
	}
	return nil
}

func (v *PollView) gate() (session.Session, error) {
	s := v.viewer()
	if s.Authenticated() {
		return s, nil
	}
	if v.opts.Prompt != nil {
		v.opts.Prompt()
	}
	return session.Session{}, ErrLoginRequired
}

// CanDelete reports whether the delete action is offered: the page allows
// it and the viewer created the poll.
func (v *PollView) CanDelete() bool {
	if !v.opts.AllowDelete {
		return false
	}
	s := v.viewer()
	return s.Authenticated() && v.poll.CreatedBy != "" && s.Username == v.poll.CreatedBy
}

// RequestDelete asks for confirmation, deletes the poll and announces the
// removal. The view's own state is left alone; its parent drops it.
func (v *PollView) RequestDelete(ctx context.Context) error {
	if !v.CanDelete() {
		return ErrNotOwner
	}

	v.mu.Lock()
	poll := v.snapshotPoll()
	v.mu.Unlock()

	if v.opts.Confirm == nil || !v.opts.Confirm(poll) {
		return ErrDeleteCancelled
	}

	v.setDeleting(true)
	if err := v.deps.API.DeletePoll(ctx, v.viewer().Token, v.poll.ID); err != nil {
		v.setDeleting(false)
		v.logger.Warn("delete failed", "error", err)
		return fmt.Errorf("delete poll: %w", err)
	}

	v.logger.Info("poll deleted")
	if v.deps.Bus != nil {
		v.deps.Bus.Publish(events.Removed{PollID: v.poll.ID})
	}
	return nil
}

func (v *PollView) setDeleting(on bool) {
	v.mu.Lock()
	v.deleting = on
	v.mu.Unlock()
	v.notify()
}

// snapshotPoll must be called with v.mu held
func (v *PollView) snapshotPoll() models.Poll {
	p := v.poll
	p.Options = append([]models.Option(nil), v.poll.Options...)
	p.LikesCount = v.likes
	return p
}

// Snapshot returns a consistent copy of the displayed state
func (v *PollView) Snapshot() PollState {
	canDelete := v.CanDelete()

	v.mu.Lock()
	defer v.mu.Unlock()

	st := PollState{
		ID:               v.poll.ID,
		Title:            v.poll.Title,
		Description:      v.poll.Description,
		Creator:          v.poll.Creator(),
		CreatedAt:        v.poll.CreatedAt.Time,
		Options:          make([]OptionState, len(v.poll.Options)),
		Likes:            v.likes,
		Liked:            v.liked,
		HasVoted:         v.voted,
		SelectedOptionID: v.selected,
		CanDelete:        canDelete,
		Deleting:         v.deleting,
	}
	for _, o := range v.poll.Options {
		st.TotalVotes += o.Votes
	}
	for i, o := range v.poll.Options {
		st.Options[i] = OptionState{
			ID:       o.ID,
			Text:     o.Text,
			Votes:    o.Votes,
			Selected: o.ID == v.selected && v.selected != "",
		}
		if st.TotalVotes > 0 {
			st.Options[i].Percent = float64(o.Votes) / float64(st.TotalVotes) * 100
		}
	}
	return st
}

func (v *PollView) notify() {
	if v.opts.OnChange == nil {
		return
	}
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()
	v.opts.OnChange(v.Snapshot())
}
