// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package render

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickpoll/views"
)

const (
	ballot     = "\U0001F5F3\uFE0F"
	heartFull  = "\u2764\uFE0F"
	heartEmpty = "\U0001F90D"

	dateLayout = "02 Jan 2006"
	indent     = "   "

	EmptyList  = "No polls yet. Be the first to create one!"
	NoOptions  = "No options available"
	LoginNudge = "You're not logged in. Please log in or register to like or vote on polls."
)

// PollCard writes one poll as text. Percentages appear once the viewer
// has voted or anyone has. now anchors the relative creation date.
func PollCard(w io.Writer, st views.PollState, now time.Time) error {
	ew := &errWriter{w: w}

	ew.printf("%s %s  [%s]\n", ballot, st.Title, st.ID)
	if st.Description != "" {
		ew.printf("%s%s\n", indent, st.Description)
	}

	if len(st.Options) == 0 {
		ew.printf("%s%s\n", indent, NoOptions)
	} else {
		width := 0
		for _, o := range st.Options {
			if n := len([]rune(o.Text)); n > width {
				width = n
			}
		}

		results := st.ShowResults()
		for _, o := range st.Options {
			marker := "( )"
			if o.Selected {
				marker = "(\u2022)"
			}
			if results {
				ew.printf("%s%s %-*s %6.1f%%  [%s]\n", indent, marker, width, o.Text, o.Percent, o.ID)
			} else {
				ew.printf("%s%s %-*s  [%s]\n", indent, marker, width, o.Text, o.ID)
			}
		}
		if results {
			ew.printf("%s%s\n", indent, votes(st.TotalVotes))
		}
	}

	heart := heartEmpty
	if st.Liked {
		heart = heartFull
	}
	ew.printf("%s%s %s  by %s", indent, heart, humanize.Comma(int64(st.Likes)), st.Creator)
	if !st.CreatedAt.IsZero() {
		ew.printf(" \u2022 %s (%s)", st.CreatedAt.Format(dateLayout), humanize.RelTime(st.CreatedAt, now, "ago", "from now"))
	}
	ew.printf("\n")

	return ew.err
}

// PollList writes every card separated by a blank line
func PollList(w io.Writer, states []views.PollState, now time.Time) error {
	if len(states) == 0 {
		_, err := fmt.Fprintln(w, EmptyList)
		return err
	}
	for i, st := range states {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := PollCard(w, st, now); err != nil {
			return err
		}
	}
	return nil
}

func votes(n int) string {
	if n == 1 {
		return "1 vote"
	}
	return humanize.Comma(int64(n)) + " votes"
}

// errWriter keeps the first write error so callers check once
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
