// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/quickpoll/render"
)

// console serializes writes from command code and live callbacks and
// hands out input lines one at a time.
type console struct {
	mu  sync.Mutex
	out io.Writer

	in        io.Reader
	linesOnce sync.Once
	lines     chan string

	now func() time.Time
}

func newConsole(out io.Writer, in io.Reader) *console {
	return &console{out: out, in: in, now: time.Now}
}

func (c *console) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// locked runs fn with exclusive use of the output
func (c *console) locked(fn func(w io.Writer) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.out)
}

func (c *console) loginNudge() {
	c.printf("%s\nRun \"quickpoll login\" or \"quickpoll register\".\n", render.LoginNudge)
}

// readLine returns the next input line. ok is false at end of input or
// when ctx is done.
func (c *console) readLine(ctx context.Context) (line string, ok bool) {
	c.linesOnce.Do(func() {
		c.lines = make(chan string)
		go func() {
			defer close(c.lines)
			if c.in == nil {
				return
			}
			sc := bufio.NewScanner(c.in)
			for sc.Scan() {
				c.lines <- sc.Text()
			}
		}()
	})

	select {
	case line, ok = <-c.lines:
		return strings.TrimSpace(line), ok
	case <-ctx.Done():
		return "", false
	}
}

// confirm asks a yes/no question; anything but y or yes is a no
func (c *console) confirm(ctx context.Context, question string) bool {
	c.printf("%s [y/N]: ", question)
	line, ok := c.readLine(ctx)
	if !ok {
		c.printf("\n")
		return false
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true
	}
	return false
}
