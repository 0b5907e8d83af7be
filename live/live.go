// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/quickpoll/models"
)

const (
	defaultPingInterval = 15 * time.Second
	writeWait           = 10 * time.Second
	maxLoggedFrame      = 200
)

// Dialer opens live channels against one backend
type Dialer struct {
	baseURL      string
	ws           *websocket.Dialer
	logger       *slog.Logger
	pingInterval time.Duration
}

type Option func(*Dialer)

func WithLogger(l *slog.Logger) Option {
	return func(d *Dialer) { d.logger = l }
}

// WithPingInterval sets how often keep-alive pings are sent. Zero
// disables them.
func WithPingInterval(iv time.Duration) Option {
	return func(d *Dialer) { d.pingInterval = iv }
}

// NewDialer takes the websocket base URL, e.g. wss://host
func NewDialer(baseURL string, opts ...Option) *Dialer {
	d := &Dialer{
		baseURL:      strings.TrimRight(baseURL, "/"),
		ws:           websocket.DefaultDialer,
		logger:       slog.Default(),
		pingInterval: defaultPingInterval,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Poll subscribes to vote and like pushes for one poll
func (d *Dialer) Poll(ctx context.Context, id models.ID) (*Subscription, error) {
	return d.dial(ctx, "/ws/polls/"+url.PathEscape(string(id)))
}

// Global subscribes to new poll announcements
func (d *Dialer) Global(ctx context.Context) (*Subscription, error) {
	return d.dial(ctx, "/ws/polls")
}

// dial only uses ctx for the handshake. The subscription lives until
// Close.
func (d *Dialer) dial(ctx context.Context, path string) (*Subscription, error) {
	target := d.baseURL + path
	conn, _, err := d.ws.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}

	s := &Subscription{
		url:        target,
		conn:       conn,
		logger:     d.logger,
		msgs:       make(chan models.Push, 16),
		done:       make(chan struct{}),
		readerDone: make(chan struct{}),
	}
	d.logger.Debug("live channel connected", "url", target)

	go s.readLoop()
	if d.pingInterval > 0 {
		go s.pingLoop(d.pingInterval)
	}
	return s, nil
}

// Subscription is one open live channel. Decoded pushes arrive on
// Messages; the channel is closed once the connection ends.
type Subscription struct {
	url    string
	conn   *websocket.Conn
	logger *slog.Logger

	msgs       chan models.Push
	done       chan struct{}
	readerDone chan struct{}
	closeOnce  sync.Once
}

func (s *Subscription) Messages() <-chan models.Push {
	return s.msgs
}

// Done is closed when the reader has stopped, whether through Close or
// because the server went away.
func (s *Subscription) Done() <-chan struct{} {
	return s.readerDone
}

// Close ends the subscription and waits for the reader to exit. It is
// safe to call more than once.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		err = s.conn.Close()
		<-s.readerDone
		s.logger.Debug("live channel closed", "url", s.url)
	})
	return err
}

func (s *Subscription) closing() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Subscription) readLoop() {
	defer close(s.readerDone)
	defer close(s.msgs)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closing() {
				s.logger.Info("live channel lost", "url", s.url, "error", err)
			}
			return
		}

		for _, p := range models.DecodePush(data) {
			if u, ok := p.(models.Unknown); ok {
				s.logger.Warn("dropping malformed push message", "url", s.url, "error", u.Err, "raw", truncate(u.Raw))
				continue
			}
			select {
			case s.msgs <- p:
			case <-s.done:
				return
			}
		}
	}
}

// pingLoop keeps idle connections alive through proxies. WriteControl is
// safe to call concurrently with the reader.
func (s *Subscription) pingLoop(iv time.Duration) {
	ticker := time.NewTicker(iv)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-s.readerDone:
			return
		}
	}
}

func truncate(s string) string {
	if len(s) > maxLoggedFrame {
		return s[:maxLoggedFrame] + "..."
	}
	return s
}
