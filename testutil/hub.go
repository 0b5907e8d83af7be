// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

const globalChannel = "*"

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// hub fans JSON messages out to websocket clients by channel key
type hub struct {
	mu    sync.Mutex
	conns map[string]map[*websocket.Conn]bool
}

func newHub() *hub {
	return &hub{conns: make(map[string]map[*websocket.Conn]bool)}
}

func (h *hub) serve(w http.ResponseWriter, r *http.Request, key string) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	if h.conns[key] == nil {
		h.conns[key] = make(map[*websocket.Conn]bool)
	}
	h.conns[key][conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.conns[key], conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Clients never send anything meaningful; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// broadcast writes v to every client on key. Writes happen under the hub
// lock so each connection has a single writer.
func (h *hub) broadcast(key string, v interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns[key] {
		var err error
		if raw, ok := v.(string); ok {
			err = conn.WriteMessage(websocket.TextMessage, []byte(raw))
		} else {
			err = conn.WriteJSON(v)
		}
		if err != nil {
			conn.Close()
			delete(h.conns[key], conn)
		}
	}
}

func (h *hub) count(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[key])
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for key, conns := range h.conns {
		for conn := range conns {
			conn.Close()
		}
		delete(h.conns, key)
	}
}
