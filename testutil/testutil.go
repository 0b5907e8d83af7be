// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/quickpoll/auth"
	"github.com/danielhkuo/quickpoll/models"
)

// Routes served by Backend, usable with FailNext, Hold and Calls
const (
	RouteRegister   = "POST /api/auth/register"
	RouteLogin      = "POST /api/auth/login"
	RouteListPolls  = "GET /api/polls/{$}"
	RouteGetPoll    = "GET /api/polls/{id}"
	RouteCreatePoll = "POST /api/polls/{$}"
	RouteDeletePoll = "DELETE /api/polls/{id}"
	RouteVote       = "POST /api/votes/{$}"
	RouteUserVote   = "GET /api/votes/user/{id}"
	RouteToggleLike = "POST /api/likes/{id}"
	RouteUserLike   = "GET /api/likes/user/{id}"
)

type user struct {
	email    string
	password string
}

// Backend is an in-memory QuickPoll backend: the REST surface under /api
// and the live channels under /ws/polls.
type Backend struct {
	Server *httptest.Server

	hub *hub

	mu            sync.Mutex
	autoBroadcast bool
	users         map[string]user
	tokens        map[string]string
	polls         []*models.Poll
	votes         map[models.ID]map[string]models.ID
	likes         map[models.ID]map[string]bool
	failures      map[string][]int
	gates         map[string]*Gate
	calls         map[string]int
}

// NewBackend starts a backend that is closed when the test ends
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		autoBroadcast: true,
		hub:           newHub(),
		users:         make(map[string]user),
		tokens:        make(map[string]string),
		votes:         make(map[models.ID]map[string]models.ID),
		likes:         make(map[models.ID]map[string]bool),
		failures:      make(map[string][]int),
		gates:         make(map[string]*Gate),
		calls:         make(map[string]int),
	}

	mux := http.NewServeMux()
	b.handle(mux, RouteRegister, b.register)
	b.handle(mux, RouteLogin, b.login)
	b.handle(mux, RouteListPolls, b.listPolls)
	b.handle(mux, RouteGetPoll, b.getPoll)
	b.handle(mux, RouteCreatePoll, b.createPoll)
	b.handle(mux, RouteDeletePoll, b.deletePoll)
	b.handle(mux, RouteVote, b.vote)
	b.handle(mux, RouteUserVote, b.userVote)
	b.handle(mux, RouteToggleLike, b.toggleLike)
	b.handle(mux, RouteUserLike, b.userLike)
	mux.HandleFunc("GET /ws/polls/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.hub.serve(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("GET /ws/polls", func(w http.ResponseWriter, r *http.Request) {
		b.hub.serve(w, r, globalChannel)
	})

	b.Server = httptest.NewServer(mux)
	t.Cleanup(func() {
		b.hub.closeAll()
		b.Server.Close()
	})
	return b
}

// APIURL is the REST base URL
func (b *Backend) APIURL() string {
	return b.Server.URL + "/api"
}

// WSURL is the live channel base URL
func (b *Backend) WSURL() string {
	return "ws" + strings.TrimPrefix(b.Server.URL, "http")
}

// SetAutoBroadcast controls whether vote, like and create requests push
// updates the way the real backend does. It is on by default; tests that
// need to control push timing turn it off.
func (b *Backend) SetAutoBroadcast(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.autoBroadcast = on
}

func (b *Backend) broadcasting() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.autoBroadcast
}

// Gate blocks one route until released
type Gate struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

// Arrived is closed once a request reaches the gate
func (g *Gate) Arrived() <-chan struct{} { return g.arrived }

// Release lets the held request continue
func (g *Gate) Release() { g.once.Do(func() { close(g.release) }) }

// Hold makes the next request to route wait until the gate is released
func (b *Backend) Hold(route string) *Gate {
	g := &Gate{arrived: make(chan struct{}), release: make(chan struct{})}
	b.mu.Lock()
	b.gates[route] = g
	b.mu.Unlock()
	return g
}

// FailNext makes the next request to route answer with status
func (b *Backend) FailNext(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = append(b.failures[route], status)
}

// Calls reports how many requests reached route
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

func (b *Backend) handle(mux *http.ServeMux, route string, h http.HandlerFunc) {
	mux.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[route]++
		var status int
		if q := b.failures[route]; len(q) > 0 {
			status, b.failures[route] = q[0], q[1:]
		}
		gate := b.gates[route]
		delete(b.gates, route)
		b.mu.Unlock()

		if gate != nil {
			close(gate.arrived)
			<-gate.release
		}

		if status != 0 {
			writeJSON(w, status, map[string]string{"detail": "injected failure"})
			return
		}
		h(w, r)
	})
}

// AddUser registers a user and returns a valid token for it
func (b *Backend) AddUser(username, password string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.users[username] = user{email: username + "@example.com", password: password}
	return b.issueToken(username)
}

// AddPoll stores a poll created by creator and returns it
func (b *Backend) AddPoll(title, creator string, options ...string) models.Poll {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.newPoll(title, "", creator, options)
	return clonePoll(p)
}

// Poll returns the stored poll
func (b *Backend) Poll(id models.ID) (models.Poll, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.findPoll(id)
	if p == nil {
		return models.Poll{}, false
	}
	return clonePoll(p), true
}

// Broadcast sends v on the channel of poll id
func (b *Backend) Broadcast(id models.ID, v interface{}) {
	b.hub.broadcast(string(id), v)
}

// BroadcastGlobal sends v on the global channel
func (b *Backend) BroadcastGlobal(v interface{}) {
	b.hub.broadcast(globalChannel, v)
}

// WaitForSubscribers blocks until exactly n clients listen on the channel
// of poll id ("" for the global channel).
func (b *Backend) WaitForSubscribers(t *testing.T, id models.ID, n int) {
	t.Helper()
	key := string(id)
	if key == "" {
		key = globalChannel
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if b.hub.count(key) == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d subscribers on %q (have %d)", n, key, b.hub.count(key))
}

// DropSubscribers closes every live connection, as a backend restart
// would.
func (b *Backend) DropSubscribers() {
	b.hub.closeAll()
}

// ----- handlers -----

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid JSON"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.users[req.Username]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Username already registered"})
		return
	}
	b.users[req.Username] = user{email: req.Email, password: req.Password}

	writeJSON(w, http.StatusCreated, models.RegisterResponse{Username: req.Username, Email: req.Email})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid JSON"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.users[req.Username]
	if !ok || u.password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		AccessToken: b.issueToken(req.Username),
		TokenType:   "bearer",
		Username:    req.Username,
	})
}

func (b *Backend) listPolls(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := make([]models.Poll, len(b.polls))
	for i, p := range b.polls {
		out[i] = clonePoll(p)
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getPoll(w http.ResponseWriter, r *http.Request) {
	p, ok := b.Poll(models.ID(r.PathValue("id")))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Poll not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) createPoll(w http.ResponseWriter, r *http.Request) {
	username, ok := b.authenticate(w, r)
	if !ok {
		return
	}

	var req models.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid JSON"})
		return
	}

	texts := make([]string, len(req.Options))
	for i, o := range req.Options {
		texts[i] = o.Text
	}

	b.mu.Lock()
	p := clonePoll(b.newPoll(req.Title, req.Description, username, texts))
	b.mu.Unlock()

	if b.broadcasting() {
		b.hub.broadcast(globalChannel, newPollMessage(p))
	}
	writeJSON(w, http.StatusCreated, p)
}

func (b *Backend) deletePoll(w http.ResponseWriter, r *http.Request) {
	username, ok := b.authenticate(w, r)
	if !ok {
		return
	}
	id := models.ID(r.PathValue("id"))

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, p := range b.polls {
		if p.ID != id {
			continue
		}
		if p.CreatedBy != username {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Not the poll owner"})
			return
		}
		b.polls = append(b.polls[:i], b.polls[i+1:]...)
		delete(b.votes, id)
		delete(b.likes, id)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Poll not found"})
}

func (b *Backend) vote(w http.ResponseWriter, r *http.Request) {
	username, ok := b.authenticate(w, r)
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid JSON"})
		return
	}

	b.mu.Lock()
	p := b.findPoll(req.PollID)
	if p == nil {
		b.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Poll not found"})
		return
	}
	if _, voted := b.votes[p.ID][username]; voted {
		b.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "You have already voted on this poll"})
		return
	}

	found := false
	for i := range p.Options {
		if p.Options[i].ID == req.OptionID {
			p.Options[i].Votes++
			found = true
		}
	}
	if !found {
		b.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid option"})
		return
	}
	if b.votes[p.ID] == nil {
		b.votes[p.ID] = make(map[string]models.ID)
	}
	b.votes[p.ID][username] = req.OptionID
	snapshot := clonePoll(p)
	b.mu.Unlock()

	if b.broadcasting() {
		b.hub.broadcast(string(snapshot.ID), map[string]interface{}{
			"poll_id": snapshot.ID,
			"options": snapshot.Options,
		})
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Vote recorded"})
}

func (b *Backend) userVote(w http.ResponseWriter, r *http.Request) {
	username, ok := b.authenticate(w, r)
	if !ok {
		return
	}
	id := models.ID(r.PathValue("id"))

	b.mu.Lock()
	optionID, voted := b.votes[id][username]
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, models.UserVoteResponse{Voted: voted, OptionID: optionID})
}

func (b *Backend) toggleLike(w http.ResponseWriter, r *http.Request) {
	username, ok := b.authenticate(w, r)
	if !ok {
		return
	}
	id := models.ID(r.PathValue("id"))

	b.mu.Lock()
	p := b.findPoll(id)
	if p == nil {
		b.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Poll not found"})
		return
	}
	if b.likes[id] == nil {
		b.likes[id] = make(map[string]bool)
	}
	liked := !b.likes[id][username]
	if liked {
		b.likes[id][username] = true
		p.LikesCount++
	} else {
		delete(b.likes[id], username)
		p.LikesCount--
	}
	likes := p.LikesCount
	b.mu.Unlock()

	if b.broadcasting() {
		b.hub.broadcast(string(id), map[string]interface{}{
			"type":    models.PushTypeLikeUpdate,
			"poll_id": id,
			"likes":   likes,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"liked": liked, "likes": likes})
}

func (b *Backend) userLike(w http.ResponseWriter, r *http.Request) {
	username, ok := b.authenticate(w, r)
	if !ok {
		return
	}
	id := models.ID(r.PathValue("id"))

	b.mu.Lock()
	liked := b.likes[id][username]
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, models.UserLikeResponse{Liked: liked})
}

// ----- helpers -----

func (b *Backend) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, err := auth.ParseBearer(r.Header.Get("Authorization"))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
		return "", false
	}

	b.mu.Lock()
	username, ok := b.tokens[token]
	b.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token"})
		return "", false
	}
	return username, true
}

// issueToken must be called with b.mu held
func (b *Backend) issueToken(username string) string {
	token, _ := auth.GenerateID(24)
	b.tokens[token] = username
	return token
}

// newPoll must be called with b.mu held
func (b *Backend) newPoll(title, description, creator string, options []string) *models.Poll {
	id, _ := auth.GenerateID(8)
	p := &models.Poll{
		ID:          models.ID(id),
		Title:       title,
		Description: description,
		CreatedAt:   models.Timestamp{Time: time.Now().UTC().Truncate(time.Second)},
		CreatedBy:   creator,
		Options:     make([]models.Option, len(options)),
	}
	for i, text := range options {
		optID, _ := auth.GenerateID(6)
		p.Options[i] = models.Option{ID: models.ID(optID), Text: text}
	}
	// newest first, like the real listing
	b.polls = append([]*models.Poll{p}, b.polls...)
	return p
}

// findPoll must be called with b.mu held
func (b *Backend) findPoll(id models.ID) *models.Poll {
	for _, p := range b.polls {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func clonePoll(p *models.Poll) models.Poll {
	out := *p
	out.Options = append([]models.Option(nil), p.Options...)
	return out
}

func newPollMessage(p models.Poll) map[string]interface{} {
	return map[string]interface{}{
		"type":        models.PushTypeNewPoll,
		"id":          p.ID,
		"title":       p.Title,
		"description": p.Description,
		"options":     p.Options,
		"likes_count": p.LikesCount,
		"created_at":  p.CreatedAt,
		"created_by":  p.CreatedBy,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
