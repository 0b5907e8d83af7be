// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/danielhkuo/quickpoll/auth"
	"github.com/danielhkuo/quickpoll/middleware"
	"github.com/danielhkuo/quickpoll/models"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrNoToken      = errors.New("no session token")
)

// Error is a non-2xx answer from the backend
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Status)
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Client calls the QuickPoll REST backend. It never retries: a retried
// like would toggle twice.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client. Its transport is used
// as-is, without the logging chain.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: middleware.Chain(http.DefaultTransport,
				middleware.WithRequestID,
				middleware.WithLogging,
			),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func pollPath(prefix string, id models.ID) string {
	return prefix + url.PathEscape(string(id))
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body, out interface{}) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", auth.BearerHeader(token))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload := middleware.ReadError(resp)
		return &Error{Op: op, Status: resp.StatusCode, Message: payload.Text()}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil
	}

	if err := middleware.DecodeJSON(resp, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// ----- AUTH -----

// Register handles POST /auth/register
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (models.RegisterResponse, error) {
	var out models.RegisterResponse
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register", "", req, &out); err != nil {
		return models.RegisterResponse{}, err
	}
	return out, nil
}

// Login handles POST /auth/login. Some backends answer 200 with an
// {"error": ...} body, which is reported like a rejected login.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	var out struct {
		models.LoginResponse
		models.ErrorResponse
	}
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", req, &out); err != nil {
		return models.LoginResponse{}, err
	}

	if out.ErrorResponse.Error != "" {
		return models.LoginResponse{}, &Error{Op: "login", Status: http.StatusUnauthorized, Message: out.ErrorResponse.Error}
	}
	if out.AccessToken == "" {
		return models.LoginResponse{}, &Error{Op: "login", Status: http.StatusUnauthorized, Message: "no access token in response"}
	}
	if out.Username == "" {
		out.Username = req.Username
	}
	return out.LoginResponse, nil
}

// ----- POLLS -----

// ListPolls handles GET /polls/
func (c *Client) ListPolls(ctx context.Context) ([]models.Poll, error) {
	var out []models.Poll
	if err := c.do(ctx, "list polls", http.MethodGet, "/polls/", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPoll handles GET /polls/{id}
func (c *Client) GetPoll(ctx context.Context, id models.ID) (models.Poll, error) {
	var out models.Poll
	if err := c.do(ctx, "get poll", http.MethodGet, pollPath("/polls/", id), "", nil, &out); err != nil {
		return models.Poll{}, err
	}
	return out, nil
}

// CreatePoll handles POST /polls/
func (c *Client) CreatePoll(ctx context.Context, token string, req models.CreatePollRequest) (models.Poll, error) {
	if token == "" {
		return models.Poll{}, ErrNoToken
	}
	var out models.Poll
	if err := c.do(ctx, "create poll", http.MethodPost, "/polls/", token, req, &out); err != nil {
		return models.Poll{}, err
	}
	return out, nil
}

// DeletePoll handles DELETE /polls/{id}. Ownership is enforced by the
// backend.
func (c *Client) DeletePoll(ctx context.Context, token string, id models.ID) error {
	if token == "" {
		return ErrNoToken
	}
	return c.do(ctx, "delete poll", http.MethodDelete, pollPath("/polls/", id), token, nil, nil)
}

// ----- VOTES -----

// Vote handles POST /votes/
func (c *Client) Vote(ctx context.Context, token string, pollID, optionID models.ID) error {
	if token == "" {
		return ErrNoToken
	}
	req := models.VoteRequest{PollID: pollID, OptionID: optionID}
	return c.do(ctx, "vote", http.MethodPost, "/votes/", token, req, nil)
}

// UserVote handles GET /votes/user/{pollId}
func (c *Client) UserVote(ctx context.Context, token string, pollID models.ID) (models.UserVoteResponse, error) {
	if token == "" {
		return models.UserVoteResponse{}, ErrNoToken
	}
	var out models.UserVoteResponse
	if err := c.do(ctx, "get user vote", http.MethodGet, pollPath("/votes/user/", pollID), token, nil, &out); err != nil {
		return models.UserVoteResponse{}, err
	}
	return out, nil
}

// ----- LIKES -----

// ToggleLike handles POST /likes/{pollId}
func (c *Client) ToggleLike(ctx context.Context, token string, pollID models.ID) (models.LikeResponse, error) {
	if token == "" {
		return models.LikeResponse{}, ErrNoToken
	}
	var out models.LikeResponse
	if err := c.do(ctx, "toggle like", http.MethodPost, pollPath("/likes/", pollID), token, nil, &out); err != nil {
		return models.LikeResponse{}, err
	}
	return out, nil
}

// UserLike handles GET /likes/user/{pollId}
func (c *Client) UserLike(ctx context.Context, token string, pollID models.ID) (models.UserLikeResponse, error) {
	if token == "" {
		return models.UserLikeResponse{}, ErrNoToken
	}
	var out models.UserLikeResponse
	if err := c.do(ctx, "get user like", http.MethodGet, pollPath("/likes/user/", pollID), token, nil, &out); err != nil {
		return models.UserLikeResponse{}, err
	}
	return out, nil
}
