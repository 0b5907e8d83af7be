// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/danielhkuo/quickpoll/api"
	"github.com/danielhkuo/quickpoll/auth"
	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/session"
)

var ErrPasswordMismatch = errors.New("passwords do not match")

type AuthHandler struct {
	client *api.Client
	con    *console
}

func NewAuthHandler(client *api.Client, out io.Writer) *AuthHandler {
	return &AuthHandler{client: client, con: newConsole(out, nil)}
}

// Register handles the register command. confirm, when given, must match
// the password.
func (h *AuthHandler) Register(ctx context.Context, req models.RegisterRequest, confirm string) error {
	if confirm != "" && confirm != req.Password {
		return ErrPasswordMismatch
	}
	if err := auth.ValidateRegister(req); err != nil {
		return err
	}

	res, err := h.client.Register(ctx, req)
	if err != nil {
		slog.Error("registration failed", "username", req.Username, "error", err)
		return fmt.Errorf("registration failed: %w", err)
	}

	username := res.Username
	if username == "" {
		username = req.Username
	}
	h.con.printf("Account created for %s. Log in with \"quickpoll login\".\n", username)
	return nil
}

// Login handles the login command and stores the session
func (h *AuthHandler) Login(ctx context.Context, req models.LoginRequest) error {
	if err := auth.ValidateLogin(req); err != nil {
		return err
	}

	res, err := h.client.Login(ctx, req)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return errors.New(apiErr.Message)
		}
		slog.Error("login failed", "username", req.Username, "error", err)
		return fmt.Errorf("something went wrong while logging in: %w", err)
	}

	if err := session.Login(ctx, res.AccessToken, res.Username); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	h.con.printf("Logged in as %s.\n", res.Username)
	return nil
}

// Logout handles the logout command
func (h *AuthHandler) Logout(ctx context.Context) error {
	if err := session.Logout(ctx); err != nil {
		return err
	}
	h.con.printf("Logged out.\n")
	return nil
}

// WhoAmI prints the navbar identity
func (h *AuthHandler) WhoAmI(ctx context.Context) error {
	s := session.Current(ctx)
	if !s.Authenticated() {
		h.con.printf("Not logged in.\n")
		return nil
	}
	h.con.printf("Logged in as %s.\n", s.Username)
	return nil
}
