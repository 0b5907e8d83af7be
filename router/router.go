// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/quickpoll/api"
	"github.com/danielhkuo/quickpoll/cliparse"
	"github.com/danielhkuo/quickpoll/handlers"
	"github.com/danielhkuo/quickpoll/live"
	"github.com/danielhkuo/quickpoll/session"
	"github.com/danielhkuo/quickpoll/storage"
)

// app is what every command runs against. It is built once the global
// flags are parsed.
type app struct {
	cfg    cliparse.Config
	store  *session.Store
	closer io.Closer
	auth   *handlers.AuthHandler
	polls  *handlers.PollHandler
}

// NewRootCommand builds the quickpoll command tree. Output goes to the
// command's out writer and questions read from its input.
func NewRootCommand() *cobra.Command {
	var cfg cliparse.Config
	a := &app{}

	cmd := &cobra.Command{
		Use:           "quickpoll",
		Short:         "QuickPoll - create, vote on and like polls",
		Long:          "A terminal client for QuickPoll with live vote and like updates.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, cfg)
		},
	}

	cliparse.RegisterFlags(cmd.PersistentFlags(), &cfg)

	cmd.AddCommand(newRegisterCommand(a))
	cmd.AddCommand(newLoginCommand(a))
	cmd.AddCommand(newLogoutCommand(a))
	cmd.AddCommand(newWhoAmICommand(a))
	cmd.AddCommand(newPollsCommand(a))
	cmd.AddCommand(newShowCommand(a))
	cmd.AddCommand(newCreateCommand(a))
	cmd.AddCommand(newVoteCommand(a))
	cmd.AddCommand(newLikeCommand(a))
	cmd.AddCommand(newDeleteCommand(a))
	cmd.AddCommand(newWatchCommand(a))

	return cmd
}

func (a *app) setup(cmd *cobra.Command, flags cliparse.Config) error {
	cfg, err := cliparse.Resolve(flags)
	if err != nil {
		return WrapExitError(ExitCommandError, "configuration", err)
	}
	a.cfg = cfg

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx := cmd.Context()
	st, closer, err := storage.Open(ctx, cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "open session storage", err)
	}
	a.closer = closer

	a.store = session.NewStore(st)
	if err := a.store.Hydrate(ctx); err != nil {
		a.teardown()
		return WrapExitError(ExitCommandError, "load session", err)
	}
	cmd.SetContext(session.WithStore(ctx, a.store))

	slog.Debug("configuration resolved",
		"api", cfg.APIURL,
		"ws", cfg.WSURL,
		"storage", cfg.StorageType,
		"logged_in", a.store.Current().Authenticated(),
	)

	client := api.New(cfg.APIURL)
	dialer := live.NewDialer(cfg.WSURL, live.WithLogger(logger))
	a.auth = handlers.NewAuthHandler(client, cmd.OutOrStdout())
	a.polls = handlers.NewPollHandler(client, dialer, cmd.OutOrStdout(), cmd.InOrStdin())
	return nil
}

// run wraps a command body so storage is closed however it ends
func (a *app) run(fn func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer a.teardown()
		return fn(cmd.Context(), args)
	}
}

func (a *app) teardown() {
	if a.closer == nil {
		return
	}
	if err := a.closer.Close(); err != nil {
		slog.Warn("failed to close session storage", "error", err)
	}
	a.closer = nil
}
