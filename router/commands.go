// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/quickpoll/models"
)

// ----- AUTH -----

func newRegisterCommand(a *app) *cobra.Command {
	var (
		req     models.RegisterRequest
		confirm string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username (2-50 characters)")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&confirm, "confirm-password", "", "repeat the password")

	cmd.RunE = a.run(func(ctx context.Context, args []string) error {
		if req.Password == "" {
			pw, err := promptLine(cmd, "Password: ")
			if err != nil {
				return err
			}
			req.Password = pw
		}
		return a.auth.Register(ctx, req, confirm)
	})
	return cmd
}

func newLoginCommand(a *app) *cobra.Command {
	var req models.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "email address (optional)")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password (prompted when omitted)")

	cmd.RunE = a.run(func(ctx context.Context, args []string) error {
		if req.Password == "" {
			pw, err := promptLine(cmd, "Password: ")
			if err != nil {
				return err
			}
			req.Password = pw
		}
		return a.auth.Login(ctx, req)
	})
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.run(func(ctx context.Context, args []string) error {
		return a.auth.Logout(ctx)
	})
	return cmd
}

func newWhoAmICommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show who is logged in",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.run(func(ctx context.Context, args []string) error {
		return a.auth.WhoAmI(ctx)
	})
	return cmd
}

// ----- POLLS -----

func newPollsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "polls",
		Aliases: []string{"ls", "list"},
		Short:   "List polls, newest first",
		Args:    cobra.NoArgs,
	}
	cmd.RunE = a.run(func(ctx context.Context, args []string) error {
		return a.polls.List(ctx)
	})
	return cmd
}

func newShowCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <poll>",
		Short: "Show one poll",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.run(func(ctx context.Context, args []string) error {
		return a.polls.Show(ctx, models.ID(args[0]))
	})
	return cmd
}

func newCreateCommand(a *app) *cobra.Command {
	var (
		title       string
		description string
		options     []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a poll (requires login)",
		Example: `  quickpoll create -t "Lunch?" -o Pizza -o Sushi
  quickpoll create -t "Pets" --description "Pick one" -o Cats -o Dogs`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "poll title")
	cmd.Flags().StringVar(&description, "description", "", "poll description")
	cmd.Flags().StringArrayVarP(&options, "option", "o", nil, "an option (repeat for each, at least two)")

	cmd.RunE = a.run(func(ctx context.Context, args []string) error {
		req := models.CreatePollRequest{Title: title, Description: description}
		for _, o := range options {
			req.Options = append(req.Options, models.OptionInput{Text: o})
		}
		return a.polls.Create(ctx, req)
	})
	return cmd
}

// ----- ACTIONS -----

func newVoteCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote <poll> <option>",
		Short: "Vote for an option (once per poll)",
		Args:  cobra.ExactArgs(2),
	}
	cmd.RunE = a.run(func(ctx context.Context, args []string) error {
		return a.polls.Vote(ctx, models.ID(args[0]), models.ID(args[1]))
	})
	return cmd
}

func newLikeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "like <poll>",
		Short: "Like a poll, or unlike it if already liked",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.run(func(ctx context.Context, args []string) error {
		return a.polls.Like(ctx, models.ID(args[0]))
	})
	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <poll>",
		Short: "Delete a poll you created",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation question")

	cmd.RunE = a.run(func(ctx context.Context, args []string) error {
		return a.polls.Delete(ctx, models.ID(args[0]), yes)
	})
	return cmd
}

func newWatchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [poll]",
		Short: "Follow the poll list, or one poll, live until interrupted",
		Args:  cobra.MaximumNArgs(1),
	}
	cmd.RunE = a.run(func(ctx context.Context, args []string) error {
		if len(args) == 1 {
			return a.polls.WatchPoll(ctx, models.ID(args[0]))
		}
		return a.polls.Watch(ctx)
	})
	return cmd
}

// promptLine asks for one line on the command's input
func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" && err != nil {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(prompt), ": "), err)
	}
	return line, nil
}
