package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newLoginURLCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login-url",
		Short: "Print the Kakao authorization URL",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			u, err := a.session.LoginURL(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), u)
			return err
		}),
	}
}

func newLoginCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login <code>",
		Short: "Exchange an authorization code for a session",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			resp, err := a.session.Login(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			name := "unknown user"
			if resp.User != nil {
				name = resp.User.Nickname
				if !resp.User.IsAdmin() {
					slog.Warn("signed in without admin role", "role", resp.User.Role)
				}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", name)
			return err
		}),
	}
}

func newLogoutCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored tokens",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				if a.session.Authenticated(cmd.Context()) {
					return err
				}
				slog.Warn("server logout failed, local session cleared", "error", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return err
		}),
	}
}

func newWhoamiCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in user",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if !a.session.Authenticated(cmd.Context()) {
				return fmt.Errorf("not signed in, run `%s login`", appName)
			}
			u, err := a.session.Me(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		}),
	}
}
