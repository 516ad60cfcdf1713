package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/session"
	"clipforge/internal/state"
)

func newLoginCommand(cctx *commandContext) *cobra.Command {
	var emailFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an email one-time password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				email := emailFlag
				if email == "" {
					var err error
					email, err = promptLine(cmd, "Email: ")
					if err != nil {
						return err
					}
				}

				auth := session.NewAuthenticator(r.client, r.store, r.logger)
				otpID, err := auth.RequestOTP(ctx, email)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "One-time password sent to %s\n", email)

				otp, err := promptLine(cmd, "Enter the code: ")
				if err != nil {
					return err
				}
				user, err := auth.Verify(ctx, email, otp, otpID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", user.Email)

				// Seed the workspace list so `spaces use` works right away.
				list, err := r.app.RefreshSpaces(ctx)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not fetch spaces: %v\n", err)
					return nil
				}
				if len(list) == 1 {
					if err := r.app.SetActiveSpace(list[0]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Active space set to %s\n", list[0].Name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%d spaces available; pick one with `clipforge spaces use <space-id>`\n", len(list))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&emailFlag, "email", "e", "", "Account email address")
	return cmd
}

func newLogoutCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear all local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withRuntime(cmd, func(ctx context.Context, r *runtime) error {
				return logout(cmd, r.app)
			})
		},
	}
}

func logout(cmd *cobra.Command, app *state.App) error {
	if err := app.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}
