package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAuthCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newLoginCommand(ctx),
		newLogoutCommand(ctx),
		newRegisterCommand(ctx),
		newVerifyEmailCommand(ctx),
		newForgotPasswordCommand(ctx),
		newResetPasswordCommand(ctx),
		newWhoamiCommand(ctx),
	}
}

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.accountService()
			if err != nil {
				return err
			}

			email = strings.TrimSpace(email)
			if email == "" {
				email, err = promptLine(cmd, "Email: ")
				if err != nil {
					return err
				}
			}
			if password == "" {
				password, err = promptLine(cmd, "Password: ")
				if err != nil {
					return err
				}
			}

			user, err := svc.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, user)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s plan, %d credits)\n",
				user.Email, titleLabel(string(user.Plan)), user.Credits)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.accountService()
			if err != nil {
				return err
			}
			if err := svc.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	var email string
	var password string
	var resend bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.accountService()
			if err != nil {
				return err
			}

			email = strings.TrimSpace(email)
			if email == "" {
				email, err = promptLine(cmd, "Email: ")
				if err != nil {
					return err
				}
			}

			if resend {
				if err := svc.ResendVerification(cmd.Context(), email); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Verification email resent to %s\n", email)
				return nil
			}

			if password == "" {
				password, err = promptLine(cmd, "Password: ")
				if err != nil {
					return err
				}
			}
			if err := svc.Register(cmd.Context(), email, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created; check %s for a verification email\n", email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	cmd.Flags().BoolVar(&resend, "resend", false, "Resend the verification email instead of registering")
	return cmd
}

func newVerifyEmailCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-email <token>",
		Short: "Confirm an account with the emailed token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.accountService()
			if err != nil {
				return err
			}
			if err := svc.VerifyEmail(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Email verified; you can log in now")
			return nil
		},
	}
}

func newForgotPasswordCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Request a password reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.accountService()
			if err != nil {
				return err
			}
			if err := svc.ForgotPassword(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password reset instructions sent to %s\n", args[0])
			return nil
		},
	}
}

func newResetPasswordCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <token>",
		Short: "Set a new password with the emailed token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.accountService()
			if err != nil {
				return err
			}
			password, err := promptLine(cmd, "New password: ")
			if err != nil {
				return err
			}
			if err := svc.ResetPassword(cmd.Context(), args[0], password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password updated")
			return nil
		},
	}
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.sessionStore()
			if err != nil {
				return err
			}

			if refresh {
				client, err := ctx.ensureClient()
				if err != nil {
					return err
				}
				if err := client.Refresh(cmd.Context()); err != nil {
					return err
				}
				svc, err := ctx.accountService()
				if err != nil {
					return err
				}
				if _, err := svc.Me(cmd.Context()); err != nil {
					return err
				}
			}

			snap := store.Snapshot()
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"authenticated": snap.IsAuthenticated(),
					"user":          snap.User,
					"client_id":     store.ClientID(),
				})
			}

			out := cmd.OutOrStdout()
			if !snap.IsAuthenticated() {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}
			fmt.Fprintf(out, "Logged in as %s\n", snap.User.Email)
			fmt.Fprintf(out, "Plan:    %s\n", titleLabel(string(snap.User.Plan)))
			fmt.Fprintf(out, "Credits: %d\n", snap.User.Credits)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Rotate the token pair and fetch the latest profile first")
	return cmd
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	value := strings.TrimSpace(line)
	if value == "" {
		return "", fmt.Errorf("no value entered")
	}
	return value, nil
}
