package main

import (
	"github.com/spf13/cobra"

	"bookfinder/internal/auth"
	"bookfinder/internal/identity"
	"bookfinder/internal/logger"
)

type credentialFlags struct {
	email    string
	password string
	confirm  string
}

func (f *credentialFlags) bind(cmd *cobra.Command, confirm bool) {
	cmd.Flags().StringVar(&f.email, "email", "", "account email")
	cmd.Flags().StringVar(&f.password, "password", "", "account password (prompted when omitted)")
	if confirm {
		cmd.Flags().StringVar(&f.confirm, "confirm-password", "", "repeat the password (prompted when omitted)")
	}
}

func (c *cli) signInCmd() *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := c.prompt("Email", f.email)
			if err != nil {
				return err
			}
			password, err := c.promptSecret("Password", f.password)
			if err != nil {
				return err
			}
			if err := checkLocal(auth.SignInReq{Email: email, Password: password}); err != nil {
				return err
			}
			if err := c.session.SignIn(cmd.Context(), c.api, email, password); err != nil {
				return err
			}
			renderSession(c.out, c.session.Snapshot())
			return nil
		},
	}
	f.bind(cmd, false)
	return cmd
}

func (c *cli) signUpCmd() *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := c.prompt("Email", f.email)
			if err != nil {
				return err
			}
			password, err := c.promptSecret("Password", f.password)
			if err != nil {
				return err
			}
			confirm, err := c.promptSecret("Confirm password", f.confirm)
			if err != nil {
				return err
			}
			req := auth.SignUpReq{Email: email, Password: password, ConfirmPassword: confirm}
			if err := checkLocal(req); err != nil {
				return err
			}
			if err := c.session.SignUp(cmd.Context(), c.api, email, password); err != nil {
				return err
			}
			renderSession(c.out, c.session.Snapshot())
			return nil
		},
	}
	f.bind(cmd, true)
	return cmd
}

func (c *cli) signOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.session.State() != identity.Authenticated {
				c.printf("You are not signed in.\n")
				return nil
			}
			// The local session is gone either way.
			if err := c.session.SignOut(cmd.Context(), c.api); err != nil {
				c.log.Warn("sign out was not confirmed by the server", logger.Error(err))
			}
			c.printf("Signed out.\n")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who is signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderSession(c.out, c.session.Snapshot())
			return nil
		},
	}
}

func (c *cli) resetPasswordCmd() *cobra.Command {
	var emailFlag string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Email yourself a password reset link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := c.prompt("Email", emailFlag)
			if err != nil {
				return err
			}
			if err := checkLocal(auth.ResetPasswordReq{Email: email}); err != nil {
				return err
			}
			if err := c.session.ResetPassword(cmd.Context(), c.api, email); err != nil {
				return err
			}
			c.printf("Check your email for the password reset link.\n")
			return nil
		},
	}
	cmd.Flags().StringVar(&emailFlag, "email", "", "account email")
	return cmd
}

func (c *cli) updatePasswordCmd() *cobra.Command {
	var (
		f     credentialFlags
		token string
	)
	cmd := &cobra.Command{
		Use:   "update-password",
		Short: "Set a new password with a reset token or while signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				if err := c.requireUser(); err != nil {
					return err
				}
			}
			password, err := c.promptSecret("New password", f.password)
			if err != nil {
				return err
			}
			confirm, err := c.promptSecret("Confirm new password", f.confirm)
			if err != nil {
				return err
			}
			req := auth.UpdatePasswordReq{Token: token, Password: password, ConfirmPassword: confirm}
			if err := checkLocal(req); err != nil {
				return err
			}
			if err := c.api.UpdatePassword(cmd.Context(), token, password, confirm); err != nil {
				if token == "" {
					return c.apiFailure(err)
				}
				return err
			}
			c.printf("Your password has been updated.\n")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "reset token from the emailed link")
	cmd.Flags().StringVar(&f.password, "password", "", "new password (prompted when omitted)")
	cmd.Flags().StringVar(&f.confirm, "confirm-password", "", "repeat the new password (prompted when omitted)")
	return cmd
}
