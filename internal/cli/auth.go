package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/boddenberg/crm-desk-go/internal/domain"

	"github.com/spf13/cobra"
)

func newLoginCmd(d *Deps) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				email = prompt(cmd, in, "Email: ")
			}
			if password == "" {
				password = prompt(cmd, in, "Password: ")
			}

			user, err := d.Session.Login(cmd.Context(), &domain.LoginRequest{
				Email:    email,
				Password: password,
			})
			if err != nil {
				return fmt.Errorf("%s", domain.UserMessage(err, "Login failed. Please try again."))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s.\n", user.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newRegisterCmd(d *Deps) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if name == "" {
				name = prompt(cmd, in, "Name: ")
			}
			if email == "" {
				email = prompt(cmd, in, "Email: ")
			}
			if password == "" {
				password = prompt(cmd, in, "Password: ")
			}

			user, err := d.Session.Register(cmd.Context(), &domain.RegisterRequest{
				Name:     name,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return fmt.Errorf("%s", domain.UserMessage(err, "Registration failed. Please try again."))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s. You are signed in.\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			d.Session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(d); err != nil {
				return err
			}

			user := d.Session.CurrentUser()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:   %s\n", user.Name)
			fmt.Fprintf(out, "Email:  %s\n", user.Email)
			fmt.Fprintf(out, "Roles:  %s\n", strings.Join(user.Roles, ", "))
			if exp := d.Session.TokenExpiresAt(); !exp.IsZero() {
				fmt.Fprintf(out, "Token:  expires %s\n", exp.Local().Format("2006-01-02 15:04:05"))
			}
			if d.Session.IsAdmin() {
				fmt.Fprintln(out, "Admin:  yes")
			}
			return nil
		},
	}
}

func newProfileCmd(d *Deps) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the signed-in user's name or email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(d); err != nil {
				return err
			}
			if name == "" && email == "" {
				return fmt.Errorf("nothing to update: pass --name and/or --email")
			}

			user, err := d.Session.UpdateProfile(cmd.Context(), name, email)
			if err != nil {
				return fmt.Errorf("%s", domain.UserMessage(err, "Unable to update profile. Please try again."))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Profile updated: %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&email, "email", "", "new email")
	return cmd
}

func prompt(cmd *cobra.Command, in *bufio.Reader, label string) string {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}
