package cmd

import (
	"context"
	"fmt"
	"time"

	"campus-sports-cli/api"

	"github.com/spf13/cobra"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
	}

	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authRegisterCmd())
	cmd.AddCommand(authStatusCmd())
	cmd.AddCommand(authLogoutCmd())
	return cmd
}

func authLoginCmd() *cobra.Command {
	var req api.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter()
			if err := p.fill(&req.Email, "Email", false); err != nil {
				return err
			}
			if err := p.fill(&req.Password, "Password", true); err != nil {
				return err
			}
			if err := validateLogin(req); err != nil {
				return err
			}

			return withApp(func(ctx context.Context, a *app) error {
				resp, err := client.Login(ctx, req)
				if err != nil {
					return remoteError(err, "Login failed. Please try again.")
				}
				if err := a.session.SetAuth(resp.Access, resp.User); err != nil {
					return err
				}
				return printSignedIn(resp.User)
			})
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password")
	return cmd
}

func authRegisterCmd() *cobra.Command {
	var req api.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter()
			prompts := []struct {
				value  *string
				label  string
				secret bool
			}{
				{&req.Username, "Username", false},
				{&req.FullName, "Full name", false},
				{&req.Email, "Email", false},
				{&req.Mobile, "Mobile", false},
				{&req.Branch, fmt.Sprintf("Branch (%s)", choiceValues(api.BranchChoices)), false},
				{&req.Course, fmt.Sprintf("Course (%s)", choiceValues(api.CourseChoices)), false},
				{&req.Password, "Password", true},
				{&req.Password2, "Confirm password", true},
			}
			for _, prompt := range prompts {
				if err := p.fill(prompt.value, prompt.label, prompt.secret); err != nil {
					return err
				}
			}
			if err := validateRegistration(req); err != nil {
				return err
			}

			return withApp(func(ctx context.Context, a *app) error {
				resp, err := client.Register(ctx, req)
				if err != nil {
					return remoteError(err, "Registration failed. Please try again.")
				}
				if err := a.session.SetAuth(resp.Access, resp.User); err != nil {
					return err
				}
				return printSignedIn(resp.User)
			})
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "Username")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "Full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Mobile, "mobile", "", "Mobile number")
	cmd.Flags().StringVar(&req.Branch, "branch", "", "Branch code")
	cmd.Flags().StringVar(&req.Course, "course", "", "Course code")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password")
	cmd.Flags().StringVar(&req.Password2, "password2", "", "Password confirmation")
	return cmd
}

func printSignedIn(user api.User) error {
	if outputJSON {
		return writeJSON(user)
	}
	fmt.Printf("Logged in as %s (%s).\n", user.Username, user.Email)
	return nil
}

type authStatus struct {
	LoggedIn  bool      `json:"logged_in"`
	Expired   bool      `json:"expired"`
	User      *api.User `json:"user,omitempty"`
	ExpiresAt string    `json:"expires_at,omitempty"`
}

func authStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check auth status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				status := authStatus{}
				if user, ok := a.session.User(); ok {
					status.LoggedIn = true
					status.User = &user
				}
				if exp, ok := a.session.TokenExpiry(); ok {
					status.ExpiresAt = exp.Format(time.RFC3339)
					status.Expired = !time.Now().Before(exp)
				}

				if outputJSON {
					return writeJSON(status)
				}
				switch {
				case !status.LoggedIn:
					fmt.Println("Not logged in.")
				case status.Expired:
					fmt.Printf("Session expired for %s. Run 'campus-sports auth login' to sign in again.\n", status.User.Email)
				default:
					fmt.Printf("Logged in as %s (%s).\n", status.User.Username, status.User.Email)
					if status.ExpiresAt != "" {
						fmt.Printf("Token expires: %s\n", status.ExpiresAt)
					}
				}
				return nil
			})
		},
	}

	return cmd
}

func authLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				a.signOut()
				fmt.Println("Logged out.")
				return nil
			})
		},
	}

	return cmd
}
