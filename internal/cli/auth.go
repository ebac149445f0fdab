package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/zenem/zenem/internal/api"
	"github.com/zenem/zenem/internal/notify"
	"github.com/zenem/zenem/internal/store"
)

// NewAuthCmd creates the auth command group
func NewAuthCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Log in, log out and inspect the stored session",
	}

	cmd.AddCommand(
		newAuthLoginCmd(a),
		newAuthLogoutCmd(a),
		newAuthStatusCmd(a),
	)

	return cmd
}

func newAuthLoginCmd(a *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for a token and store it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}

			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			resp, err := s.Client.Login(ctx, email, password)
			if err != nil {
				s.Notifier.Notify(ctx, notify.Failure("Login failed", err))
				return err
			}
			if err := s.Store.SetToken(resp.Token); err != nil {
				return err
			}
			if err := s.Store.SetUser(resp.User); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", displayUser(&resp.User))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")

	return cmd
}

func newAuthLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			// The local session is dropped even if the backend call fails.
			logoutErr := s.Client.Logout(cmd.Context())
			if err := s.Store.Clear(); err != nil {
				return err
			}
			if logoutErr != nil && !errors.Is(logoutErr, api.ErrAuthentication) {
				s.Notifier.Notify(cmd.Context(), notify.New(notify.LevelWarning, "Logged out locally", logoutErr.Error()))
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newAuthStatusCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the stored token is still accepted",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			token, err := s.Store.Token()
			if err != nil {
				return err
			}
			if token == "" {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}

			user, err := s.Store.User()
			if err != nil {
				return err
			}
			if user != nil {
				fmt.Fprintf(out, "User:    %s\n", displayUser(user))
			}
			if exp, ok := store.TokenExpiry(token); ok {
				verb := "expires"
				if exp.Before(time.Now()) {
					verb = "expired"
				}
				fmt.Fprintf(out, "Token:   %s %s\n", verb, humanize.Time(exp))
			}

			status, err := s.Client.AuthStatus(cmd.Context())
			switch {
			case errors.Is(err, api.ErrAuthentication):
				fmt.Fprintln(out, "Backend: token rejected, run 'zenem auth login'")
			case err != nil:
				return err
			case status.Authenticated:
				fmt.Fprintln(out, "Backend: authenticated")
			default:
				fmt.Fprintln(out, "Backend: not authenticated")
			}
			return nil
		},
	}
}

func displayUser(u *api.User) string {
	switch {
	case u.Name != "" && u.Email != "":
		return fmt.Sprintf("%s <%s>", u.Name, u.Email)
	case u.Email != "":
		return u.Email
	case u.Name != "":
		return u.Name
	default:
		return u.ID
	}
}
