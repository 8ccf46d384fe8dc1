package cli

import (
	"bufio"
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/openshelf/openshelf/internal/googleauth"
	"github.com/openshelf/openshelf/internal/model"
	"github.com/openshelf/openshelf/pkg/token"
)

func (a *App) newLoginCmd() *cobra.Command {
	var (
		email       string
		password    string
		asLibrarian bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = prompt(cmd, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptPassword(cmd, "Password: "); err != nil {
					return err
				}
			}
			user, err := a.session.Login(cmd.Context(), email, password, asLibrarian)
			if err != nil {
				return err
			}
			greet(cmd, user)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	cmd.Flags().BoolVar(&asLibrarian, "librarian", false, "log in against the librarian endpoint")

	cmd.AddCommand(a.newLoginGoogleCmd())
	return cmd
}

func (a *App) newLoginGoogleCmd() *cobra.Command {
	var (
		idToken string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "google",
		Short: "Authenticate with a Google identity token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if idToken == "" {
				srv := googleauth.NewCallbackServer(a.log, a.cfg.Google)
				srv.Start()
				defer srv.Stop(ctx) //nolint:errcheck

				fmt.Fprintf(cmd.OutOrStdout(),
					"Waiting for Google sign-in on http://%s/callback (client %s)...\n",
					srv.Addr(), a.cfg.Google.ClientID)

				waitCtx, cancel := ctxWithTimeout(ctx, timeout)
				defer cancel()
				var err error
				if idToken, err = srv.Wait(waitCtx); err != nil {
					return err
				}
			}
			user, err := a.session.LoginWithGoogle(ctx, idToken)
			if err != nil {
				return err
			}
			greet(cmd, user)
			return nil
		},
	}
	cmd.Flags().StringVar(&idToken, "id-token", "", "Google id token (skips the local callback server)")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "how long to wait for the sign-in callback")
	return cmd
}

func (a *App) newRegisterCmd() *cobra.Command {
	var req model.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Password == "" {
				if req.Password, err = promptPassword(cmd, "Password: "); err != nil {
					return err
				}
			}
			if err := a.validate.Validate(req); err != nil {
				return err
			}
			user, err := a.session.Register(cmd.Context(), req.FirstName, req.LastName, req.Email, req.Password)
			if err != nil {
				return err
			}
			greet(cmd, user)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (prompted when omitted)")
	return cmd
}

func (a *App) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func (a *App) newWhoamiCmd() *cobra.Command {
	var showToken bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.session.FetchCurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if user == nil {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}
			role := "user"
			if user.IsLibrarian {
				role = "librarian"
			}
			fmt.Fprintf(out, "%s <%s> (%s)\n", user.FullName(), user.Email, role)

			if showToken {
				access, err := a.session.AccessToken()
				if err != nil {
					return err
				}
				claims, err := token.Decode(access)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "access token expires %s\n", claims.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showToken, "token", false, "also show access-token expiry")
	return cmd
}

func greet(cmd *cobra.Command, user *model.User) {
	if user == nil {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", user.FullName(), user.Email)
}

func prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	sc := bufio.NewScanner(cmd.InOrStdin())
	if !sc.Scan() {
		return "", sc.Err()
	}
	return strings.TrimSpace(sc.Text()), nil
}

func promptPassword(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
