// ABOUTME: Account CLI commands
// ABOUTME: Signup, password and Google login, logout, and showing the current user
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/auth"
	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/pages"
)

// googleLoginTimeout bounds the wait for the browser redirect.
const googleLoginTimeout = 5 * time.Minute

func newLoginCmd(g *globalFlags) *cobra.Command {
	var google bool
	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Log in with a password or a Google account",
		Long: `Log in to Zala. The session is remembered until 'zala logout'.

With --google a browser window asks for consent. When already logged in,
the Google account is connected to the current user so campaign email can
be sent as them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.open(cmd, openOptions{})
			if err != nil {
				return err
			}
			defer rt.Close()

			if google {
				return loginGoogle(cmd, rt)
			}

			in := bufio.NewReader(cmd.InOrStdin())
			username := ""
			if len(args) > 0 {
				username = args[0]
			} else {
				fmt.Fprint(cmd.ErrOrStderr(), "Username: ")
				if username, err = readLine(in); err != nil {
					return err
				}
			}
			password, err := readPassword(cmd, in, "Password: ")
			if err != nil {
				return err
			}

			_, err = pages.NewAuthController(rt.deps).Login(cmd.Context(), username, password)
			return err
		},
	}
	cmd.Flags().BoolVar(&google, "google", false, "Log in with Google in the browser")
	return cmd
}

func newSignupCmd(g *globalFlags) *cobra.Command {
	var form pages.SignupForm
	cmd := &cobra.Command{
		Use:   "signup [username]",
		Short: "Create an account and log in",
		Long: `Create a Zala account. Details not given as flags are asked for,
and the password is asked for twice.`,
		Example: `  zala signup grace --first Grace --last Hopper --email grace@example.com --phone 555-0100`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.open(cmd, openOptions{})
			if err != nil {
				return err
			}
			defer rt.Close()

			if len(args) > 0 {
				form.Username = args[0]
			}
			in := bufio.NewReader(cmd.InOrStdin())
			for _, field := range []struct {
				prompt string
				value  *string
			}{
				{"Username: ", &form.Username},
				{"First name: ", &form.FirstName},
				{"Last name: ", &form.LastName},
				{"Email: ", &form.Email},
				{"Phone: ", &form.Phone},
			} {
				if *field.value != "" {
					continue
				}
				fmt.Fprint(cmd.ErrOrStderr(), field.prompt)
				if *field.value, err = readLine(in); err != nil {
					return err
				}
			}
			if form.Password, err = readPassword(cmd, in, "Password: "); err != nil {
				return err
			}
			if form.RepeatPassword, err = readPassword(cmd, in, "Repeat password: "); err != nil {
				return err
			}

			_, err = pages.NewAuthController(rt.deps).Signup(cmd.Context(), form)
			return err
		},
	}
	cmd.Flags().StringVar(&form.FirstName, "first", "", "First name")
	cmd.Flags().StringVar(&form.LastName, "last", "", "Last name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "Phone number")
	return cmd
}

func loginGoogle(cmd *cobra.Command, rt *runtime) error {
	if !rt.cfg.GoogleLoginConfigured() {
		return fmt.Errorf("google login is not configured: set GOOGLE_CLIENT_ID")
	}
	ctrl := pages.NewAuthController(rt.deps)

	var target *int
	current, err := ctrl.AutoLogin(cmd.Context())
	if err != nil {
		rt.logger.Debug("no session to link google to")
	}
	if current != nil {
		target = &current.UserID
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), googleLoginTimeout)
	defer cancel()
	flow := &auth.CodeFlow{
		Config: auth.NewOAuthConfig(rt.cfg.OAuth()),
		Logger: rt.logger,
		Open: func(url string) error {
			fmt.Fprintf(cmd.ErrOrStderr(), "Opening your browser. If it does not open, visit:\n\n  %s\n\n", url)
			if err := auth.OpenBrowser(url); err != nil {
				rt.logger.Debug("browser did not open")
			}
			return nil
		},
	}
	grant, err := flow.Authorize(ctx)
	if err != nil {
		return fmt.Errorf("google login failed: %w", err)
	}

	_, err = ctrl.LoginGoogle(cmd.Context(), api.GoogleLogin{
		Code:         grant.Code,
		Scope:        grant.Scope,
		TargetUserID: target,
	})
	return err
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo from a terminal, or a line from a pipe.
func readPassword(cmd *cobra.Command, in *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	return readLine(in)
}

func newLogoutCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.open(cmd, openOptions{})
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := pages.NewAuthController(rt.deps).Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(rt.out, "✓ Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withUser(cmd, func(rt *runtime) error {
				printUser(rt.out, *rt.deps.App.User())
				return nil
			})
		},
	}
}

func printUser(w io.Writer, u models.User) {
	fmt.Fprintf(w, "%s (ID: %d)\n", color.New(color.Bold).Sprint(u.DisplayName()), u.UserID)
	fmt.Fprintf(w, "  Username: %s\n", u.Username)
	if u.Role != "" {
		fmt.Fprintf(w, "  Role:     %s\n", u.Role)
	}
	if u.Contact != nil && u.Contact.Email != "" {
		fmt.Fprintf(w, "  Email:    %s\n", u.Contact.Email)
	}
	gmail := "not connected (run 'zala login --google')"
	if u.GmailConnected {
		gmail = "connected"
	}
	fmt.Fprintf(w, "  Gmail:    %s\n", gmail)
}
