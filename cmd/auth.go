package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var (
	errLoginFailed     = errors.New("login failed: check your credentials and that the backend is reachable")
	errSignupFailed    = errors.New("signup failed: the username may be taken or the backend is unreachable")
	errPasswordMissing = errors.New("password is required: pass --password or --password-stdin")
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage your HaloGuard session",
	}

	cmd.AddCommand(
		newAuthLoginCmd(app),
		newAuthSignupCmd(app),
		newAuthLogoutCmd(app),
		newAuthStatusCmd(app),
	)

	return cmd
}

type credentialFlags struct {
	username      string
	password      string
	passwordStdin bool
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.username, "username", "", "Account username")
	cmd.Flags().StringVar(&f.password, "password", "", "Account password")
	cmd.Flags().BoolVar(&f.passwordStdin, "password-stdin", false, "Read the password from stdin")
	_ = cmd.MarkFlagRequired("username")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
}

func (f *credentialFlags) resolvePassword(in io.Reader) (string, error) {
	if !f.passwordStdin {
		if f.password == "" {
			return "", errPasswordMissing
		}
		return f.password, nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errPasswordMissing
	}

	return password, nil
}

func newAuthLoginCmd(app *app) *cobra.Command {
	var creds credentialFlags

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := creds.resolvePassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if !app.session.Login(cmd.Context(), creds.username, password) {
				return errLoginFailed
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", creds.username)
			return err
		},
	}

	creds.register(cmd)

	return cmd
}

func newAuthSignupCmd(app *app) *cobra.Command {
	var creds credentialFlags

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := creds.resolvePassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if !app.session.Signup(cmd.Context(), creds.username, password) {
				return errSignupFailed
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Account created, logged in as %s\n", creds.username)
			return err
		},
	}

	creds.register(cmd)

	return cmd
}

func newAuthLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.session.Logout(cmd.Context())

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return err
		},
	}
}

type authStatus struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Backend       string `json:"backend"`
}

func newAuthStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := app.session.Restore(cmd.Context())

			status := authStatus{
				Authenticated: session.IsAuthenticated(),
				Backend:       app.config.BackendURL,
			}
			if session.User != nil {
				status.Username = session.User.Username
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), status)
			}

			out := cmd.OutOrStdout()
			if !status.Authenticated {
				_, err := fmt.Fprintf(out, "Not logged in (backend %s)\n", status.Backend)
				return err
			}
			_, err := fmt.Fprintf(out, "Logged in as %s (backend %s)\n", status.Username, status.Backend)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
