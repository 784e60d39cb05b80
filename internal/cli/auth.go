package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okatev/readspace/internal/api"
	"github.com/okatev/readspace/internal/session"
)

// readSecret reads one line from the command's stdin when the value was
// not passed as a flag. Password prompts go to stderr so stdout stays
// clean for scripting.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCmd(app *App) *cobra.Command {
	var (
		email    string
		password string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				password, err = readSecret(cmd, "password: ")
				if err != nil {
					return err
				}
			}
			if err := app.API.Login(cmd.Context(), email, password, remember); err != nil {
				return err
			}
			scope := "this session"
			if remember {
				scope = "future sessions"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (token kept for %s)\n", email, scope)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted if omitted)")
	cmd.Flags().BoolVarP(&remember, "remember", "r", false, "persist the token across sessions")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.API.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newRegisterCmd(app *App) *cobra.Command {
	var reg api.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if reg.Password == "" {
				var err error
				reg.Password, err = readSecret(cmd, "password: ")
				if err != nil {
					return err
				}
			}
			reg.ConfirmPassword = reg.Password
			if err := app.API.Register(cmd.Context(), reg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "account created; check your inbox for the confirmation link")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&reg.Username, "username", "", "display name")
	f.StringVar(&reg.Email, "email", "", "account email")
	f.StringVar(&reg.Password, "password", "", "account password (prompted if omitted)")
	f.IntVar(&reg.Age, "age", 0, "age")
	f.StringVar(&reg.Specialization, "specialization", "", "field of study or work")
	f.StringVar(&reg.Level, "level", "", "reading level")
	f.StringVar(&reg.Interest, "interest", "", "primary interest")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity behind the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.Tokens.Identity()
			if errors.Is(err, session.ErrNoToken) {
				return errors.New("not logged in")
			}
			if errors.Is(err, session.ErrTokenExpired) {
				return errors.New("stored token has expired; log in again")
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "subject: %s\n", id.Subject)
			if id.Email != "" {
				fmt.Fprintf(out, "email:   %s\n", id.Email)
			}
			if id.Name != "" {
				fmt.Fprintf(out, "name:    %s\n", id.Name)
			}
			if !id.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "expires: %s\n", id.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
			}
			return nil
		},
	}
}
