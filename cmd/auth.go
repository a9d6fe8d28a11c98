package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VVic23/civics-practice/internal/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the local account and saved session",
}

var authSignupCmd = &cobra.Command{
	Use:   "signup <email>",
	Short: "Create a local account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		svc, err := e.identity(ctx)
		if err != nil {
			return err
		}
		u, err := svc.SignUp(ctx, args[0], password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s. Please sign in.\n", u.Email)
		return nil
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in and save the session for the next run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		svc, err := e.identity(ctx)
		if err != nil {
			return err
		}
		sess, err := svc.SignIn(ctx, args[0], password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s until %s.\n",
			sess.User.Email, sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		svc, err := e.identity(ctx)
		if err != nil {
			return err
		}
		if err := svc.SignOut(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show who is signed in",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		svc, err := e.identity(ctx)
		if err != nil {
			return err
		}
		sess, err := svc.CurrentSession(ctx)
		if err != nil {
			return err
		}
		if sess == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), sess.User.Email)
		return nil
	},
}

// readPassword takes --password, else the first line of stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", &auth.ValidationError{Field: "password", Message: "Password is required"}
	}
	return line, nil
}

func init() {
	authSignupCmd.Flags().String("password", "", "Password (read from stdin when omitted)")
	authLoginCmd.Flags().String("password", "", "Password (read from stdin when omitted)")

	authCmd.AddCommand(authSignupCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authWhoamiCmd)
}
