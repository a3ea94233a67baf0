package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/gymflex/gymflex-cli/pkg/core/services"
)

// readPassword prompts on stderr and reads a password without echo when
// stdin is a terminal, or a plain line otherwise
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(password), nil
	}

	return readLine(os.Stdin)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func passwordFlagOrPrompt(cmd *cobra.Command) (string, error) {
	password, _ := cmd.Flags().GetString("password")
	if password != "" {
		return password, nil
	}
	return readPassword("Password: ")
}

// LoginCmd creates the login command
func LoginCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and store the access token for later commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := passwordFlagOrPrompt(cmd)
			if err != nil {
				return err
			}

			user, err := services.Login(app.Ctx, app.API, app.State, app.Logger, args[0], password)
			if err != nil {
				return err
			}

			role := "member"
			if user.IsStaff {
				role = "staff"
			}
			fmt.Printf("\n✓ Logged in as %s (%s)\n\n", user.Username, role)
			return nil
		},
	}

	cmd.Flags().StringP("password", "p", "", "Password (prompted for when omitted)")

	return cmd
}

// RegisterCmd creates the register command
func RegisterCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create a member account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := passwordFlagOrPrompt(cmd)
			if err != nil {
				return err
			}

			if err := services.Register(app.Ctx, app.API, app.Logger, args[0], password); err != nil {
				return err
			}

			fmt.Printf("\n✓ Account created for %s - you can now log in\n\n", strings.ToLower(strings.TrimSpace(args[0])))
			return nil
		},
	}

	cmd.Flags().StringP("password", "p", "", "Password (prompted for when omitted)")

	return cmd
}

// LogoutCmd creates the logout command
func LogoutCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token, user and selected dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.Logout(app.API, app.State, app.Logger); err != nil {
				return err
			}
			fmt.Printf("\n✓ Logged out\n\n")
			return nil
		},
	}
}

// WhoAmICmd creates the whoami command
func WhoAmICmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh, _ := cmd.Flags().GetBool("refresh")

			user, err := services.WhoAmI(app.Ctx, app.API, app.State, app.Logger, refresh)
			if err != nil {
				return app.mutationError(err)
			}

			app.Logger.Debug("whoami", zap.Int("user_id", user.ID))

			fmt.Printf("\nUsername:  %s\n", user.Username)
			fmt.Printf("User ID:   %d\n", user.ID)
			fmt.Printf("Staff:     %t\n", user.IsStaff)
			if user.IsSuperuser {
				fmt.Printf("Superuser: %t\n", user.IsSuperuser)
			}
			fmt.Printf("API:       %s\n\n", app.API.BaseURL())
			return nil
		},
	}

	cmd.Flags().Bool("refresh", false, "Fetch the user from the API instead of the local cache")

	return cmd
}
