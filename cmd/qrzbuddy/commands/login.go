package commands

import (
	"context"
	"fmt"
	"os"

	"qrzbuddy/cmd/qrzbuddy/globals"
	"qrzbuddy/internal/lookup"

	"github.com/spf13/cobra"
)

var (
	loginUsername string
	logout        bool
)

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "The QRZ username, prompted for when empty.")
	loginCmd.Flags().BoolVar(&logout, "logout", false, "Forget the stored credentials and session.")
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login [-u <username>] [--logout]",
	Short: "Stores QRZ credentials and obtains a session.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		value := globals.Get(ctx)

		if logout {
			err := value.Store.Clear(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "credentials and session removed")
			return nil
		}

		username, password, err := loginCredentials(ctx, newTerminalPrompter())
		if err != nil {
			return err
		}
		// the stored credentials are only replaced once these are accepted
		err = value.Orchestrator.Login(ctx, username, password)
		if err != nil {
			return err
		}

		expiration, err := value.Store.SessionExpiration(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "logged in as %s, session valid until %s\n", username, expiration)
		return nil
	},
}

// loginCredentials takes the username from the flag or the environment
// and the password from the environment, prompting for whatever is missing.
func loginCredentials(ctx context.Context, prompt lookup.Prompter) (string, string, error) {
	username := loginUsername
	if username == "" {
		username = os.Getenv(envUsername)
	}
	var err error
	if username == "" {
		username, err = prompt.PromptUsername(ctx)
		if err != nil {
			return "", "", fmt.Errorf("%w: %w", lookup.ErrCredentialsNeeded, err)
		}
	}

	password := os.Getenv(envPassword)
	if password == "" {
		password, err = prompt.PromptPassword(ctx, username)
		if err != nil {
			return "", "", fmt.Errorf("%w: %w", lookup.ErrCredentialsNeeded, err)
		}
	}
	return username, password, nil
}
