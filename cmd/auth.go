package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/otherjamesbrown/meetscribe-cli/credentials"
)

// Auth command flags.
var (
	authToken          string
	authServer         string
	authNonInteractive bool
)

// NewAuthCommand creates the auth command group.
func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long: `Manage authentication credentials for the captions API.

Credentials are stored encrypted in ~/.mscribe/credentials.yaml; the
encryption key lives in the system keyring when one is available, with
MSCRIBE_ENCRYPTION_KEY as an override for headless machines.

The MSCRIBE_TOKEN environment variable takes precedence over stored
credentials for all commands.`,
	}

	login := &cobra.Command{
		Use:   "login",
		Short: "Store an API token",
		Long: `Store an API token for the captions API.

Examples:
  # Interactive login (prompts for the token with hidden input)
  mscribe auth login

  # Login with token flag
  mscribe auth login --token msc_abc123...

  # Login with token from environment
  MSCRIBE_TOKEN=msc_abc123... mscribe auth login

Notes:
  - Tokens are stored encrypted at rest
  - MSCRIBE_TOKEN always takes precedence over the stored token`,
		RunE: runLogin,
	}
	login.Flags().StringVar(&authToken, "token", "", "API token to store")
	login.Flags().StringVar(&authServer, "server", "", "Server URL to associate with the token")
	login.Flags().BoolVar(&authNonInteractive, "non-interactive", false, "Fail instead of prompting for input")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API token",
		Long: `Remove the stored API token from the local credential store.

The MSCRIBE_TOKEN environment variable is not affected.

Examples:
  mscribe auth logout`,
		RunE: runLogout,
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show current authentication status",
		Long: `Display the current authentication status.

Shows the active credential source (environment or stored), the masked
token, and when the stored token was last updated.

Examples:
  mscribe auth status`,
		RunE: runAuthStatus,
	}

	cmd.AddCommand(login)
	cmd.AddCommand(logout)
	cmd.AddCommand(status)

	return cmd
}

// runLogin handles the login command.
func runLogin(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("initializing credential store: %w", err)
	}

	token := authToken
	if token == "" {
		if envToken := os.Getenv("MSCRIBE_TOKEN"); envToken != "" {
			token = envToken
			fmt.Fprintln(cmd.OutOrStdout(), "Using token from MSCRIBE_TOKEN environment variable")
		}
	}

	if token == "" {
		if authNonInteractive {
			return fmt.Errorf("no token provided and --non-interactive flag set")
		}
		token, err = promptForToken(cmd)
		if err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
	}

	if err := validateToken(token); err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	creds := &credentials.Credentials{
		Token:         token,
		ServerAddress: authServer,
	}
	if err := store.Save(creds); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Login successful!")
	fmt.Fprintf(out, "  Token: %s\n", credentials.MaskToken(token))
	if authServer != "" {
		fmt.Fprintf(out, "  Server: %s\n", authServer)
	}

	credPath, _ := credentials.CredentialsPath()
	fmt.Fprintf(out, "\nCredentials stored in: %s\n", credPath)

	return nil
}

// promptForToken reads the token with hidden input, falling back to plain
// line input when stdin is not a terminal.
func promptForToken(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "API Token: ")

	tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(cmd.OutOrStdout())
	if err == nil {
		return strings.TrimSpace(string(tokenBytes)), nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// validateToken performs basic validation on a token.
func validateToken(token string) error {
	if token == "" {
		return fmt.Errorf("token is empty")
	}
	if len(token) < 8 {
		return fmt.Errorf("token is too short")
	}
	return nil
}

// runLogout handles the logout command.
func runLogout(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("initializing credential store: %w", err)
	}

	out := cmd.OutOrStdout()
	if !store.Exists() {
		fmt.Fprintln(out, "No stored credentials found.")
		return nil
	}

	if err := store.Delete(); err != nil {
		return fmt.Errorf("removing credentials: %w", err)
	}

	fmt.Fprintln(out, "Logged out successfully.")

	if os.Getenv("MSCRIBE_TOKEN") != "" {
		fmt.Fprintln(out, "\nNote: MSCRIBE_TOKEN environment variable is still set.")
		fmt.Fprintln(out, "Unset it with: unset MSCRIBE_TOKEN")
	}

	return nil
}

// runAuthStatus handles the status command.
func runAuthStatus(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("initializing credential store: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Authentication Status")
	fmt.Fprintln(out, "=====================")
	fmt.Fprintln(out)

	envToken := os.Getenv("MSCRIBE_TOKEN")
	if envToken != "" {
		fmt.Fprintf(out, "MSCRIBE_TOKEN: %s (active)\n", credentials.MaskToken(envToken))
		fmt.Fprintln(out)
	}

	creds, err := store.Load()
	if err != nil {
		if errors.Is(err, credentials.ErrNoCredentials) {
			fmt.Fprintln(out, "Stored Credentials: None")
			if envToken == "" {
				fmt.Fprintln(out, "\nNot authenticated. Run 'mscribe auth login' to authenticate.")
			}
			return nil
		}
		return fmt.Errorf("loading credentials: %w", err)
	}

	fmt.Fprintln(out, "Stored Credentials:")
	fmt.Fprintf(out, "  Token: %s\n", credentials.MaskToken(creds.Token))
	if creds.Subject != "" {
		fmt.Fprintf(out, "  Subject: %s\n", creds.Subject)
	}
	if creds.ServerAddress != "" {
		fmt.Fprintf(out, "  Server: %s\n", creds.ServerAddress)
	}
	fmt.Fprintf(out, "  Last Updated: %s\n", creds.LastUpdated.Format(time.RFC3339))

	fmt.Fprintln(out)
	if envToken != "" {
		fmt.Fprintln(out, "Active Credential Source: Environment variable")
	} else {
		fmt.Fprintln(out, "Active Credential Source: Stored credentials")
	}

	return nil
}
