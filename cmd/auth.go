package cmd

import (
	"bufio"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/harshbansal7/dealsense/credentials"
)

// NewAuthCommand creates the auth command group for API-key management.
func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage LLM provider API keys",
		Long: `Store and remove provider API keys in the operating system keyring.
Environment variables (GOOGLE_API_KEY, OPENAI_API_KEY) always take
precedence over stored keys.`,
	}

	cmd.AddCommand(newAuthSetCommand())
	cmd.AddCommand(newAuthClearCommand())

	return cmd
}

func newAuthSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <provider>",
		Short: "Store an API key for a provider in the system keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]

			fmt.Fprintf(cmd.OutOrStdout(), "API key for %s: ", provider)
			key, err := readSecret(cmd)
			if err != nil {
				return fmt.Errorf("failed to read API key: %w", err)
			}
			if key == "" {
				return fmt.Errorf("empty API key")
			}

			if err := credentials.SetAPIKey(provider, key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored API key for %s\n", provider)
			return nil
		},
	}
}

// readSecret reads a secret from the terminal without echo. When no terminal
// is attached (pipes, redirected input) it falls back to a plain line read
// from the command's input.
func readSecret(cmd *cobra.Command) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		keyBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(keyBytes)), nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func newAuthClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <provider>",
		Short: "Remove a provider's API key from the system keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]
			if err := credentials.DeleteAPIKey(provider); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed API key for %s\n", provider)
			return nil
		},
	}
}
