package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearSession string

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the conversation history of a session",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().StringVarP(&clearSession, "session", "s", "default", "conversation session id")
}

func runClear(cmd *cobra.Command, args []string) error {
	if err := apiClient.ClearHistory(cmd.Context(), clearSession); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	fmt.Printf("Cleared history for session %q\n", clearSession)
	return nil
}
