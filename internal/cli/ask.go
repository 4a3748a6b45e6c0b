package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var askSession string

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask a question against the knowledge base",
	Long: `Ask a question and get an answer grounded in the indexed documents.

Conversation history is kept per session, so follow-up questions within
the same session can reference earlier turns.

Examples:
  chatbot ask "How do I reset my password?"
  chatbot ask "And after that?" --session support-42`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "default", "conversation session id")
}

func runAsk(cmd *cobra.Command, args []string) error {
	result, err := apiClient.Chat(cmd.Context(), args[0], askSession)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	fmt.Println(result.Answer)
	return nil
}
