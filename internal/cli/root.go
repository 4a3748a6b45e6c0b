// Package cli provides the command-line interface for the chatbot.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/client"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	serverURL string
	apiClient *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "chatbot",
	Short: "Local RAG chatbot client",
	Long: `Chatbot is a client for the local retrieval-augmented chatbot server.

Ask questions against the indexed knowledge base, manage conversation
sessions and ingest documents into the vector index. All models run
locally through Ollama; no data leaves the machine.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		apiClient = client.New(serverURL)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server base URL (default $CHATBOT_SERVER_URL or http://localhost:8000)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(ingestCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
