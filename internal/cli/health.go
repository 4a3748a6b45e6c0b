package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the chatbot server is up",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient.Health(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Server is healthy")
		return nil
	},
}
