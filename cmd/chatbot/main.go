// Package main provides the entry point for the chatbot CLI.
package main

import (
	"fmt"
	"os"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
