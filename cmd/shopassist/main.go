// Command shopassist runs the shopping assistant: an HTTP/websocket API,
// an interactive terminal chat, and a one-shot catalog search.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "shopassist",
		Short:         "Conversational shopping assistant over a product catalog",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd(), newChatCmd(), newSearchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
