package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dashd <command>",
	Short: "Real-time dashboard engine for local developer workflows",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(automationsCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
