// Package main provides the bookmark_agent CLI: an HTTP server and offline commands
// for organizing browser bookmark exports with an LLM.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "bookmark_agent",
	Short:         "Bookmark Organizer",
	Long:          "Bookmark Organizer files browser bookmark exports into categories with short descriptions and re-exports them as an importable bookmark file.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a JSON or YAML config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
