// Package cmd defines the CLI entry points.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "diario",
	Short: "diario - AI assistant for a training journal",
	Long: `diario serves a training journal assistant over HTTP: journal entries
are embedded and stored in PostgreSQL with pgvector, retrieval runs a
rewrite-embed-search-rerank pipeline, and chat completions answer in the
configured persona.

Run 'diario serve' to start the API server.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
