// Package cli holds the docmanager command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docmanager",
	Short: "In-memory document repository with search",
	Long: `docmanager stores documents (title, content, author, creation time)
and serves save, lookup by id and filtered search over HTTP.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
