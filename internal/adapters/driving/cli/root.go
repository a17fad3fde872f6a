// Package cli provides the command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/minato-lab/innersearch/internal/logger"
)

var (
	version = "dev"

	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "innersearch",
	Short: "Retrieval-augmented assistant over internal documents",
	Long: `innersearch answers questions over a corpus of internal documents
(PDF, Word, CSV, plain text) and configured web pages.

Two modes are available per turn: document search returns candidate
source locations for a query; inquiry synthesises a grounded answer
with citations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to the configuration file")
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
