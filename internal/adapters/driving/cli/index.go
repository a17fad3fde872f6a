package cli

import (
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the document index and report corpus statistics",
	Long: `Loads every configured source (document root and web URLs),
normalises and chunks the content, embeds each passage and reports what
would be indexed for a chat session.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	app, err := buildApp(cmd.Context(), flagConfig)
	if err != nil {
		return err
	}
	defer app.Close()

	builder := app.newBuilder()
	if _, err := builder.Build(cmd.Context()); err != nil {
		return err
	}

	stats := builder.Stats()
	cmd.Printf("indexed %d documents (%d passages from %d sources)\n",
		stats.Documents, stats.Passages, stats.Sources)
	return nil
}
