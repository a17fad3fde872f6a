package cli

import (
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay [session-id]",
	Short: "Replay the logged turns of a past session",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context(), flagConfig)
	if err != nil {
		return err
	}
	defer app.Close()

	entries, err := app.assistant.Replay(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		cmd.Println("no logged turns for this session")
		return nil
	}

	for _, entry := range entries {
		cmd.Printf("[%s] %s> %s\n", entry.CreatedAt.Local().Format("15:04:05"), entry.Mode, entry.Utterance)
		printResponse(cmd, entry.Payload)
		cmd.Println()
	}
	return nil
}
