package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minato-lab/innersearch/internal/core/domain"
)

var askMode string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the response",
	Long: `Opens a one-shot session, indexes the configured sources, runs a
single turn in the selected mode and prints the result.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askMode, "mode", "m", string(domain.ModeInquiry),
		"turn mode: search or inquiry")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	mode := domain.Mode(askMode)
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", askMode)
	}

	app, err := buildApp(cmd.Context(), flagConfig)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	session, err := app.assistant.OpenSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = app.assistant.CloseSession(ctx, session.ID) }()

	payload, err := app.assistant.HandleTurn(ctx, session.ID, mode, args[0])
	if err != nil {
		cmd.PrintErrln(domain.FailureMessage)
		return err
	}

	printResponse(cmd, payload)
	return nil
}

func printResponse(cmd *cobra.Command, payload domain.Response) {
	switch p := payload.(type) {
	case domain.SearchResponse:
		if p.NoHit {
			cmd.Println(p.Message)
			return
		}
		cmd.Printf("%s %s\n", iconMark(p.Primary.Icon), p.Primary.Label())
		for _, c := range p.Secondary {
			cmd.Printf("  %s %s\n", iconMark(c.Icon), c.Label())
		}
	case domain.InquiryResponse:
		cmd.Println(p.Answer)
		for _, c := range p.Sources {
			cmd.Printf("  %s %s\n", iconMark(c.Icon), c.Label())
		}
	}
}

func iconMark(icon domain.Icon) string {
	if icon == domain.IconLink {
		return "[link]"
	}
	return "[doc]"
}
