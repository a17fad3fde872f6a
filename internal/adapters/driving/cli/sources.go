package cli

import (
	"github.com/spf13/cobra"
)

var sourcesWatch bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the documents the configured sources would load",
	RunE:  runSources,
}

func init() {
	sourcesCmd.Flags().BoolVarP(&sourcesWatch, "watch", "w", false,
		"after listing, print change events until interrupted")
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	app, err := buildApp(cmd.Context(), flagConfig)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	total := 0

	for _, connector := range app.connectors {
		rawCh, errCh := connector.Load(ctx)

		for rawCh != nil || errCh != nil {
			select {
			case raw, ok := <-rawCh:
				if !ok {
					rawCh = nil
					continue
				}
				cmd.Printf("%-12s %-28s %s\n", connector.Type(), raw.MIMEType, raw.URI)
				total++
			case err, ok := <-errCh:
				if !ok {
					errCh = nil
					continue
				}
				if err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	cmd.Printf("%d documents\n", total)

	if !sourcesWatch {
		return nil
	}
	return watchSources(cmd, app)
}

func watchSources(cmd *cobra.Command, app *app) error {
	ctx := cmd.Context()
	changes := make([]<-chan string, 0, len(app.connectors))

	for _, connector := range app.connectors {
		if !connector.Capabilities().SupportsWatch {
			continue
		}
		ch, err := connector.Watch(ctx)
		if err != nil {
			return err
		}
		changes = append(changes, ch)
	}
	if len(changes) == 0 {
		cmd.Println("no watchable sources configured")
		return nil
	}

	cmd.Println("watching for changes (Ctrl+C to stop)")
	merged := make(chan string)
	for _, ch := range changes {
		go func(ch <-chan string) {
			for path := range ch {
				select {
				case merged <- path:
				case <-ctx.Done():
					return
				}
			}
		}(ch)
	}

	for {
		select {
		case path := <-merged:
			cmd.Printf("changed: %s\n", path)
		case <-ctx.Done():
			return nil
		}
	}
}
