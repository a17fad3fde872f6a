package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minato-lab/innersearch/internal/adapters/driving/tui"
	"github.com/minato-lab/innersearch/internal/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Opens a session, indexes the configured sources and launches the
interactive chat interface.

Controls:
  Enter - Send
  Tab   - Toggle between search and inquiry mode
  Esc   - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	app, err := buildApp(cmd.Context(), flagConfig)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	session, err := app.assistant.OpenSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = app.assistant.CloseSession(ctx, session.ID) }()

	var notices <-chan string
	if app.cfg.Documents.Watch {
		notices, err = watchAndRefresh(ctx, app, session.ID)
		if err != nil {
			return err
		}
	}

	return tui.Run(ctx, app.assistant, session.ID, notices)
}

// watchAndRefresh subscribes to every watch-capable connector and
// rebuilds the session's retriever when a document changes. Each
// successful rebuild emits one notice for the chat transcript.
func watchAndRefresh(ctx context.Context, app *app, sessionID string) (<-chan string, error) {
	merged := make(chan string)
	watching := 0
	for _, connector := range app.connectors {
		if !connector.Capabilities().SupportsWatch {
			continue
		}
		changes, err := connector.Watch(ctx)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", connector.Type(), err)
		}
		watching++
		go func(changes <-chan string) {
			for path := range changes {
				select {
				case merged <- path:
				case <-ctx.Done():
					return
				}
			}
		}(changes)
	}
	if watching == 0 {
		return nil, nil
	}

	notices := make(chan string, 1)
	go func() {
		defer close(notices)
		for {
			select {
			case path := <-merged:
				drainChanges(merged)
				logger.Info("watch: %s changed, rebuilding index", path)
				if err := app.assistant.RefreshSession(ctx, sessionID); err != nil {
					continue
				}
				select {
				case notices <- "文書の変更を検知したため、インデックスを更新しました。":
				default:
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return notices, nil
}

// drainChanges coalesces a burst of change events into one rebuild.
func drainChanges(ch <-chan string) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
