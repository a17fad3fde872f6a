package cli

import (
	"context"
	"fmt"

	configfile "github.com/minato-lab/innersearch/internal/adapters/driven/config/file"
	embeddingollama "github.com/minato-lab/innersearch/internal/adapters/driven/embedding/ollama"
	embeddingopenai "github.com/minato-lab/innersearch/internal/adapters/driven/embedding/openai"
	llmollama "github.com/minato-lab/innersearch/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/minato-lab/innersearch/internal/adapters/driven/llm/openai"
	sessionmemory "github.com/minato-lab/innersearch/internal/adapters/driven/session/memory"
	"github.com/minato-lab/innersearch/internal/adapters/driven/storage/sqlite"
	vectormemory "github.com/minato-lab/innersearch/internal/adapters/driven/vector/memory"
	"github.com/minato-lab/innersearch/internal/connectors/filesystem"
	"github.com/minato-lab/innersearch/internal/connectors/web"
	"github.com/minato-lab/innersearch/internal/core/ports/driven"
	"github.com/minato-lab/innersearch/internal/core/ports/driving"
	"github.com/minato-lab/innersearch/internal/core/services"
	"github.com/minato-lab/innersearch/internal/logger"
	"github.com/minato-lab/innersearch/internal/normalisers"
	"github.com/minato-lab/innersearch/internal/normalisers/csvfile"
	"github.com/minato-lab/innersearch/internal/normalisers/docx"
	htmlnorm "github.com/minato-lab/innersearch/internal/normalisers/html"
	pdfnorm "github.com/minato-lab/innersearch/internal/normalisers/pdf"
	"github.com/minato-lab/innersearch/internal/normalisers/plaintext"
	"github.com/minato-lab/innersearch/internal/postprocessors/chunker"
	"github.com/minato-lab/innersearch/internal/postprocessors/textnorm"
)

// app is the assembled application graph.
type app struct {
	cfg        *configfile.Config
	assistant  driving.Assistant
	newBuilder services.BuilderFactory
	connectors []driven.Connector
	embedder   driven.EmbeddingService
	completion driven.CompletionService
	turnLog    driven.TurnLogStore
}

// buildApp assembles the application from the configuration file. Both
// model providers are pinged up front so an unreachable endpoint fails
// here with a clear message, not halfway through an index build.
func buildApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := configfile.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}
	completion, err := newCompletion(cfg.Completion)
	if err != nil {
		return nil, err
	}

	if err := embedder.Ping(ctx); err != nil {
		return nil, fmt.Errorf("embedding service unreachable: %w", err)
	}
	if err := completion.Ping(ctx); err != nil {
		return nil, fmt.Errorf("completion service unreachable: %w", err)
	}
	logger.Info("embedding model %s (%d dimensions), completion model %s",
		embedder.ModelName(), embedder.Dimensions(), completion.ModelName())

	connectors, err := newConnectors(cfg)
	if err != nil {
		return nil, err
	}

	registry := normalisers.NewRegistry()
	registry.Register(pdfnorm.New())
	registry.Register(docx.New())
	registry.Register(csvfile.New(csvfile.WithStaffFileName(cfg.Documents.StaffFileName)))
	registry.Register(plaintext.New())
	registry.Register(htmlnorm.New())

	filter := textnorm.New()
	splitter := chunker.New(
		chunker.WithChunkSize(cfg.Index.ChunkSize),
		chunker.WithOverlap(cfg.Index.ChunkOverlap),
	)

	newBuilder := func() driving.IndexBuilder {
		return services.NewIndexService(
			connectors, registry, filter, splitter,
			embedder, vectormemory.New(embedder.Dimensions()),
		)
	}

	turnLog, err := sqlite.NewTurnLogStore(cfg.TurnLogPath)
	if err != nil {
		return nil, err
	}

	assistant := services.NewAssistantService(
		sessionmemory.NewStore(),
		turnLog,
		newBuilder,
		services.NewQueryRewriter(completion),
		services.NewAnswerSynthesizer(completion),
		services.NewResponseShaper(),
		services.WithTopK(cfg.Index.TopK),
		services.WithHistoryPairs(cfg.Chat.HistoryPairs),
	)

	return &app{
		cfg:        cfg,
		assistant:  assistant,
		newBuilder: newBuilder,
		connectors: connectors,
		embedder:   embedder,
		completion: completion,
		turnLog:    turnLog,
	}, nil
}

// Close releases every held resource.
func (a *app) Close() {
	for _, c := range a.connectors {
		_ = c.Close()
	}
	_ = a.embedder.Close()
	_ = a.completion.Close()
	_ = a.turnLog.Close()
}

func newConnectors(cfg *configfile.Config) ([]driven.Connector, error) {
	fs, err := filesystem.New(cfg.Documents.Root)
	if err != nil {
		return nil, fmt.Errorf("open document root: %w", err)
	}

	connectors := []driven.Connector{fs}
	if len(cfg.Web.URLs) > 0 {
		connectors = append(connectors, web.New(cfg.Web.URLs))
	}
	return connectors, nil
}

func newEmbedder(cfg configfile.ProviderConfig) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case "ollama":
		return embeddingollama.New(embeddingollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil
	default:
		return embeddingopenai.New(embeddingopenai.Config{
			APIKey:  cfg.APIKey(),
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	}
}

func newCompletion(cfg configfile.ProviderConfig) (driven.CompletionService, error) {
	switch cfg.Provider {
	case "ollama":
		return llmollama.New(llmollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}), nil
	default:
		return llmopenai.New(llmopenai.Config{
			APIKey:  cfg.APIKey(),
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	}
}
