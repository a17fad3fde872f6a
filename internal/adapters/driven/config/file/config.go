// Package file loads the application configuration from a TOML file.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Default values applied to fields the file leaves unset.
const (
	DefaultFileName      = "innersearch.toml"
	DefaultStaffFileName = "社員名簿.csv"
	DefaultChunkSize     = 1000
	DefaultChunkOverlap  = 100
	DefaultTopK          = 3
	DefaultHistoryPairs  = 10
	DefaultTurnLogPath   = "turnlog.db"
	DefaultProvider      = "openai"
)

// Config is the full typed application configuration.
type Config struct {
	// Documents configures the local document corpus.
	Documents DocumentsConfig `toml:"documents"`

	// Web configures remote page sources.
	Web WebConfig `toml:"web"`

	// Index configures chunking and retrieval.
	Index IndexConfig `toml:"index"`

	// Chat configures per-session conversation behaviour.
	Chat ChatConfig `toml:"chat"`

	// Embedding selects the embedding provider.
	Embedding ProviderConfig `toml:"embedding"`

	// Completion selects the completion provider.
	Completion ProviderConfig `toml:"completion"`

	// TurnLogPath is the SQLite file the turn log is written to.
	TurnLogPath string `toml:"turn_log_path"`
}

// DocumentsConfig configures the filesystem connector.
type DocumentsConfig struct {
	// Root is the directory scanned for documents.
	Root string `toml:"root"`

	// StaffFileName is the row-merged staff directory file name.
	StaffFileName string `toml:"staff_file_name"`

	// Watch enables change notifications for the document root.
	Watch bool `toml:"watch"`
}

// WebConfig configures the web connector.
type WebConfig struct {
	// URLs lists the pages fetched into the corpus.
	URLs []string `toml:"urls"`
}

// IndexConfig configures passage splitting and retrieval width.
type IndexConfig struct {
	// ChunkSize is the passage window size in runes.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the rune overlap between adjacent passages.
	ChunkOverlap int `toml:"chunk_overlap"`

	// TopK is the number of passages retrieved per query.
	TopK int `toml:"top_k"`
}

// ChatConfig configures conversation handling.
type ChatConfig struct {
	// HistoryPairs bounds the question/answer pairs fed to the model.
	HistoryPairs int `toml:"history_pairs"`
}

// ProviderConfig selects and parameterises a model provider.
type ProviderConfig struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`

	// Model overrides the provider's default model.
	Model string `toml:"model"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	// Dimensions overrides the embedding vector size. Required for
	// Ollama embedding models other than the default; ignored for
	// completion providers.
	Dimensions int `toml:"dimensions"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `toml:"api_key_env"`
}

// Load reads the configuration from path. An empty path falls back to
// DefaultFileName in the working directory; a missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFileName
	}

	cfg := &Config{}
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Documents.Root == "" {
		c.Documents.Root = "."
	}
	if c.Documents.StaffFileName == "" {
		c.Documents.StaffFileName = DefaultStaffFileName
	}
	if c.Index.ChunkSize <= 0 {
		c.Index.ChunkSize = DefaultChunkSize
	}
	if c.Index.ChunkOverlap <= 0 {
		c.Index.ChunkOverlap = DefaultChunkOverlap
	}
	if c.Index.TopK <= 0 {
		c.Index.TopK = DefaultTopK
	}
	if c.Chat.HistoryPairs <= 0 {
		c.Chat.HistoryPairs = DefaultHistoryPairs
	}
	if c.TurnLogPath == "" {
		c.TurnLogPath = DefaultTurnLogPath
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = DefaultProvider
	}
	if c.Completion.Provider == "" {
		c.Completion.Provider = DefaultProvider
	}
}

func (c *Config) validate() error {
	if c.Index.ChunkOverlap >= c.Index.ChunkSize {
		return fmt.Errorf("chunk_overlap %d must be smaller than chunk_size %d",
			c.Index.ChunkOverlap, c.Index.ChunkSize)
	}
	for _, p := range []ProviderConfig{c.Embedding, c.Completion} {
		if p.Provider != "openai" && p.Provider != "ollama" {
			return fmt.Errorf("unknown provider %q", p.Provider)
		}
		if p.Dimensions < 0 {
			return fmt.Errorf("dimensions %d must not be negative", p.Dimensions)
		}
	}
	return nil
}

// APIKey resolves the provider API key from the configured environment
// variable.
func (p ProviderConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}

// Resolve expands Documents.Root to an absolute path.
func (c *Config) Resolve() error {
	abs, err := filepath.Abs(c.Documents.Root)
	if err != nil {
		return fmt.Errorf("resolve document root: %w", err)
	}
	c.Documents.Root = abs
	return nil
}
