package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "innersearch.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))

	require.NoError(t, err)
	assert.Equal(t, ".", cfg.Documents.Root)
	assert.Equal(t, DefaultStaffFileName, cfg.Documents.StaffFileName)
	assert.Equal(t, DefaultChunkSize, cfg.Index.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, cfg.Index.ChunkOverlap)
	assert.Equal(t, DefaultTopK, cfg.Index.TopK)
	assert.Equal(t, DefaultHistoryPairs, cfg.Chat.HistoryPairs)
	assert.Equal(t, DefaultTurnLogPath, cfg.TurnLogPath)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, "openai", cfg.Completion.Provider)
}

func TestLoadParsesFile(t *testing.T) {
	path := writeConfig(t, `
turn_log_path = "history.db"

[documents]
root = "/srv/docs"
staff_file_name = "members.csv"
watch = true

[web]
urls = ["https://intra.example.com/rules", "https://intra.example.com/faq"]

[index]
chunk_size = 500
chunk_overlap = 50
top_k = 5

[chat]
history_pairs = 4

[embedding]
provider = "ollama"
model = "mxbai-embed-large"
base_url = "http://localhost:11434"
dimensions = 1024

[completion]
provider = "openai"
model = "gpt-4o-mini"
api_key_env = "OPENAI_API_KEY"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "/srv/docs", cfg.Documents.Root)
	assert.Equal(t, "members.csv", cfg.Documents.StaffFileName)
	assert.True(t, cfg.Documents.Watch)
	assert.Equal(t, []string{"https://intra.example.com/rules", "https://intra.example.com/faq"}, cfg.Web.URLs)
	assert.Equal(t, 500, cfg.Index.ChunkSize)
	assert.Equal(t, 50, cfg.Index.ChunkOverlap)
	assert.Equal(t, 5, cfg.Index.TopK)
	assert.Equal(t, 4, cfg.Chat.HistoryPairs)
	assert.Equal(t, "ollama", cfg.Embedding.Provider)
	assert.Equal(t, "mxbai-embed-large", cfg.Embedding.Model)
	assert.Equal(t, 1024, cfg.Embedding.Dimensions)
	assert.Equal(t, "gpt-4o-mini", cfg.Completion.Model)
	assert.Equal(t, "history.db", cfg.TurnLogPath)
}

func TestLoadRejectsOverlapNotSmallerThanChunkSize(t *testing.T) {
	path := writeConfig(t, `
[index]
chunk_size = 100
chunk_overlap = 100
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk_overlap")
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	path := writeConfig(t, `
[embedding]
provider = "bedrock"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider")
}

func TestLoadRejectsNegativeDimensions(t *testing.T) {
	path := writeConfig(t, `
[embedding]
provider = "ollama"
dimensions = -1
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimensions")
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := writeConfig(t, "[documents\nroot = /x")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestAPIKeyResolvesFromEnvironment(t *testing.T) {
	t.Setenv("INNERSEARCH_TEST_KEY", "secret-value")

	p := ProviderConfig{APIKeyEnv: "INNERSEARCH_TEST_KEY"}
	assert.Equal(t, "secret-value", p.APIKey())

	assert.Empty(t, ProviderConfig{}.APIKey())
}
