package services

import (
	"context"
	"fmt"

	"github.com/minato-lab/innersearch/internal/core/domain"
	"github.com/minato-lab/innersearch/internal/core/ports/driven"
	"github.com/minato-lab/innersearch/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockCompletionService implements driven.CompletionService for testing.
type mockCompletionService struct {
	reply    string
	chatErr  error
	calls    int
	lastMsgs []driven.ChatMessage
}

func (m *mockCompletionService) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.calls++
	m.lastMsgs = messages
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.reply, nil
}

func (m *mockCompletionService) ModelName() string            { return "mock-llm" }
func (m *mockCompletionService) Ping(_ context.Context) error { return nil }
func (m *mockCompletionService) Close() error                 { return nil }

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Every text embeds to the same fixed vector.
type mockEmbeddingService struct {
	vector   []float32
	embedErr error
	batches  int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.batches++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.vector
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return len(m.vector) }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockVectorIndex implements driven.VectorIndex for testing. Hits are
// returned in insertion order.
type mockVectorIndex struct {
	ids       []string
	addErr    error
	searchErr error
}

func (m *mockVectorIndex) Add(_ context.Context, passageID string, _ []float32) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.ids = append(m.ids, passageID)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	hits := make([]driven.VectorHit, 0, k)
	for i, id := range m.ids {
		if i >= k {
			break
		}
		hits = append(hits, driven.VectorHit{PassageID: id, Similarity: 1 - float64(i)*0.1})
	}
	return hits, nil
}

func (m *mockVectorIndex) Len() int     { return len(m.ids) }
func (m *mockVectorIndex) Close() error { return nil }

// mockConnector implements driven.Connector for testing. A non-nil
// loadDone channel is closed when the load goroutine exits.
type mockConnector struct {
	docs     []domain.RawDocument
	loadErr  error
	loadDone chan struct{}
}

func (m *mockConnector) Type() string { return "mock" }

func (m *mockConnector) Load(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)
	go func() {
		defer close(docs)
		defer close(errs)
		if m.loadDone != nil {
			defer close(m.loadDone)
		}
		for _, d := range m.docs {
			select {
			case docs <- d:
			case <-ctx.Done():
				return
			}
		}
		if m.loadErr != nil {
			errs <- m.loadErr
		}
	}()
	return docs, errs
}

func (m *mockConnector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{}
}

func (m *mockConnector) Watch(_ context.Context) (<-chan string, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockConnector) Close() error { return nil }

// mockNormaliser implements driven.Normaliser: one document per raw
// input, content passed through.
type mockNormaliser struct {
	mimeTypes []string
	err       error
}

func (m *mockNormaliser) SupportedMIMETypes() []string { return m.mimeTypes }

func (m *mockNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Document{domain.NewDocument(string(raw.Content), raw.URI)}, nil
}

// mockRegistry implements driven.NormaliserRegistry.
type mockRegistry struct {
	byMIME map[string]driven.Normaliser
}

func newMockRegistry(ns ...driven.Normaliser) *mockRegistry {
	r := &mockRegistry{byMIME: make(map[string]driven.Normaliser)}
	for _, n := range ns {
		r.Register(n)
	}
	return r
}

func (r *mockRegistry) Register(n driven.Normaliser) {
	for _, mt := range n.SupportedMIMETypes() {
		r.byMIME[mt] = n
	}
}

func (r *mockRegistry) ForMIMEType(mimeType string) (driven.Normaliser, bool) {
	n, ok := r.byMIME[mimeType]
	return n, ok
}

// passthroughFilter implements driven.DocumentFilter without changes.
type passthroughFilter struct{}

func (passthroughFilter) Filter(doc domain.Document) domain.Document { return doc }

// lineSplitter implements driven.Splitter: one passage per document.
type lineSplitter struct{}

func (lineSplitter) Split(docs []domain.Document) []domain.Passage {
	passages := make([]domain.Passage, 0, len(docs))
	for i, d := range docs {
		passages = append(passages, domain.Passage{
			ID:       fmt.Sprintf("p%d", i),
			Content:  d.Content,
			Metadata: d.Metadata,
		})
	}
	return passages
}

// mockRetriever implements driving.Retriever for assistant tests.
type mockRetriever struct {
	result    domain.RetrievalResult
	lookupErr error
	lastQuery string
}

func (m *mockRetriever) Lookup(_ context.Context, query string, _ int) (domain.RetrievalResult, error) {
	m.lastQuery = query
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.result, nil
}

// mockBuilder implements driving.IndexBuilder for assistant tests.
type mockBuilder struct {
	retriever driving.Retriever
	buildErr  error
	builds    int
}

func (m *mockBuilder) Build(_ context.Context) (driving.Retriever, error) {
	m.builds++
	if m.buildErr != nil {
		return nil, m.buildErr
	}
	return m.retriever, nil
}

func (m *mockBuilder) Stats() driving.IndexStats { return driving.IndexStats{} }

// mockTurnLog implements driven.TurnLogStore in memory.
type mockTurnLog struct {
	entries   []domain.TurnLogEntry
	appendErr error
}

func (m *mockTurnLog) Append(_ context.Context, entry domain.TurnLogEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockTurnLog) List(_ context.Context, sessionID string) ([]domain.TurnLogEntry, error) {
	var out []domain.TurnLogEntry
	for _, e := range m.entries {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockTurnLog) Close() error { return nil }
