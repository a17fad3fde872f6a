package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minato-lab/innersearch/internal/core/domain"
	"github.com/minato-lab/innersearch/internal/core/ports/driven"
)

func newIndexServiceWith(connector driven.Connector, index driven.VectorIndex, embedder driven.EmbeddingService) *IndexService {
	registry := newMockRegistry(&mockNormaliser{mimeTypes: []string{"text/plain"}})
	return NewIndexService(
		[]driven.Connector{connector}, registry, passthroughFilter{}, lineSplitter{}, embedder, index,
	)
}

func TestBuildIndexesEveryRecognisedDocument(t *testing.T) {
	connector := &mockConnector{docs: []domain.RawDocument{
		{URI: "/docs/a.txt", MIMEType: "text/plain", Content: []byte("alpha")},
		{URI: "/docs/b.txt", MIMEType: "text/plain", Content: []byte("beta")},
	}}
	index := &mockVectorIndex{}
	embedder := &mockEmbeddingService{vector: []float32{1, 0}}

	s := newIndexServiceWith(connector, index, embedder)
	retriever, err := s.Build(context.Background())

	require.NoError(t, err)
	require.NotNil(t, retriever)
	assert.Equal(t, 2, index.Len())
	assert.Equal(t, 1, embedder.batches)

	stats := s.Stats()
	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 2, stats.Passages)
	assert.Equal(t, 2, stats.Sources)
}

func TestBuildSkipsUnrecognisedMIMETypes(t *testing.T) {
	connector := &mockConnector{docs: []domain.RawDocument{
		{URI: "/docs/a.txt", MIMEType: "text/plain", Content: []byte("alpha")},
		{URI: "/docs/img.png", MIMEType: "image/png", Content: []byte{0x89}},
	}}
	index := &mockVectorIndex{}
	embedder := &mockEmbeddingService{vector: []float32{1, 0}}

	s := newIndexServiceWith(connector, index, embedder)
	_, err := s.Build(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, index.Len())
	assert.Equal(t, 1, s.Stats().Documents)
}

func TestBuildIsOncePerService(t *testing.T) {
	connector := &mockConnector{docs: []domain.RawDocument{
		{URI: "/docs/a.txt", MIMEType: "text/plain", Content: []byte("alpha")},
	}}
	index := &mockVectorIndex{}
	embedder := &mockEmbeddingService{vector: []float32{1, 0}}

	s := newIndexServiceWith(connector, index, embedder)

	first, err := s.Build(context.Background())
	require.NoError(t, err)

	second, err := s.Build(context.Background())
	require.NoError(t, err)

	assert.Same(t, first.(*retriever), second.(*retriever))
	assert.Equal(t, 1, index.Len())
	assert.Equal(t, 1, embedder.batches)
}

func TestBuildConnectorErrorAborts(t *testing.T) {
	connector := &mockConnector{
		docs:    []domain.RawDocument{{URI: "/docs/a.txt", MIMEType: "text/plain", Content: []byte("alpha")}},
		loadErr: errors.New("disk failure"),
	}
	index := &mockVectorIndex{}
	embedder := &mockEmbeddingService{vector: []float32{1, 0}}

	s := newIndexServiceWith(connector, index, embedder)
	_, err := s.Build(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk failure")
}

func TestBuildNormaliserErrorIsLoadError(t *testing.T) {
	connector := &mockConnector{docs: []domain.RawDocument{
		{URI: "/docs/bad.txt", MIMEType: "text/plain", Content: []byte("x")},
	}}
	registry := newMockRegistry(&mockNormaliser{
		mimeTypes: []string{"text/plain"},
		err:       errors.New("corrupt file"),
	})
	s := NewIndexService(
		[]driven.Connector{connector}, registry, passthroughFilter{}, lineSplitter{},
		&mockEmbeddingService{vector: []float32{1, 0}}, &mockVectorIndex{},
	)

	_, err := s.Build(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLoad))
	assert.Contains(t, err.Error(), "/docs/bad.txt")
}

func TestBuildAbortReleasesConnector(t *testing.T) {
	// The first document fails normalisation while the connector still
	// holds more, so the load goroutine is blocked mid-send when Build
	// returns. It must be released, not left behind.
	connector := &mockConnector{
		docs: []domain.RawDocument{
			{URI: "/docs/bad.txt", MIMEType: "text/plain", Content: []byte("x")},
			{URI: "/docs/more.txt", MIMEType: "text/plain", Content: []byte("y")},
		},
		loadDone: make(chan struct{}),
	}
	registry := newMockRegistry(&mockNormaliser{
		mimeTypes: []string{"text/plain"},
		err:       errors.New("corrupt file"),
	})
	s := NewIndexService(
		[]driven.Connector{connector}, registry, passthroughFilter{}, lineSplitter{},
		&mockEmbeddingService{vector: []float32{1, 0}}, &mockVectorIndex{},
	)

	_, err := s.Build(context.Background())
	require.Error(t, err)

	select {
	case <-connector.loadDone:
	case <-time.After(time.Second):
		t.Fatal("connector load goroutine still blocked after build returned")
	}
}

func TestBuildEmbeddingErrorIsIndexError(t *testing.T) {
	connector := &mockConnector{docs: []domain.RawDocument{
		{URI: "/docs/a.txt", MIMEType: "text/plain", Content: []byte("alpha")},
	}}
	embedder := &mockEmbeddingService{embedErr: errors.New("service down")}

	s := newIndexServiceWith(connector, &mockVectorIndex{}, embedder)
	_, err := s.Build(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIndex))
}

func TestRetrieverLookupReturnsRankedPassages(t *testing.T) {
	connector := &mockConnector{docs: []domain.RawDocument{
		{URI: "/docs/a.txt", MIMEType: "text/plain", Content: []byte("alpha")},
		{URI: "/docs/b.txt", MIMEType: "text/plain", Content: []byte("beta")},
		{URI: "/docs/c.txt", MIMEType: "text/plain", Content: []byte("gamma")},
	}}
	index := &mockVectorIndex{}
	embedder := &mockEmbeddingService{vector: []float32{1, 0}}

	s := newIndexServiceWith(connector, index, embedder)
	r, err := s.Build(context.Background())
	require.NoError(t, err)

	result, err := r.Lookup(context.Background(), "query", 2)

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "alpha", result[0].Content)
	assert.Equal(t, "/docs/a.txt", result[0].Source())
	assert.Equal(t, "beta", result[1].Content)
}

func TestRetrieverLookupSearchError(t *testing.T) {
	connector := &mockConnector{docs: []domain.RawDocument{
		{URI: "/docs/a.txt", MIMEType: "text/plain", Content: []byte("alpha")},
	}}
	index := &mockVectorIndex{}
	embedder := &mockEmbeddingService{vector: []float32{1, 0}}

	s := newIndexServiceWith(connector, index, embedder)
	r, err := s.Build(context.Background())
	require.NoError(t, err)

	index.searchErr = errors.New("backend gone")
	_, err = r.Lookup(context.Background(), "query", 3)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIndex))
}
