package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/minato-lab/innersearch/internal/core/domain"
	"github.com/minato-lab/innersearch/internal/core/ports/driven"
	"github.com/minato-lab/innersearch/internal/core/ports/driving"
	"github.com/minato-lab/innersearch/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexBuilder = (*IndexService)(nil)

// IndexService builds a retriever from the configured sources. The
// pipeline is connectors, normalisers, text filter, splitter, embedder,
// vector index. Build runs at most once; later calls return the first
// result.
type IndexService struct {
	connectors []driven.Connector
	registry   driven.NormaliserRegistry
	filter     driven.DocumentFilter
	splitter   driven.Splitter
	embedder   driven.EmbeddingService
	index      driven.VectorIndex

	once      sync.Once
	retriever driving.Retriever
	buildErr  error
	stats     driving.IndexStats
}

// NewIndexService creates an index service over the given pipeline parts.
func NewIndexService(
	connectors []driven.Connector,
	registry driven.NormaliserRegistry,
	filter driven.DocumentFilter,
	splitter driven.Splitter,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
) *IndexService {
	return &IndexService{
		connectors: connectors,
		registry:   registry,
		filter:     filter,
		splitter:   splitter,
		embedder:   embedder,
		index:      index,
	}
}

// Build ingests, normalises, chunks, embeds and indexes the corpus.
// The first embedding or index failure aborts the build; there is no
// partial index.
func (s *IndexService) Build(ctx context.Context) (driving.Retriever, error) {
	s.once.Do(func() {
		s.retriever, s.buildErr = s.build(ctx)
	})
	return s.retriever, s.buildErr
}

// Stats returns counters from the last successful build.
func (s *IndexService) Stats() driving.IndexStats {
	return s.stats
}

func (s *IndexService) build(ctx context.Context) (driving.Retriever, error) {
	// An aborted build must also release connector goroutines still
	// blocked on their document channels.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	docs, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range docs {
		docs[i] = s.filter.Filter(docs[i])
	}

	passages := s.splitter.Split(docs)
	logger.Info("indexer: %d documents, %d passages", len(docs), len(passages))

	if err := s.embedAndStore(ctx, passages); err != nil {
		return nil, err
	}

	sources := make(map[string]struct{})
	byID := make(map[string]domain.Passage, len(passages))
	for _, p := range passages {
		byID[p.ID] = p
		sources[p.Source()] = struct{}{}
	}

	s.stats = driving.IndexStats{
		Documents: len(docs),
		Passages:  len(passages),
		Sources:   len(sources),
	}

	return &retriever{
		embedder: s.embedder,
		index:    s.index,
		passages: byID,
	}, nil
}

// loadAll drains every connector and dispatches raw documents to the
// registered normaliser for their MIME type. Unrecognised MIME types are
// skipped silently; a recognised-but-corrupt document aborts the load.
func (s *IndexService) loadAll(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document

	for _, connector := range s.connectors {
		rawCh, errCh := connector.Load(ctx)

		for rawCh != nil || errCh != nil {
			select {
			case raw, ok := <-rawCh:
				if !ok {
					rawCh = nil
					continue
				}
				normaliser, found := s.registry.ForMIMEType(raw.MIMEType)
				if !found {
					logger.Debug("indexer: skipping %s (unrecognised type %s)", raw.URI, raw.MIMEType)
					continue
				}
				normalised, err := normaliser.Normalise(ctx, &raw)
				if err != nil {
					return nil, fmt.Errorf("%w: normalise %s: %w", domain.ErrLoad, raw.URI, err)
				}
				docs = append(docs, normalised...)
			case err, ok := <-errCh:
				if !ok {
					errCh = nil
					continue
				}
				if err != nil {
					return nil, fmt.Errorf("load from %s: %w", connector.Type(), err)
				}
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return docs, nil
}

func (s *IndexService) embedAndStore(ctx context.Context, passages []domain.Passage) error {
	if len(passages) == 0 {
		return nil
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: embed passages: %w", domain.ErrIndex, err)
	}
	if len(vectors) != len(passages) {
		return fmt.Errorf("%w: embedder returned %d vectors for %d passages",
			domain.ErrIndex, len(vectors), len(passages))
	}

	for i, p := range passages {
		if err := s.index.Add(ctx, p.ID, vectors[i]); err != nil {
			return fmt.Errorf("%w: store passage vector: %w", domain.ErrIndex, err)
		}
	}
	return nil
}

// Ensure retriever implements the interface.
var _ driving.Retriever = (*retriever)(nil)

// retriever is the lookup capability produced by a successful build.
type retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	passages map[string]domain.Passage
}

// Lookup embeds the query and returns at most k passages ranked by
// descending similarity.
func (r *retriever) Lookup(ctx context.Context, query string, k int) (domain.RetrievalResult, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrIndex, err)
	}

	hits, err := r.index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: search index: %w", domain.ErrIndex, err)
	}

	result := make(domain.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		passage, ok := r.passages[hit.PassageID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown passage id %s", domain.ErrIndex, hit.PassageID)
		}
		result = append(result, passage)
	}
	return result, nil
}
