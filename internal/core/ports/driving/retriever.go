package driving

import (
	"context"

	"github.com/minato-lab/innersearch/internal/core/domain"
)

// Retriever is the top-K nearest-passage lookup capability produced by
// the index builder. It exists only after a successful build.
type Retriever interface {
	// Lookup embeds the query and returns at most k passages ranked by
	// descending embedding similarity.
	Lookup(ctx context.Context, query string, k int) (domain.RetrievalResult, error)
}

// IndexBuilder builds the session retriever from the configured sources.
// Building is a one-time, idempotent-per-session operation: the first
// call does the work, subsequent calls return the existing retriever.
type IndexBuilder interface {
	// Build ingests, normalises, chunks, embeds and indexes the corpus.
	Build(ctx context.Context) (Retriever, error)

	// Stats returns counters from the last successful build.
	Stats() IndexStats
}

// IndexStats summarises a completed build.
type IndexStats struct {
	// Documents is the number of loaded documents after normalisation.
	Documents int

	// Passages is the number of indexed passages.
	Passages int

	// Sources is the number of distinct source identifiers.
	Sources int
}
