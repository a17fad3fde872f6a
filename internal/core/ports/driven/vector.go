package driven

import "context"

// VectorIndex persists passage vectors and supports similarity search.
type VectorIndex interface {
	// Add inserts a vector for the given passage ID.
	Add(ctx context.Context, passageID string, embedding []float32) error

	// Search finds the k nearest neighbours to the query vector, ranked
	// by descending similarity. Ties are broken by insertion order.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// PassageID is the matched passage.
	PassageID string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
