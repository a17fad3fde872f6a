// Package memory provides an in-process vector index with exact cosine
// similarity search. The corpus for one session is small enough that a
// brute-force scan outperforms maintaining an approximate index.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/minato-lab/innersearch/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores unit-normalised vectors in insertion order.
type Index struct {
	mu      sync.RWMutex
	ids     []string
	vectors [][]float32
	dims    int
}

// New creates an empty index for vectors of the given dimension.
func New(dims int) *Index {
	return &Index{dims: dims}
}

// Add inserts a vector for the given passage ID. The vector is
// normalised on insert so search reduces to a dot product.
func (ix *Index) Add(_ context.Context, passageID string, embedding []float32) error {
	if len(embedding) != ix.dims {
		return fmt.Errorf("vector for %s has %d dimensions, index expects %d", passageID, len(embedding), ix.dims)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.ids = append(ix.ids, passageID)
	ix.vectors = append(ix.vectors, normalise(embedding))
	return nil
}

// Search returns the k nearest stored vectors ranked by descending
// cosine similarity. Ties are broken by insertion order, first wins.
func (ix *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != ix.dims {
		return nil, fmt.Errorf("query has %d dimensions, index expects %d", len(query), ix.dims)
	}
	if k <= 0 {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	q := normalise(query)
	hits := make([]driven.VectorHit, len(ix.ids))
	for i, vec := range ix.vectors {
		hits[i] = driven.VectorHit{
			PassageID:  ix.ids[i],
			Similarity: dot(q, vec),
		}
	}

	// SliceStable keeps insertion order among equal scores.
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Similarity > hits[b].Similarity
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Len returns the number of stored vectors.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ids)
}

// Close releases resources.
func (ix *Index) Close() error {
	return nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}
	inv := 1 / math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}
