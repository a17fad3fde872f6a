package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRanksByCosineSimilarity(t *testing.T) {
	idx := New(3)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "x", []float32{1, 0, 0}))
	require.NoError(t, idx.Add(ctx, "y", []float32{0, 1, 0}))
	require.NoError(t, idx.Add(ctx, "near-x", []float32{0.9, 0.1, 0}))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 3)

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "x", hits[0].PassageID)
	assert.Equal(t, "near-x", hits[1].PassageID)
	assert.Equal(t, "y", hits[2].PassageID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Greater(t, hits[1].Similarity, hits[2].Similarity)
}

func TestSearchTruncatesToK(t *testing.T) {
	idx := New(2)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, "b", []float32{0, 1}))
	require.NoError(t, idx.Add(ctx, "c", []float32{1, 1}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 2)

	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	idx := New(2)
	ctx := context.Background()

	// Identical vectors; the first inserted must win.
	require.NoError(t, idx.Add(ctx, "first", []float32{1, 1}))
	require.NoError(t, idx.Add(ctx, "second", []float32{1, 1}))
	require.NoError(t, idx.Add(ctx, "third", []float32{2, 2}))

	hits, err := idx.Search(ctx, []float32{1, 1}, 3)

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "first", hits[0].PassageID)
	assert.Equal(t, "second", hits[1].PassageID)
	assert.Equal(t, "third", hits[2].PassageID)
}

func TestAddRejectsDimensionMismatch(t *testing.T) {
	idx := New(4)
	err := idx.Add(context.Background(), "a", []float32{1, 2})
	assert.Error(t, err)
}

func TestLen(t *testing.T) {
	idx := New(2)
	ctx := context.Background()

	assert.Equal(t, 0, idx.Len())
	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, "b", []float32{0, 1}))
	assert.Equal(t, 2, idx.Len())
}

func TestSearchEmptyIndex(t *testing.T) {
	idx := New(2)
	hits, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
