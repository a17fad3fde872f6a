package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minato-lab/innersearch/internal/core/domain"
)

func TestNormaliseValidUTF8(t *testing.T) {
	n := New()
	docs, err := n.Normalise(context.Background(), &domain.RawDocument{
		URI:      "/docs/notes.txt",
		MIMEType: "text/plain",
		Content:  []byte("社内規定のメモ\n第一条..."),
	})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "社内規定のメモ\n第一条...", docs[0].Content)
	assert.Equal(t, "/docs/notes.txt", docs[0].Source())
}

func TestNormaliseInvalidUTF8Fails(t *testing.T) {
	n := New()
	_, err := n.Normalise(context.Background(), &domain.RawDocument{
		URI:     "/docs/legacy.txt",
		Content: []byte{0x93, 0xfa, 0x96, 0x7b},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid UTF-8")
}
