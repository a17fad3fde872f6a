package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minato-lab/innersearch/internal/core/domain"
)

type stubNormaliser struct {
	mimeTypes []string
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.mimeTypes }

func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	return []domain.Document{domain.NewDocument(string(raw.Content), raw.URI)}, nil
}

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry()
	text := &stubNormaliser{mimeTypes: []string{"text/plain"}}
	web := &stubNormaliser{mimeTypes: []string{"text/html", "application/xhtml+xml"}}

	r.Register(text)
	r.Register(web)

	got, ok := r.ForMIMEType("text/plain")
	require.True(t, ok)
	assert.Same(t, text, got)

	got, ok = r.ForMIMEType("application/xhtml+xml")
	require.True(t, ok)
	assert.Same(t, web, got)
}

func TestRegistryUnknownTypeMisses(t *testing.T) {
	r := NewRegistry()
	_, ok := r.ForMIMEType("application/octet-stream")
	assert.False(t, ok)
}

func TestRegistryLaterRegistrationWins(t *testing.T) {
	r := NewRegistry()
	first := &stubNormaliser{mimeTypes: []string{"text/plain"}}
	second := &stubNormaliser{mimeTypes: []string{"text/plain"}}

	r.Register(first)
	r.Register(second)

	got, ok := r.ForMIMEType("text/plain")
	require.True(t, ok)
	assert.Same(t, second, got)
}
