// Package textnorm repairs platform-specific text encoding artifacts
// before indexing. Content is canonicalised to NFKC, which folds
// full-width/half-width variants, and runes that cannot round-trip
// through the deployment target encoding (CP932) are dropped, not
// substituted. The transform is pure and idempotent.
package textnorm

import (
	"strings"
	"sync"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/unicode/norm"

	"github.com/minato-lab/innersearch/internal/core/domain"
	"github.com/minato-lab/innersearch/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.DocumentFilter = (*Normaliser)(nil)

// Normaliser applies the text repair to document content and every
// textual metadata value.
type Normaliser struct{}

// New creates a new text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Filter returns the document with repaired content and metadata.
// Non-textual metadata values pass through untouched.
func (n *Normaliser) Filter(doc domain.Document) domain.Document {
	out := doc
	out.Content = Clean(doc.Content)
	meta := doc.CloneMetadata()
	for k, v := range meta {
		if s, ok := v.(string); ok {
			meta[k] = Clean(s)
		}
	}
	out.Metadata = meta
	return out
}

// Clean canonicalises s to NFKC and removes runes the target encoding
// cannot represent. Applied repeatedly until stable so that dropping a
// rune can never expose a new composition on a later pass.
func Clean(s string) string {
	for i := 0; i < 4; i++ {
		next := cleanOnce(s)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

func cleanOnce(s string) string {
	s = norm.NFKC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if encodable(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// encCache memoises per-rune encodability; the CP932 check allocates an
// encoder per probe otherwise.
var encCache sync.Map

func encodable(r rune) bool {
	if r < 0x80 {
		return r != 0
	}
	if v, ok := encCache.Load(r); ok {
		return v.(bool)
	}
	_, err := japanese.ShiftJIS.NewEncoder().String(string(r))
	ok := err == nil
	encCache.Store(r, ok)
	return ok
}
