// Package plaintext normalises UTF-8 text files.
package plaintext

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/minato-lab/innersearch/internal/core/domain"
	"github.com/minato-lab/innersearch/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents. Input must be valid UTF-8;
// a decoding failure is a load error, not a silent skip.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain"}
}

// Normalise converts a text file to a single document.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return nil, fmt.Errorf("decode text: invalid UTF-8")
	}
	return []domain.Document{domain.NewDocument(string(raw.Content), raw.URI)}, nil
}
