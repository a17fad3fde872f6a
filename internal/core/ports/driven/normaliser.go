package driven

import (
	"context"

	"github.com/minato-lab/innersearch/internal/core/domain"
)

// Normaliser transforms raw documents into the uniform document model.
// Each normaliser handles specific MIME types; paginated and row-based
// formats may produce more than one document per input.
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Normalise transforms a raw document into one or more documents.
	// A recognised-but-corrupt input must fail, never degrade silently.
	Normalise(ctx context.Context, raw *domain.RawDocument) ([]domain.Document, error)
}

// NormaliserRegistry selects a normaliser for a MIME type.
type NormaliserRegistry interface {
	// Register adds a normaliser for its supported MIME types.
	Register(n Normaliser)

	// ForMIMEType returns the normaliser for the given MIME type, or
	// false when the type is unrecognised (callers skip silently).
	ForMIMEType(mimeType string) (Normaliser, bool)
}

// DocumentFilter rewrites a document in place of itself. The text
// normaliser implements this with a pure, idempotent transform.
type DocumentFilter interface {
	// Filter returns the transformed document.
	Filter(doc domain.Document) domain.Document
}

// Splitter produces retrieval passages from documents.
type Splitter interface {
	// Split chunks the documents into bounded, overlapping passages.
	Split(docs []domain.Document) []domain.Passage
}
