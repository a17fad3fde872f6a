// Package chunker splits normalised documents into overlapping
// fixed-size passages so retrieval granularity does not depend on
// original document length.
package chunker

import (
	"github.com/google/uuid"

	"github.com/minato-lab/innersearch/internal/core/domain"
	"github.com/minato-lab/innersearch/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per passage.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 100

// Ensure Splitter implements the interface.
var _ driven.Splitter = (*Splitter)(nil)

// Splitter produces passages with a fixed character budget and a fixed
// character overlap to the preceding passage from the same document.
// Cuts prefer line-break boundaries; a single line longer than the chunk
// size is cut hard. Sizes are measured in runes, not bytes.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the passage size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between passages in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Invariant: 0 <= overlap < chunkSize.
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Split chunks the documents in order. Every passage inherits its source
// document's full metadata unmodified, so a passage from page 3 of file X
// still carries source=X, page=3.
func (s *Splitter) Split(docs []domain.Document) []domain.Passage {
	var passages []domain.Passage
	for i := range docs {
		passages = append(passages, s.splitOne(docs[i])...)
	}
	return passages
}

// splitOne windows over the document content. Consecutive windows always
// advance by (cut - overlap), so trimming the first overlap runes of each
// later passage and concatenating reconstructs the content exactly.
func (s *Splitter) splitOne(doc domain.Document) []domain.Passage {
	runes := []rune(doc.Content)
	if len(runes) == 0 {
		return nil
	}

	estimated := len(runes)/(s.chunkSize-s.overlap) + 1
	passages := make([]domain.Passage, 0, estimated)

	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else if cut := lastNewline(runes, start+s.overlap+1, end); cut > 0 {
			end = cut
		}

		passages = append(passages, domain.Passage{
			ID:       uuid.New().String(),
			Content:  string(runes[start:end]),
			Metadata: doc.Metadata,
		})

		if end == len(runes) {
			break
		}
		start = end - s.overlap
	}

	return passages
}

// lastNewline returns the index just past the last '\n' in runes[lo:hi],
// or 0 when none is present. lo keeps the cut far enough forward that the
// next window still makes progress.
func lastNewline(runes []rune, lo, hi int) int {
	if lo < 1 {
		lo = 1
	}
	for i := hi - 1; i >= lo; i-- {
		if runes[i-1] == '\n' {
			return i
		}
	}
	return 0
}
