package domain

// Metadata keys shared across the ingestion pipeline.
const (
	// MetaSource is the originating file path or URL. Never empty for a
	// document that survives loading.
	MetaSource = "source"

	// MetaPage is the zero-based page index. Present only for paginated
	// formats (PDF).
	MetaPage = "page"

	// MetaKind tags synthetic documents, e.g. KindMergedCSV.
	MetaKind = "kind"
)

// KindMergedCSV marks the synthetic document produced by merging all rows
// of the staff directory CSV.
const KindMergedCSV = "merged_csv"

// Document is the uniform in-memory representation of loaded content.
// Documents are created once during indexing and never mutated after
// chunking.
type Document struct {
	// Content is the full text content.
	Content string

	// Metadata contains scalar values keyed by the Meta* constants.
	// MetaSource is always present.
	Metadata map[string]any
}

// NewDocument creates a document with the given content and source.
func NewDocument(content, source string) Document {
	return Document{
		Content:  content,
		Metadata: map[string]any{MetaSource: source},
	}
}

// Source returns the originating file path or URL.
func (d Document) Source() string {
	s, _ := d.Metadata[MetaSource].(string)
	return s
}

// Page returns the zero-based page index and whether one is present.
func (d Document) Page() (int, bool) {
	return pageFrom(d.Metadata)
}

// Kind returns the synthetic-document tag, if any.
func (d Document) Kind() string {
	k, _ := d.Metadata[MetaKind].(string)
	return k
}

// CloneMetadata returns a shallow copy of the document metadata.
func (d Document) CloneMetadata() map[string]any {
	dst := make(map[string]any, len(d.Metadata))
	for k, v := range d.Metadata {
		dst[k] = v
	}
	return dst
}

// Passage is a bounded, possibly overlapping slice of a Document produced
// by chunking. It is the unit of retrieval and is immutable once embedded.
type Passage struct {
	// ID is the unique identifier for the passage.
	ID string

	// Content is bounded to the configured chunk size.
	Content string

	// Metadata is inherited unmodified from the source Document.
	Metadata map[string]any
}

// Source returns the originating file path or URL.
func (p Passage) Source() string {
	s, _ := p.Metadata[MetaSource].(string)
	return s
}

// Page returns the zero-based page index and whether one is present.
func (p Passage) Page() (int, bool) {
	return pageFrom(p.Metadata)
}

// RetrievalResult is an ordered sequence of passages returned by a
// similarity lookup, ranked by descending similarity to the query.
// Index 0 is the authoritative best match.
type RetrievalResult []Passage

func pageFrom(meta map[string]any) (int, bool) {
	switch v := meta[MetaPage].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}
