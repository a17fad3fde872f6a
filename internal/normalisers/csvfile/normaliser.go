// Package csvfile normalises CSV files into one document per row. The
// reserved staff directory file is special-cased: all rows merge into a
// single synthetic document so a retrieval hit returns the directory as
// one unit instead of scattering rows across ranks.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/minato-lab/innersearch/internal/core/domain"
	"github.com/minato-lab/innersearch/internal/core/ports/driven"
)

// DefaultStaffFileName is the reserved staff directory file name.
const DefaultStaffFileName = "社員名簿.csv"

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles CSV documents.
type Normaliser struct {
	staffFileName string
}

// Option configures the normaliser.
type Option func(*Normaliser)

// WithStaffFileName overrides the reserved staff directory file name.
func WithStaffFileName(name string) Option {
	return func(n *Normaliser) {
		if name != "" {
			n.staffFileName = name
		}
	}
}

// New creates a new CSV normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{staffFileName: DefaultStaffFileName}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/csv"}
}

// Normalise converts CSV rows to documents. Exported spreadsheets from
// Japanese environments are frequently CP932, so non-UTF-8 input is
// transcoded before parsing. A malformed CSV fails the call.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	data := raw.Content
	if !utf8.Valid(data) {
		decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder()))
		if err != nil {
			return nil, fmt.Errorf("transcode csv: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := records[1:]

	if filepath.Base(raw.URI) == n.staffFileName {
		return n.mergeRows(raw.URI, header, rows), nil
	}

	docs := make([]domain.Document, 0, len(rows))
	for i, row := range rows {
		doc := domain.NewDocument(formatRow(header, row), raw.URI)
		doc.Metadata["row"] = i
		docs = append(docs, doc)
	}
	return docs, nil
}

// mergeRows produces exactly one synthetic document with one formatted
// line per row, tagged kind=merged_csv.
func (n *Normaliser) mergeRows(uri string, header []string, rows [][]string) []domain.Document {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, formatRow(header, row))
	}

	doc := domain.NewDocument(strings.Join(lines, "\n"), uri)
	doc.Metadata[domain.MetaKind] = domain.KindMergedCSV
	return []domain.Document{doc}
}

// formatRow renders "header: value" pairs joined by a separator, e.g.
// "部署: 総務部 | 氏名: 山田太郎 | 役職: 部長 | メール: yamada@example.co.jp".
func formatRow(header, row []string) string {
	pairs := make([]string, 0, len(row))
	for i, field := range row {
		if i < len(header) && header[i] != "" {
			pairs = append(pairs, header[i]+": "+field)
		} else {
			pairs = append(pairs, field)
		}
	}
	return strings.Join(pairs, " | ")
}
