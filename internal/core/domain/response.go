package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NoMatchAnswer is the sentinel answer value produced by the completion
// model when retrieval found nothing relevant. It signals a successful
// but empty outcome, never an error.
const NoMatchAnswer = "回答に必要な情報が見つかりませんでした。"

// NoHitMessage is the fixed search-mode response when no document matched.
const NoHitMessage = "入力内容と関連性が高い社内文書が見つかりませんでした。入力内容を変更してください。"

// FailureMessage is shown to the user when an external service fails
// mid-turn. The underlying cause is logged, never shown.
const FailureMessage = "申し訳ありません。回答の生成中に問題が発生しました。しばらくしてから再度お試しいただくか、管理者にお問い合わせください。"

// Icon is the presentation category for a citation. The core never
// formats markup; the UI collaborator maps the icon to a glyph.
type Icon string

const (
	// IconLink marks web sources.
	IconLink Icon = "link"

	// IconDocument marks file sources.
	IconDocument Icon = "document"
)

// IconFor selects the icon category for a source identifier.
func IconFor(source string) Icon {
	lower := strings.ToLower(source)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return IconLink
	}
	return IconDocument
}

// Citation is a deduplicated, display-formatted reference to a source
// document. Citations are deduplicated by Source identity alone, not by
// source+page; only the first occurrence's page survives.
type Citation struct {
	// Source is the file path or URL.
	Source string

	// Page is the zero-based page index, nil when absent.
	Page *int

	// Icon is the presentation category.
	Icon Icon
}

// Label renders the page-qualified display form. PDF sources with a page
// get a one-based page qualifier in full-width parentheses; everything
// else renders as the bare source identifier.
func (c Citation) Label() string {
	if c.Page != nil && strings.EqualFold(filepath.Ext(c.Source), ".pdf") {
		return fmt.Sprintf("%s（p.%d）", c.Source, *c.Page+1)
	}
	return c.Source
}

// Response is the mode-tagged render payload for one turn. The same
// structure is written to the durable turn log so a past turn can be
// replayed identically to a live one.
type Response interface {
	// ResponseMode returns the mode tag for the variant.
	ResponseMode() Mode
}

// SearchResponse carries candidate source locations for a query.
type SearchResponse struct {
	// NoHit indicates retrieval found no relevant document. When set,
	// Message carries NoHitMessage and the citation fields are empty.
	NoHit bool

	// Message is the fixed no-hit text, empty otherwise.
	Message string

	// Primary is the rank-0 best match.
	Primary *Citation

	// Secondary lists the remaining distinct sources in rank order.
	Secondary []Citation
}

// ResponseMode returns ModeSearch.
func (SearchResponse) ResponseMode() Mode { return ModeSearch }

// InquiryResponse carries a grounded answer with its source list.
type InquiryResponse struct {
	// Answer is the synthesised answer text, or NoMatchAnswer verbatim.
	Answer string

	// Sources lists the distinct cited sources in rank order. Empty when
	// the answer is the sentinel.
	Sources []Citation
}

// ResponseMode returns ModeInquiry.
func (InquiryResponse) ResponseMode() Mode { return ModeInquiry }
