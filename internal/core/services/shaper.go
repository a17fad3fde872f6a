package services

import (
	"github.com/minato-lab/innersearch/internal/core/domain"
)

// ResponseShaper turns a synthesizer outcome into the mode-tagged render
// payload. The same payload is written to the turn log so a past turn
// replays identically to a live one.
type ResponseShaper struct{}

// NewResponseShaper creates a response shaper.
func NewResponseShaper() *ResponseShaper {
	return &ResponseShaper{}
}

// Shape builds the response for one turn. The no-match sentinel and an
// empty retrieval result are both successful empty outcomes.
func (s *ResponseShaper) Shape(mode domain.Mode, answer string, result domain.RetrievalResult) domain.Response {
	noMatch := len(result) == 0 || IsNoMatch(answer)

	switch mode {
	case domain.ModeSearch:
		if noMatch {
			return domain.SearchResponse{NoHit: true, Message: domain.NoHitMessage}
		}
		citations := dedupCitations(result)
		return domain.SearchResponse{
			Primary:   &citations[0],
			Secondary: citations[1:],
		}
	default:
		if noMatch {
			return domain.InquiryResponse{Answer: domain.NoMatchAnswer}
		}
		return domain.InquiryResponse{
			Answer:  answer,
			Sources: dedupCitations(result),
		}
	}
}

// dedupCitations keeps the first occurrence per distinct source in
// retrieval-rank order. Dedup is by source identity alone; a later
// passage from the same source with a different page is dropped.
func dedupCitations(result domain.RetrievalResult) []domain.Citation {
	seen := make(map[string]struct{}, len(result))
	citations := make([]domain.Citation, 0, len(result))

	for _, passage := range result {
		source := passage.Source()
		if _, dup := seen[source]; dup {
			continue
		}
		seen[source] = struct{}{}

		citation := domain.Citation{
			Source: source,
			Icon:   domain.IconFor(source),
		}
		if page, ok := passage.Page(); ok {
			p := page
			citation.Page = &p
		}
		citations = append(citations, citation)
	}
	return citations
}
