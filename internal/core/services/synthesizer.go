package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/minato-lab/innersearch/internal/core/domain"
	"github.com/minato-lab/innersearch/internal/core/ports/driven"
)

const answerSystemPrompt = `あなたは社内文書に基づいて質問に回答するアシスタントです。` +
	`以下の参考文書の内容だけを根拠に、日本語で簡潔に回答してください。` +
	`参考文書に回答の根拠がない場合は、次の定型文をそのまま出力してください：` +
	`「` + domain.NoMatchAnswer + `」`

// AnswerSynthesizer produces answer text from retrieved passages. It
// runs in both modes: inquiry mode keeps the answer, search mode uses it
// only to detect the no-match sentinel.
type AnswerSynthesizer struct {
	completion driven.CompletionService
}

// NewAnswerSynthesizer creates a synthesizer over the completion service.
func NewAnswerSynthesizer(completion driven.CompletionService) *AnswerSynthesizer {
	return &AnswerSynthesizer{completion: completion}
}

// Synthesise produces an answer for the rewritten query grounded in the
// retrieved passages. An empty retrieval result yields the sentinel
// without a model call.
func (s *AnswerSynthesizer) Synthesise(
	ctx context.Context,
	query string,
	history []domain.ConversationTurn,
	result domain.RetrievalResult,
) (string, error) {
	if len(result) == 0 {
		return domain.NoMatchAnswer, nil
	}

	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{
		Role:    "system",
		Content: answerSystemPrompt + "\n\n" + formatContext(result),
	})
	for _, turn := range history {
		messages = append(messages, driven.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: domain.RoleUser, Content: query})

	answer, err := s.completion.Chat(ctx, messages, driven.ChatOptions{Temperature: 0})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSynthesis, err)
	}
	return strings.TrimSpace(answer), nil
}

// IsNoMatch reports whether the answer is the no-match sentinel. The
// model sometimes wraps the sentinel in quotation marks; those are
// stripped before comparison.
func IsNoMatch(answer string) bool {
	trimmed := strings.Trim(strings.TrimSpace(answer), "「」\"")
	return trimmed == strings.Trim(domain.NoMatchAnswer, "「」\"")
}

func formatContext(result domain.RetrievalResult) string {
	var b strings.Builder
	b.WriteString("参考文書:\n")
	for i, passage := range result {
		fmt.Fprintf(&b, "[%d] 出典: %s\n%s\n\n", i+1, passage.Source(), passage.Content)
	}
	return b.String()
}
