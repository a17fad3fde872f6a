package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/minato-lab/innersearch/internal/core/domain"
	"github.com/minato-lab/innersearch/internal/core/ports/driven"
)

const rewriteSystemPrompt = `あなたは検索クエリの書き換えアシスタントです。` +
	`これまでの会話履歴を踏まえて、最後のユーザー発話を、履歴なしでも意味が通る` +
	`独立した検索クエリに書き換えてください。指示語や省略された語は履歴の内容で` +
	`補ってください。書き換えたクエリのみを出力し、説明は付けないでください。`

// QueryRewriter folds conversation history into a new utterance to
// produce a history-independent retrieval query.
type QueryRewriter struct {
	completion driven.CompletionService
}

// NewQueryRewriter creates a query rewriter over the completion service.
func NewQueryRewriter(completion driven.CompletionService) *QueryRewriter {
	return &QueryRewriter{completion: completion}
}

// Rewrite returns a context-free reformulation of utterance. History is
// presented oldest-first. An empty history is the identity: the
// utterance is returned unchanged without a model call.
func (r *QueryRewriter) Rewrite(ctx context.Context, history []domain.ConversationTurn, utterance string) (string, error) {
	if len(history) == 0 {
		return utterance, nil
	}

	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{Role: "system", Content: rewriteSystemPrompt})
	for _, turn := range history {
		messages = append(messages, driven.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: domain.RoleUser, Content: utterance})

	rewritten, err := r.completion.Chat(ctx, messages, driven.ChatOptions{Temperature: 0})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRewrite, err)
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		// A blank rewrite would retrieve nothing; fall back to the input.
		return utterance, nil
	}
	return rewritten, nil
}
