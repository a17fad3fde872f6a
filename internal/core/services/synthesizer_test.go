package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minato-lab/innersearch/internal/core/domain"
)

func TestSynthesiseEmptyResultReturnsSentinelWithoutCall(t *testing.T) {
	llm := &mockCompletionService{reply: "should not be used"}
	s := NewAnswerSynthesizer(llm)

	answer, err := s.Synthesise(context.Background(), "query", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.NoMatchAnswer, answer)
	assert.Zero(t, llm.calls)
}

func TestSynthesiseGroundsAnswerInPassages(t *testing.T) {
	llm := &mockCompletionService{reply: "勤務時間は9時から18時です。"}
	s := NewAnswerSynthesizer(llm)

	result := domain.RetrievalResult{
		passage("p1", "rules.pdf", 0),
		passage("p2", "faq.txt"),
	}
	history := []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "就業規則について"},
		{Role: domain.RoleAssistant, Content: "何を知りたいですか"},
	}

	answer, err := s.Synthesise(context.Background(), "勤務時間は何時から何時まで", history, result)

	require.NoError(t, err)
	assert.Equal(t, "勤務時間は9時から18時です。", answer)
	require.Equal(t, 1, llm.calls)

	// System message carries the passage context; history follows
	// oldest-first with the rewritten query last.
	require.Len(t, llm.lastMsgs, 4)
	assert.Equal(t, "system", llm.lastMsgs[0].Role)
	assert.Contains(t, llm.lastMsgs[0].Content, "content of p1")
	assert.Contains(t, llm.lastMsgs[0].Content, "rules.pdf")
	assert.Contains(t, llm.lastMsgs[0].Content, "content of p2")
	assert.Equal(t, "勤務時間は何時から何時まで", llm.lastMsgs[3].Content)
}

func TestSynthesiseCompletionFailure(t *testing.T) {
	llm := &mockCompletionService{chatErr: errors.New("timeout")}
	s := NewAnswerSynthesizer(llm)

	_, err := s.Synthesise(context.Background(), "q", nil, domain.RetrievalResult{passage("p1", "a.txt")})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSynthesis))
}

func TestIsNoMatch(t *testing.T) {
	assert.True(t, IsNoMatch(domain.NoMatchAnswer))
	assert.True(t, IsNoMatch("「"+domain.NoMatchAnswer+"」"))
	assert.True(t, IsNoMatch("  "+domain.NoMatchAnswer+"\n"))
	assert.False(t, IsNoMatch("勤務時間は9時からです。"))
	assert.False(t, IsNoMatch(""))
}
