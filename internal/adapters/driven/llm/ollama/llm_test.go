package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minato-lab/innersearch/internal/core/ports/driven"
)

func TestChatSendsMessagesAndOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		require.NotNil(t, req.Options)
		assert.Equal(t, 128, req.Options.NumPredict)

		_, _ = w.Write([]byte(`{"message": {"role": "assistant", "content": "回答です"}}`))
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL})
	reply, err := s.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "instructions"},
		{Role: "user", Content: "質問"},
	}, driven.ChatOptions{MaxTokens: 128})

	require.NoError(t, err)
	assert.Equal(t, "回答です", reply)
}

func TestChatNon200Fails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model not found"))
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL})
	_, err := s.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "q"}}, driven.ChatOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models": []}`))
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL})
	assert.NoError(t, s.Ping(context.Background()))
}
