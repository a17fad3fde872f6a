package driven

import "context"

// CompletionService provides language-model completions for query
// rewriting and grounded answer synthesis.
//
// Implementations may include:
//   - OpenAI (gpt-4o, gpt-4o-mini)
//   - Ollama (local models)
type CompletionService interface {
	// Chat conducts a multi-turn conversation and returns the assistant
	// text. Messages are presented oldest-first.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures completion behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
