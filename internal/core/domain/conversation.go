package domain

import "time"

// Mode is the user-selected behaviour switch for a turn.
type Mode string

const (
	// ModeSearch locates candidate source documents for a query.
	ModeSearch Mode = "search"

	// ModeInquiry synthesises a grounded answer with citations.
	ModeInquiry Mode = "inquiry"
)

// Valid reports whether the mode is one of the known values.
func (m Mode) Valid() bool {
	return m == ModeSearch || m == ModeInquiry
}

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is a single utterance in the model-facing history.
// The model-facing history carries flattened question/answer text only;
// render payloads (citations, icons) are kept in a separate UI history
// because they are not valid input to the query rewriter or synthesiser.
type ConversationTurn struct {
	// Role is RoleUser or RoleAssistant.
	Role string

	// Content is the plain utterance text.
	Content string
}

// Session identifies one chat session. Each session owns its own
// histories and retriever; nothing is shared across sessions.
type Session struct {
	// ID is an opaque unique token created once per session.
	ID string

	// CreatedAt is when the session was opened.
	CreatedAt time.Time
}
