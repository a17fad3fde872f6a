package domain

import "time"

// TurnLogEntry is the durable record of one completed turn. Payload is
// the same mode-tagged structure handed to the UI, so replaying a logged
// turn renders identically to the live one.
type TurnLogEntry struct {
	// SessionID correlates the entry with its session.
	SessionID string

	// Mode is the mode the turn ran under.
	Mode Mode

	// Utterance is the user's original input.
	Utterance string

	// Query is the history-independent rewritten query used for retrieval.
	Query string

	// Payload is the render payload produced by the response shaper.
	Payload Response

	// CreatedAt is when the turn completed.
	CreatedAt time.Time
}
