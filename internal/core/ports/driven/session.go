package driven

import (
	"context"

	"github.com/minato-lab/innersearch/internal/core/domain"
)

// SessionStore owns session identifiers and the two parallel histories:
// a model-facing history of flattened question/answer turns and a
// UI-facing history of render payloads. The core reads and appends;
// storage lifetime belongs to the store.
type SessionStore interface {
	// Create opens a new session with a fresh opaque identifier.
	Create(ctx context.Context) (*domain.Session, error)

	// AppendModelTurns appends flattened turns to the model-facing
	// history, oldest-first.
	AppendModelTurns(ctx context.Context, id string, turns ...domain.ConversationTurn) error

	// ModelHistory returns the model-facing history, oldest-first.
	ModelHistory(ctx context.Context, id string) ([]domain.ConversationTurn, error)

	// AppendRender appends a render payload to the UI-facing history.
	AppendRender(ctx context.Context, id string, payload domain.Response) error

	// RenderHistory returns the UI-facing history, oldest-first.
	RenderHistory(ctx context.Context, id string) ([]domain.Response, error)

	// Destroy removes the session and both histories.
	Destroy(ctx context.Context, id string) error
}

// TurnLogStore persists one durable log entry per turn, carrying the
// same mode-tagged structure the UI renders, so a past turn can be
// replayed identically to a live one.
type TurnLogStore interface {
	// Append writes a turn log entry.
	Append(ctx context.Context, entry domain.TurnLogEntry) error

	// List returns entries for a session in append order.
	List(ctx context.Context, sessionID string) ([]domain.TurnLogEntry, error)

	// Close releases resources.
	Close() error
}
