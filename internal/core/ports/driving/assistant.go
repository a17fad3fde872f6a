package driving

import (
	"context"

	"github.com/minato-lab/innersearch/internal/core/domain"
)

// Assistant processes chat turns. One turn runs to completion before the
// next is accepted within a session; concurrent sessions are independent.
type Assistant interface {
	// OpenSession creates a session and builds its retriever. Indexing
	// runs synchronously; the session is not usable until it completes.
	OpenSession(ctx context.Context) (*domain.Session, error)

	// HandleTurn runs rewrite, retrieve, synthesise and shape for one
	// user utterance and returns the render payload. External-service
	// failures return an error; callers present domain.FailureMessage.
	HandleTurn(ctx context.Context, sessionID string, mode domain.Mode, utterance string) (domain.Response, error)

	// RefreshSession rebuilds the session's retriever from the current
	// sources. Turns accepted after it returns see the new index; a
	// turn in flight finishes against the old one.
	RefreshSession(ctx context.Context, sessionID string) error

	// Replay returns the logged payloads for a session in turn order.
	Replay(ctx context.Context, sessionID string) ([]domain.TurnLogEntry, error)

	// CloseSession destroys the session and its histories.
	CloseSession(ctx context.Context, sessionID string) error
}
