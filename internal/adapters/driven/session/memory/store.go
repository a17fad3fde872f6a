// Package memory provides an in-memory session store. Histories live for
// the process lifetime; nothing is persisted here (the durable turn log
// is a separate store).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/minato-lab/innersearch/internal/core/domain"
	"github.com/minato-lab/innersearch/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SessionStore = (*Store)(nil)

type sessionState struct {
	modelHistory  []domain.ConversationTurn
	renderHistory []domain.Response
}

// Store keeps sessions and their two parallel histories in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*sessionState)}
}

// Create opens a new session with a fresh opaque identifier.
func (s *Store) Create(_ context.Context) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := domain.Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
	}
	s.sessions[session.ID] = &sessionState{}
	return &session, nil
}

// AppendModelTurns appends flattened turns to the model-facing history.
func (s *Store) AppendModelTurns(_ context.Context, id string, turns ...domain.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	state.modelHistory = append(state.modelHistory, turns...)
	return nil
}

// ModelHistory returns a copy of the model-facing history, oldest-first.
func (s *Store) ModelHistory(_ context.Context, id string) ([]domain.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.ConversationTurn, len(state.modelHistory))
	copy(out, state.modelHistory)
	return out, nil
}

// AppendRender appends a render payload to the UI-facing history.
func (s *Store) AppendRender(_ context.Context, id string, payload domain.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	state.renderHistory = append(state.renderHistory, payload)
	return nil
}

// RenderHistory returns a copy of the UI-facing history, oldest-first.
func (s *Store) RenderHistory(_ context.Context, id string) ([]domain.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.Response, len(state.renderHistory))
	copy(out, state.renderHistory)
	return out, nil
}

// Destroy removes the session and both histories.
func (s *Store) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
