package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/minato-lab/innersearch/internal/core/domain"
	"github.com/minato-lab/innersearch/internal/core/ports/driven"
	"github.com/minato-lab/innersearch/internal/core/ports/driving"
	"github.com/minato-lab/innersearch/internal/logger"
)

// Ensure AssistantService implements the interface.
var _ driving.Assistant = (*AssistantService)(nil)

// Turn processing defaults.
const (
	DefaultTopK         = 3
	DefaultHistoryPairs = 10
)

// BuilderFactory creates a fresh index builder for a new session. Each
// session owns its own retriever; nothing is shared across sessions.
type BuilderFactory func() driving.IndexBuilder

// sessionRuntime is the per-session mutable state the registry owns.
// The mutex serialises turns: one turn runs to completion before the
// next is accepted.
type sessionRuntime struct {
	mu        sync.Mutex
	retriever driving.Retriever
}

// AssistantService orchestrates one chat turn: rewrite, retrieve,
// synthesise, shape, record.
type AssistantService struct {
	sessionStore driven.SessionStore
	turnLog      driven.TurnLogStore
	newBuilder   BuilderFactory
	rewriter     *QueryRewriter
	synthesizer  *AnswerSynthesizer
	shaper       *ResponseShaper

	topK         int
	historyPairs int

	mu       sync.RWMutex
	sessions map[string]*sessionRuntime
}

// AssistantOption configures the assistant service.
type AssistantOption func(*AssistantService)

// WithTopK sets the number of passages retrieved per query.
func WithTopK(k int) AssistantOption {
	return func(s *AssistantService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithHistoryPairs bounds the question/answer pairs fed to the model.
func WithHistoryPairs(pairs int) AssistantOption {
	return func(s *AssistantService) {
		if pairs > 0 {
			s.historyPairs = pairs
		}
	}
}

// NewAssistantService creates the assistant over its collaborators.
func NewAssistantService(
	sessionStore driven.SessionStore,
	turnLog driven.TurnLogStore,
	newBuilder BuilderFactory,
	rewriter *QueryRewriter,
	synthesizer *AnswerSynthesizer,
	shaper *ResponseShaper,
	opts ...AssistantOption,
) *AssistantService {
	s := &AssistantService{
		sessionStore: sessionStore,
		turnLog:      turnLog,
		newBuilder:   newBuilder,
		rewriter:     rewriter,
		synthesizer:  synthesizer,
		shaper:       shaper,
		topK:         DefaultTopK,
		historyPairs: DefaultHistoryPairs,
		sessions:     make(map[string]*sessionRuntime),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenSession creates a session and builds its retriever synchronously.
// A failed build destroys the session.
func (s *AssistantService) OpenSession(ctx context.Context) (*domain.Session, error) {
	session, err := s.sessionStore.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	builder := s.newBuilder()
	started := time.Now()
	retriever, err := builder.Build(ctx)
	if err != nil {
		_ = s.sessionStore.Destroy(ctx, session.ID)
		logger.Error("session %s: index build failed: %v", session.ID, err)
		return nil, fmt.Errorf("build index: %w", err)
	}

	stats := builder.Stats()
	logger.Info("session %s: indexed %d documents (%d passages, %d sources) in %s",
		session.ID, stats.Documents, stats.Passages, stats.Sources,
		time.Since(started).Round(time.Millisecond))

	s.mu.Lock()
	s.sessions[session.ID] = &sessionRuntime{retriever: retriever}
	s.mu.Unlock()

	return session, nil
}

// HandleTurn processes one user utterance and returns the render
// payload. On an external-service failure the error is logged with the
// session identifier and returned; callers present the generic failure
// message, never the cause.
func (s *AssistantService) HandleTurn(ctx context.Context, sessionID string, mode domain.Mode, utterance string) (domain.Response, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidInput, mode)
	}
	if utterance == "" {
		return nil, fmt.Errorf("%w: empty utterance", domain.ErrInvalidInput)
	}

	runtime, err := s.runtime(sessionID)
	if err != nil {
		return nil, err
	}

	// One in-flight turn per session.
	runtime.mu.Lock()
	defer runtime.mu.Unlock()

	payload, query, err := s.processTurn(ctx, runtime, sessionID, mode, utterance)
	if err != nil {
		logger.Error("session %s: turn failed: %v", sessionID, err)
		return nil, err
	}

	if err := s.record(ctx, sessionID, mode, utterance, query, payload); err != nil {
		logger.Error("session %s: record turn: %v", sessionID, err)
		return nil, err
	}
	return payload, nil
}

func (s *AssistantService) processTurn(
	ctx context.Context,
	runtime *sessionRuntime,
	sessionID string,
	mode domain.Mode,
	utterance string,
) (domain.Response, string, error) {
	history, err := s.sessionStore.ModelHistory(ctx, sessionID)
	if err != nil {
		return nil, "", fmt.Errorf("read history: %w", err)
	}
	history = tailWindow(history, s.historyPairs*2)

	query, err := s.rewriter.Rewrite(ctx, history, utterance)
	if err != nil {
		return nil, "", err
	}
	logger.Debug("session %s: query %q", sessionID, query)

	result, err := runtime.retriever.Lookup(ctx, query, s.topK)
	if err != nil {
		return nil, "", err
	}

	answer, err := s.synthesizer.Synthesise(ctx, query, history, result)
	if err != nil {
		return nil, "", err
	}

	return s.shaper.Shape(mode, answer, result), query, nil
}

// record appends the flattened turn to the model history, the payload to
// the render history, and one durable turn log entry. A turn log write
// failure is logged and swallowed: the turn already succeeded and both
// in-memory histories hold it.
func (s *AssistantService) record(ctx context.Context, sessionID string, mode domain.Mode, utterance, query string, payload domain.Response) error {
	err := s.sessionStore.AppendModelTurns(ctx, sessionID,
		domain.ConversationTurn{Role: domain.RoleUser, Content: utterance},
		domain.ConversationTurn{Role: domain.RoleAssistant, Content: modelAnswerText(payload)},
	)
	if err != nil {
		return fmt.Errorf("append model history: %w", err)
	}

	if err := s.sessionStore.AppendRender(ctx, sessionID, payload); err != nil {
		return fmt.Errorf("append render history: %w", err)
	}

	if s.turnLog != nil {
		entry := domain.TurnLogEntry{
			SessionID: sessionID,
			Mode:      mode,
			Utterance: utterance,
			Query:     query,
			Payload:   payload,
			CreatedAt: time.Now(),
		}
		if err := s.turnLog.Append(ctx, entry); err != nil {
			logger.Warn("session %s: append turn log: %v", sessionID, err)
		}
	}
	return nil
}

// RefreshSession rebuilds the session's retriever from the current
// sources and swaps it in. The build runs outside the turn mutex, so a
// turn in flight finishes against the old retriever. A failed build
// leaves the old retriever in place.
func (s *AssistantService) RefreshSession(ctx context.Context, sessionID string) error {
	runtime, err := s.runtime(sessionID)
	if err != nil {
		return err
	}

	builder := s.newBuilder()
	started := time.Now()
	retriever, err := builder.Build(ctx)
	if err != nil {
		logger.Error("session %s: index rebuild failed: %v", sessionID, err)
		return fmt.Errorf("rebuild index: %w", err)
	}

	stats := builder.Stats()
	logger.Info("session %s: reindexed %d documents (%d passages, %d sources) in %s",
		sessionID, stats.Documents, stats.Passages, stats.Sources,
		time.Since(started).Round(time.Millisecond))

	runtime.mu.Lock()
	runtime.retriever = retriever
	runtime.mu.Unlock()
	return nil
}

// Replay returns the logged payloads for a session in turn order.
func (s *AssistantService) Replay(ctx context.Context, sessionID string) ([]domain.TurnLogEntry, error) {
	if s.turnLog == nil {
		return nil, domain.ErrNotImplemented
	}
	entries, err := s.turnLog.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list turn log: %w", err)
	}
	return entries, nil
}

// CloseSession destroys the session, its histories and its retriever.
func (s *AssistantService) CloseSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if err := s.sessionStore.Destroy(ctx, sessionID); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

func (s *AssistantService) runtime(sessionID string) (*sessionRuntime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runtime, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", domain.ErrSessionClosed, sessionID)
	}
	return runtime, nil
}

// modelAnswerText flattens a render payload into the plain text stored
// in the model-facing history.
func modelAnswerText(payload domain.Response) string {
	switch p := payload.(type) {
	case domain.SearchResponse:
		if p.NoHit {
			return p.Message
		}
		text := p.Primary.Label()
		for _, c := range p.Secondary {
			text += "、" + c.Label()
		}
		return text
	case domain.InquiryResponse:
		return p.Answer
	default:
		return ""
	}
}

// tailWindow returns at most limit trailing turns.
func tailWindow(turns []domain.ConversationTurn, limit int) []domain.ConversationTurn {
	if limit <= 0 || len(turns) <= limit {
		return turns
	}
	return turns[len(turns)-limit:]
}
