// Package sqlite persists the turn log in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/minato-lab/innersearch/internal/core/domain"
	"github.com/minato-lab/innersearch/internal/core/ports/driven"
)

// Ensure TurnLogStore implements the interface.
var _ driven.TurnLogStore = (*TurnLogStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS turn_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	mode        TEXT NOT NULL,
	utterance   TEXT NOT NULL,
	query       TEXT NOT NULL,
	payload     TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_turn_log_session ON turn_log(session_id, id);
`

// TurnLogStore records every answered turn durably.
type TurnLogStore struct {
	db *sql.DB
}

// NewTurnLogStore opens (or creates) the database at path and applies the
// schema.
func NewTurnLogStore(path string) (*TurnLogStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open turn log database: %w", err)
	}

	// Single writer; avoids SQLITE_BUSY under concurrent sessions.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply turn log schema: %w", err)
	}
	return &TurnLogStore{db: db}, nil
}

// payloadEnvelope tags the response payload with its mode so List can
// decode it back into the right concrete type.
type payloadEnvelope struct {
	Mode    domain.Mode     `json:"mode"`
	Payload json.RawMessage `json:"payload"`
}

// Append writes one turn log entry.
func (s *TurnLogStore) Append(ctx context.Context, entry domain.TurnLogEntry) error {
	raw, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("encode turn payload: %w", err)
	}
	envelope, err := json.Marshal(payloadEnvelope{Mode: entry.Mode, Payload: raw})
	if err != nil {
		return fmt.Errorf("encode turn envelope: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO turn_log (session_id, mode, utterance, query, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.SessionID, string(entry.Mode), entry.Utterance, entry.Query,
		string(envelope), entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert turn log entry: %w", err)
	}
	return nil
}

// List returns the logged turns for a session in insertion order.
func (s *TurnLogStore) List(ctx context.Context, sessionID string) ([]domain.TurnLogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, mode, utterance, query, payload, created_at
		 FROM turn_log WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query turn log: %w", err)
	}
	defer rows.Close()

	var entries []domain.TurnLogEntry
	for rows.Next() {
		var (
			entry     domain.TurnLogEntry
			mode      string
			payload   string
			createdAt string
		)
		if err := rows.Scan(&entry.SessionID, &mode, &entry.Utterance, &entry.Query, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn log entry: %w", err)
		}
		entry.Mode = domain.Mode(mode)

		decoded, err := decodePayload([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("decode turn payload: %w", err)
		}
		entry.Payload = decoded

		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse turn timestamp: %w", err)
		}
		entry.CreatedAt = ts

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn log: %w", err)
	}
	return entries, nil
}

func decodePayload(raw []byte) (domain.Response, error) {
	var envelope payloadEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}

	switch envelope.Mode {
	case domain.ModeSearch:
		var payload domain.SearchResponse
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	case domain.ModeInquiry:
		var payload domain.InquiryResponse
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	default:
		return nil, fmt.Errorf("unknown turn mode %q", envelope.Mode)
	}
}

// Close closes the underlying database.
func (s *TurnLogStore) Close() error {
	return s.db.Close()
}
