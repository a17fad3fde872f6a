package domain

import "errors"

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrLoad indicates a recognised file type was unreadable or corrupt,
	// or a web fetch failed. Fatal to the ingestion step that raised it.
	ErrLoad = errors.New("load failed")

	// ErrIndex indicates an embedding or vector-backend failure during
	// build or lookup. There is no partial or degraded index.
	ErrIndex = errors.New("index failed")

	// ErrRewrite indicates the completion service failed while rewriting
	// a conversational query.
	ErrRewrite = errors.New("query rewrite failed")

	// ErrSynthesis indicates the completion service failed while
	// producing an answer.
	ErrSynthesis = errors.New("answer synthesis failed")

	// ErrSessionClosed indicates the session was destroyed.
	ErrSessionClosed = errors.New("session closed")
)
