package driven

import (
	"context"

	"github.com/minato-lab/innersearch/internal/core/domain"
)

// Connector fetches raw documents from a data source (filesystem root,
// configured web URLs). Loader errors are fatal to the ingestion run:
// the orchestrator aborts on the first error received.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// Load fetches all documents from the source.
	// Returns channels for documents and errors. The document channel is
	// closed when the source is exhausted.
	Load(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Capabilities returns what this connector supports.
	Capabilities() ConnectorCapabilities

	// Watch listens for changes under the source.
	// Only available if SupportsWatch is true.
	Watch(ctx context.Context) (<-chan string, error)

	// Close releases resources.
	Close() error
}

// ConnectorCapabilities describes what a connector supports.
type ConnectorCapabilities struct {
	// SupportsWatch indicates the connector can push change events.
	SupportsWatch bool
}
