// Package normalisers contains format-specific transforms from raw
// connector output to the uniform document model, plus the registry
// that dispatches on MIME type.
package normalisers

import (
	"sync"

	"github.com/minato-lab/innersearch/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps MIME types to normalisers. Lookup misses are not errors:
// unrecognised types are skipped silently by the loader.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byMIME: make(map[string]driven.Normaliser)}
}

// Register adds a normaliser for all MIME types it supports.
// Later registrations win on conflict.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mt := range n.SupportedMIMETypes() {
		r.byMIME[mt] = n
	}
}

// ForMIMEType returns the normaliser registered for the MIME type.
func (r *Registry) ForMIMEType(mimeType string) (driven.Normaliser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.byMIME[mimeType]
	return n, ok
}
