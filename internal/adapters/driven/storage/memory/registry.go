// Package memory provides in-memory storage adapters for tests and
// ephemeral setups.
package memory

import (
	"context"
	"sync"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driven"
)

// Ensure DocumentRegistry implements the interface.
var _ driven.DocumentRegistry = (*DocumentRegistry)(nil)

// entry is one recorded document.
type entry struct {
	doc        domain.Document
	chunkCount int
}

// DocumentRegistry is an in-memory document registry.
type DocumentRegistry struct {
	mu   sync.RWMutex
	docs map[string]entry
}

// NewDocumentRegistry creates an empty in-memory registry.
func NewDocumentRegistry() *DocumentRegistry {
	return &DocumentRegistry{
		docs: make(map[string]entry),
	}
}

// Seen reports whether the document identity was already ingested.
func (r *DocumentRegistry) Seen(_ context.Context, documentID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.docs[documentID]
	return ok, nil
}

// Record stores a document's identity and metadata.
func (r *DocumentRegistry) Record(_ context.Context, doc domain.Document, chunkCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = entry{doc: doc, chunkCount: chunkCount}
	return nil
}

// Count returns the number of recorded documents.
func (r *DocumentRegistry) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs), nil
}

// Close releases resources.
func (r *DocumentRegistry) Close() error {
	return nil
}
