package driven

import (
	"context"

	"github.com/farmlore/farmlore/internal/core/domain"
)

// VectorRecord is the unit stored in the vector index: a chunk's
// embedding plus the payload retrieval returns with every hit.
type VectorRecord struct {
	// ChunkID is the deterministic chunk identity used as the point ID,
	// which makes Upsert idempotent.
	ChunkID string

	// Embedding is the fixed-dimension vector.
	Embedding []float32

	// Payload carries the citation metadata and chunk text.
	Payload domain.Payload
}

// VectorHit is one similarity search result.
type VectorHit struct {
	// Payload is the stored metadata for the matched chunk.
	Payload domain.Payload

	// Score is the similarity score in the index's native metric
	// (cosine similarity for all shipped adapters).
	Score float64
}

// VectorIndex stores embeddings with payloads and serves
// k-nearest-neighbour search. Upserts to the same chunk ID are
// last-write-wins; the core relies on the index's own consistency
// guarantees and holds no locks of its own.
type VectorIndex interface {
	// EnsureCollection idempotently creates the collection with the
	// given vector dimension. Calling it again with the same dimension
	// is a no-op.
	EnsureCollection(ctx context.Context, dimension int) error

	// Upsert writes a batch of records keyed by chunk ID. A batch of N
	// records reaches the same final state as N single upserts.
	// Failures wrap domain.ErrIndex.
	Upsert(ctx context.Context, records []VectorRecord) error

	// Search returns the topK nearest records in descending score
	// order. Tie-breaks between equal scores follow the index's native
	// ordering. Failures wrap domain.ErrIndex.
	Search(ctx context.Context, vector []float32, topK int) ([]VectorHit, error)

	// DeleteByDocument removes every record belonging to a document.
	// Used by replace-style re-ingestion to avoid stale chunks.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Close releases resources.
	Close() error
}
