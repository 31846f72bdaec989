package driven

import (
	"context"

	"github.com/farmlore/farmlore/internal/core/domain"
)

// DocumentRegistry remembers which document identities have been
// ingested. The crawl bridge consults it before chunking or embedding
// anything, because embedding is the most expensive step in the
// pipeline and duplicates would waste it.
type DocumentRegistry interface {
	// Seen reports whether the document identity was already ingested.
	Seen(ctx context.Context, documentID string) (bool, error)

	// Record stores a document's identity and metadata after a
	// successful ingestion. Recording an existing identity updates it.
	Record(ctx context.Context, doc domain.Document, chunkCount int) error

	// Count returns the number of recorded documents.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
