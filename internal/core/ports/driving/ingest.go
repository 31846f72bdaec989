package driving

import (
	"context"

	"github.com/farmlore/farmlore/internal/core/domain"
)

// IngestRequest is a manual document submission.
type IngestRequest struct {
	// Text is the document body.
	Text string

	// Title is the human-readable title, optional.
	Title string

	// Source is the origin label; defaults to "manual" when empty.
	Source string

	// URL is the original location, optional. When set it determines
	// the document identity.
	URL string
}

// Ingestor turns raw documents into indexed chunks.
type Ingestor interface {
	// Ingest validates, chunks, embeds and upserts one document.
	// Returns the number of chunks written. Text below the configured
	// minimum length is rejected with domain.ErrInvalidInput.
	Ingest(ctx context.Context, req IngestRequest) (int, error)

	// IngestDocument ingests an already-identified document. Used by
	// the crawl bridge after dedup.
	IngestDocument(ctx context.Context, doc domain.Document) (int, error)

	// InitIndex idempotently creates the vector collection with the
	// embedder's dimension.
	InitIndex(ctx context.Context) error
}
