package driven

import (
	"context"

	"github.com/farmlore/farmlore/internal/core/domain"
)

// Crawler fetches documents from one site or feed. Each source
// implements this interface; the crawl-to-ingest bridge depends only on
// it, never on concrete source types.
type Crawler interface {
	// Name returns the source label recorded on produced documents.
	Name() string

	// Crawl streams documents as they are fetched. Both channels close
	// when the run is done. Errors on the error channel are
	// per-document fetch or parse failures and never terminate the
	// stream; only context cancellation does.
	Crawl(ctx context.Context) (<-chan domain.CrawledDocument, <-chan error)
}
