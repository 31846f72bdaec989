package driving

import (
	"context"

	"github.com/farmlore/farmlore/internal/core/domain"
)

// CrawlOrchestrator bridges crawler output into the ingestion pipeline.
type CrawlOrchestrator interface {
	// CrawlAll runs every registered crawler and ingests what it
	// produces, deduplicating against previously seen documents.
	// Per-document failures are collected in the report, not returned
	// as errors; only context cancellation aborts a run.
	CrawlAll(ctx context.Context) (*domain.CrawlReport, error)
}
