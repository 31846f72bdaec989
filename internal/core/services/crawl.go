package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driven"
	"github.com/farmlore/farmlore/internal/core/ports/driving"
	"github.com/farmlore/farmlore/internal/logger"
)

// Ensure CrawlService implements the interface.
var _ driving.CrawlOrchestrator = (*CrawlService)(nil)

// CrawlService bridges crawler output into the ingestion pipeline,
// deduplicating against the document registry before any embedding
// work is spent.
type CrawlService struct {
	crawlers []driven.Crawler
	ingestor driving.Ingestor
	registry driven.DocumentRegistry
}

// NewCrawlService creates a crawl orchestrator.
func NewCrawlService(
	crawlers []driven.Crawler,
	ingestor driving.Ingestor,
	registry driven.DocumentRegistry,
) *CrawlService {
	return &CrawlService{
		crawlers: crawlers,
		ingestor: ingestor,
		registry: registry,
	}
}

// CrawlAll runs every registered crawler in turn and ingests what it
// produces. Per-document failures are recorded in the report and never
// abort the run; only context cancellation does.
func (s *CrawlService) CrawlAll(ctx context.Context) (*domain.CrawlReport, error) {
	logger.Section("Crawl Run")
	report := &domain.CrawlReport{}

	for _, crawler := range s.crawlers {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		logger.Info("Crawling source %s", crawler.Name())
		if err := s.crawlOne(ctx, crawler, report); err != nil {
			return report, err
		}
	}

	logger.Info("Crawl complete: %d ingested, %d skipped, %d failed, %d chunks",
		report.Ingested, report.Skipped, report.Failed, report.ChunksWritten)
	return report, nil
}

// crawlOne drains a single crawler's document and error channels.
func (s *CrawlService) crawlOne(ctx context.Context, crawler driven.Crawler, report *domain.CrawlReport) error {
	docsCh, errsCh := crawler.Crawl(ctx)

	for docsCh != nil || errsCh != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case doc, ok := <-docsCh:
			if !ok {
				docsCh = nil
				continue
			}
			outcome := s.process(ctx, crawler.Name(), doc, report)
			report.Add(outcome)

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			logger.Warn("Crawler %s: %v", crawler.Name(), err)
			report.Add(domain.CrawlOutcome{
				Err: fmt.Errorf("%w: %w", domain.ErrCrawlerFailed, err),
			})
		}
	}
	return nil
}

// process dedups and ingests one crawled document.
func (s *CrawlService) process(
	ctx context.Context, source string, crawled domain.CrawledDocument, report *domain.CrawlReport,
) domain.CrawlOutcome {
	if strings.TrimSpace(crawled.URL) == "" {
		return domain.CrawlOutcome{
			Err: fmt.Errorf("%w: crawled document %q has no URL", domain.ErrInvalidInput, crawled.Title),
		}
	}

	if crawled.Source == "" {
		crawled.Source = source
	}

	doc := domain.Document{
		ID:        domain.DocumentID(crawled.URL, ""),
		Title:     crawled.Title,
		Source:    crawled.Source,
		URL:       crawled.URL,
		RawText:   crawled.Text,
		FetchedAt: time.Now(),
	}

	// Identity check before chunking or embedding: duplicates must not
	// cost an embedding call.
	if s.registry != nil {
		seen, err := s.registry.Seen(ctx, doc.ID)
		if err != nil {
			return domain.CrawlOutcome{URL: doc.URL, Err: fmt.Errorf("check registry: %w", err)}
		}
		if seen {
			logger.Debug("Skipping known document %s", doc.URL)
			return domain.CrawlOutcome{URL: doc.URL, Skipped: true}
		}
	}

	count, err := s.ingestor.IngestDocument(ctx, doc)
	if err != nil {
		return domain.CrawlOutcome{URL: doc.URL, Err: fmt.Errorf("ingest %s: %w", doc.URL, err)}
	}

	report.ChunksWritten += count
	return domain.CrawlOutcome{URL: doc.URL, Ingested: true}
}
