package domain

import "time"

// CrawledDocument is a crawler's raw output before ingestion.
type CrawledDocument struct {
	// Title is the article title as the crawler saw it.
	Title string

	// URL is the article location and the basis for the stable
	// document identity.
	URL string

	// Text is the extracted plain text.
	Text string

	// Source names the crawler that produced this document.
	Source string

	// PublishedAt is the publication date when the crawler could
	// determine one.
	PublishedAt time.Time
}

// CrawlOutcome records what happened to a single crawled document.
type CrawlOutcome struct {
	// URL identifies the document.
	URL string

	// Ingested is true when the document was chunked and indexed.
	Ingested bool

	// Skipped is true when the document was already known and no
	// embedding work was done.
	Skipped bool

	// Err holds the failure for this document, if any. One bad
	// document never blocks the rest of the batch.
	Err error
}

// CrawlReport summarises one crawl-and-ingest run.
type CrawlReport struct {
	// Ingested counts documents written to the index.
	Ingested int

	// Skipped counts documents deduplicated before embedding.
	Skipped int

	// Failed counts per-document failures.
	Failed int

	// ChunksWritten is the total chunk count across ingested documents.
	ChunksWritten int

	// Outcomes lists the per-document results in processing order.
	Outcomes []CrawlOutcome
}

// Add merges a single outcome into the report.
func (r *CrawlReport) Add(o CrawlOutcome) {
	switch {
	case o.Err != nil:
		r.Failed++
	case o.Skipped:
		r.Skipped++
	case o.Ingested:
		r.Ingested++
	}
	r.Outcomes = append(r.Outcomes, o)
}
