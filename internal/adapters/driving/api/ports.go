package api

import (
	"github.com/farmlore/farmlore/internal/core/ports/driven"
	"github.com/farmlore/farmlore/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces the HTTP API serves.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer serves text and image questions.
	Answer driving.AnswerService

	// Ingestor handles manual document submission and index setup.
	Ingestor driving.Ingestor

	// Crawler triggers crawl-and-ingest runs. Optional; the crawl
	// endpoint reports unavailable when nil.
	Crawler driving.CrawlOrchestrator

	// Registry supplies document counts for the health endpoint.
	// Optional.
	Registry driven.DocumentRegistry
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Ingestor == nil {
		return ErrMissingIngestor
	}
	return nil
}
