package domain

import "errors"

// Domain errors represent business logic and capability failures.
// Adapters wrap the matching sentinel so callers can classify with
// errors.Is without knowing the transport.
var (
	// ErrInvalidInput indicates malformed or rejected input, e.g.
	// document text below the minimum ingestion length. The request is
	// rejected with no side effects.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrEmbedding indicates the embedding capability failed.
	// During ingestion this aborts the affected document; during
	// retrieval the caller degrades to answering without sources.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndex indicates a vector index transport or availability
	// failure.
	ErrIndex = errors.New("vector index failed")

	// ErrGeneration indicates the generation capability failed. There
	// is no meaningful answer without it, so the request fails.
	ErrGeneration = errors.New("generation failed")

	// ErrOCR indicates the OCR capability failed. An empty extraction
	// is valid and is not this error.
	ErrOCR = errors.New("ocr failed")

	// ErrCrawlerFailed indicates a crawler could not fetch a document.
	// Failures are per-document and never abort the batch.
	ErrCrawlerFailed = errors.New("crawler failed")
)
