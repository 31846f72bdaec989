// Package domain defines the core business entities for Farmlore.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - Document: A logical source unit entering the pipeline
//   - Chunk: An embeddable window of a document's text
//   - RetrievedPassage: A scored payload returned by retrieval
//   - CrawledDocument: Raw output of a crawler before ingestion
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse. The only external import is the uuid
// package used for deterministic identity derivation.
package domain
