// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the answering pipeline to function:
//
//   - EmbeddingService: Maps text to fixed-length vectors
//   - VectorIndex: Stores vectors and serves k-nearest-neighbour search
//   - LLMService: Generates answers from prompts
//   - DocumentRegistry: Remembers which documents were already ingested
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - OCRService: Extracts text from images. Without it, image queries
//     fall back to the accompanying question.
//   - PromptStore: Custom prompt templates. Without it, embedded
//     defaults are used.
//   - Crawler implementations: Without any, only manual ingestion runs.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or crawler package
package driven
