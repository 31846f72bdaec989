package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driven"
	"github.com/farmlore/farmlore/internal/core/ports/driving"
	"github.com/farmlore/farmlore/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// Chunker splits a document into overlapping chunks.
type Chunker interface {
	Chunk(doc *domain.Document) []domain.Chunk
}

// IngestConfig holds the ingestion tunables.
type IngestConfig struct {
	// MinDocumentLength rejects near-empty documents, in runes.
	MinDocumentLength int

	// EmbedWorkers bounds concurrent embedding calls per document.
	EmbedWorkers int

	// BatchSize bounds the upsert batch size.
	BatchSize int

	// DeleteBeforeReingest removes a known document's vectors before
	// writing the new ones, so a shorter re-ingest leaves no stale
	// trailing chunks behind.
	DeleteBeforeReingest bool
}

// IngestService validates, chunks, embeds and indexes documents.
type IngestService struct {
	chunker  Chunker
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	registry driven.DocumentRegistry
	config   IngestConfig
}

// NewIngestService creates an ingest service.
// The registry parameter is optional (can be nil); without it every
// ingestion is treated as new.
func NewIngestService(
	chunker Chunker,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	registry driven.DocumentRegistry,
	config IngestConfig,
) *IngestService {
	if config.MinDocumentLength <= 0 {
		config.MinDocumentLength = 100
	}
	if config.EmbedWorkers <= 0 {
		config.EmbedWorkers = 4
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	return &IngestService{
		chunker:  chunker,
		embedder: embedder,
		index:    index,
		registry: registry,
		config:   config,
	}
}

// Ingest validates and ingests a manually submitted document.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (int, error) {
	text := strings.TrimSpace(req.Text)
	if utf8.RuneCountInString(text) < s.config.MinDocumentLength {
		return 0, fmt.Errorf("%w: text is %d characters, minimum is %d",
			domain.ErrInvalidInput, utf8.RuneCountInString(text), s.config.MinDocumentLength)
	}

	source := req.Source
	if source == "" {
		source = "manual"
	}

	// Without a URL the identity comes from the content itself, so
	// resubmitting the same text lands on the same document.
	key := req.Title + "\n" + text

	doc := domain.Document{
		ID:      domain.DocumentID(req.URL, key),
		Title:   req.Title,
		Source:  source,
		URL:     req.URL,
		RawText: text,
	}

	return s.IngestDocument(ctx, doc)
}

// IngestDocument chunks, embeds and indexes an already-identified
// document. The whole document succeeds or fails as a unit: an
// embedding failure on any chunk aborts before anything is written.
func (s *IngestService) IngestDocument(ctx context.Context, doc domain.Document) (int, error) {
	logger.Section("Document Ingestion")
	logger.Debug("Document %s (%q, source=%s)", doc.ID, doc.Title, doc.Source)

	chunks := s.chunker.Chunk(&doc)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: document produced no chunks", domain.ErrInvalidInput)
	}
	logger.Debug("Split into %d chunks", len(chunks))

	// Embed all chunks before touching the index, so a mid-document
	// embedding failure leaves the index unmodified.
	records := make([]driven.VectorRecord, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.EmbedWorkers)

	for i, chunk := range chunks {
		g.Go(func() error {
			vector, err := s.embedder.Embed(gctx, chunk.Text)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", chunk.SeqIndex, err)
			}
			records[i] = driven.VectorRecord{
				ChunkID:   chunk.ID,
				Embedding: vector,
				Payload: domain.Payload{
					DocumentID: doc.ID,
					Title:      doc.Title,
					URL:        doc.URL,
					Source:     doc.Source,
					Text:       chunk.Text,
					SeqIndex:   chunk.SeqIndex,
				},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if s.config.DeleteBeforeReingest && s.registry != nil {
		seen, err := s.registry.Seen(ctx, doc.ID)
		if err != nil {
			return 0, fmt.Errorf("check registry: %w", err)
		}
		if seen {
			logger.Debug("Deleting existing vectors for %s before re-ingest", doc.ID)
			if err := s.index.DeleteByDocument(ctx, doc.ID); err != nil {
				return 0, fmt.Errorf("delete previous vectors: %w", err)
			}
		}
	}

	for start := 0; start < len(records); start += s.config.BatchSize {
		end := min(start+s.config.BatchSize, len(records))
		if err := s.index.Upsert(ctx, records[start:end]); err != nil {
			return 0, fmt.Errorf("upsert chunks [%d:%d]: %w", start, end, err)
		}
	}

	if s.registry != nil {
		if err := s.registry.Record(ctx, doc, len(chunks)); err != nil {
			// The vectors are already written; a registry failure is
			// worth a warning but not a failed ingestion.
			logger.Warn("Failed to record document %s: %v", doc.ID, err)
		}
	}

	logger.Info("Ingested %q: %d chunks", doc.Title, len(chunks))
	return len(chunks), nil
}

// InitIndex idempotently creates the vector collection sized to the
// embedding model's dimension.
func (s *IngestService) InitIndex(ctx context.Context) error {
	dim := s.embedder.Dimensions()
	if dim <= 0 {
		return fmt.Errorf("%w: embedding model reports dimension %d", domain.ErrInvalidInput, dim)
	}
	if err := s.index.EnsureCollection(ctx, dim); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	logger.Info("Vector collection ready (dimension %d)", dim)
	return nil
}
