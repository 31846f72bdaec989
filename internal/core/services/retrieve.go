package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driven"
	"github.com/farmlore/farmlore/internal/logger"
)

// RetrieveService embeds a query and searches the vector index.
type RetrieveService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// NewRetrieveService creates a retrieve service.
func NewRetrieveService(embedder driven.EmbeddingService, index driven.VectorIndex) *RetrieveService {
	return &RetrieveService{
		embedder: embedder,
		index:    index,
	}
}

// Retrieve returns the passages most similar to the query, in
// descending score order, dropping anything below the threshold.
// Disabled retrieval and empty queries return an empty slice, not an
// error. Capability failures propagate; the caller decides whether to
// degrade.
func (s *RetrieveService) Retrieve(
	ctx context.Context, query string, opts domain.RetrievalOptions,
) ([]domain.RetrievedPassage, error) {
	if !opts.Enabled {
		logger.Debug("Retrieval disabled, returning no passages")
		return []domain.RetrievedPassage{}, nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no passages")
		return []domain.RetrievedPassage{}, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.index.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	// Threshold is inclusive: a hit scoring exactly the threshold is
	// kept. The index returns hits in descending score order already.
	passages := make([]domain.RetrievedPassage, 0, len(hits))
	for _, hit := range hits {
		if hit.Score < opts.ScoreThreshold {
			continue
		}
		passages = append(passages, domain.RetrievedPassage{
			Payload: hit.Payload,
			Score:   hit.Score,
		})
	}

	logger.Debug("Retrieved %d passages (%d hits, threshold %.2f)",
		len(passages), len(hits), opts.ScoreThreshold)
	return passages, nil
}
