package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driven"
)

func hit(docID string, score float64) driven.VectorHit {
	return driven.VectorHit{
		Payload: domain.Payload{DocumentID: docID, Text: "passage for " + docID},
		Score:   score,
	}
}

func TestRetrieveDisabledReturnsEmpty(t *testing.T) {
	emb := &mockEmbedder{}
	idx := &mockVectorIndex{hits: []driven.VectorHit{hit("doc-1", 0.9)}}
	svc := NewRetrieveService(emb, idx)

	passages, err := svc.Retrieve(context.Background(), "weaning age", domain.RetrievalOptions{
		TopK:    5,
		Enabled: false,
	})
	require.NoError(t, err)
	assert.Empty(t, passages)

	// Disabled mode must not touch the embedder or the index.
	assert.Zero(t, emb.callCount())
	assert.Empty(t, idx.searchTopK)
}

func TestRetrieveEmptyQueryReturnsEmpty(t *testing.T) {
	emb := &mockEmbedder{}
	svc := NewRetrieveService(emb, &mockVectorIndex{})

	passages, err := svc.Retrieve(context.Background(), "   ", domain.RetrievalOptions{
		TopK:    5,
		Enabled: true,
	})
	require.NoError(t, err)
	assert.Empty(t, passages)
	assert.Zero(t, emb.callCount())
}

func TestRetrieveFiltersBelowThresholdInclusive(t *testing.T) {
	idx := &mockVectorIndex{hits: []driven.VectorHit{
		hit("doc-1", 0.9),
		hit("doc-2", 0.5),
		hit("doc-3", 0.49),
	}}
	svc := NewRetrieveService(&mockEmbedder{}, idx)

	passages, err := svc.Retrieve(context.Background(), "farrowing", domain.RetrievalOptions{
		TopK:           5,
		ScoreThreshold: 0.5,
		Enabled:        true,
	})
	require.NoError(t, err)

	// A passage scoring exactly the threshold is kept.
	require.Len(t, passages, 2)
	assert.Equal(t, "doc-1", passages[0].Payload.DocumentID)
	assert.Equal(t, "doc-2", passages[1].Payload.DocumentID)
	assert.Equal(t, 0.5, passages[1].Score)
}

func TestRetrieveRespectsTopK(t *testing.T) {
	idx := &mockVectorIndex{hits: []driven.VectorHit{
		hit("doc-1", 0.9),
		hit("doc-2", 0.8),
		hit("doc-3", 0.7),
	}}
	svc := NewRetrieveService(&mockEmbedder{}, idx)

	passages, err := svc.Retrieve(context.Background(), "ventilation", domain.RetrievalOptions{
		TopK:    2,
		Enabled: true,
	})
	require.NoError(t, err)
	assert.Len(t, passages, 2)
	assert.Equal(t, []int{2}, idx.searchTopK)
}

func TestRetrieveEmptyIndexIsNotAnError(t *testing.T) {
	svc := NewRetrieveService(&mockEmbedder{}, &mockVectorIndex{})

	passages, err := svc.Retrieve(context.Background(), "tail biting", domain.RetrievalOptions{
		TopK:    5,
		Enabled: true,
	})
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestRetrieveEmbedFailurePropagates(t *testing.T) {
	emb := &mockEmbedder{embedErr: domain.ErrEmbedding}
	svc := NewRetrieveService(emb, &mockVectorIndex{})

	_, err := svc.Retrieve(context.Background(), "gestation", domain.RetrievalOptions{
		TopK:    5,
		Enabled: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestRetrieveSearchFailurePropagates(t *testing.T) {
	idx := &mockVectorIndex{searchErr: domain.ErrIndex}
	svc := NewRetrieveService(&mockEmbedder{}, idx)

	_, err := svc.Retrieve(context.Background(), "gestation", domain.RetrievalOptions{
		TopK:    5,
		Enabled: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndex)
}
