// Package memory provides an in-memory vector index using brute-force
// cosine similarity. It backs tests and single-process setups where
// running Qdrant is not worth it.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory vector store.
type VectorIndex struct {
	mu        sync.RWMutex
	dimension int
	points    map[string]driven.VectorRecord
}

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		points: make(map[string]driven.VectorRecord),
	}
}

// EnsureCollection records the vector dimension. Re-creating with the
// same dimension is a no-op; changing it on a non-empty index is an
// error.
func (v *VectorIndex) EnsureCollection(_ context.Context, dimension int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.dimension != 0 && v.dimension != dimension && len(v.points) > 0 {
		return fmt.Errorf("%w: collection already has dimension %d", domain.ErrIndex, v.dimension)
	}
	v.dimension = dimension
	return nil
}

// Upsert stores records keyed by chunk ID, last write wins.
func (v *VectorIndex) Upsert(_ context.Context, records []driven.VectorRecord) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, rec := range records {
		if v.dimension != 0 && len(rec.Embedding) != v.dimension {
			return fmt.Errorf("%w: vector for %s has dimension %d, collection has %d",
				domain.ErrIndex, rec.ChunkID, len(rec.Embedding), v.dimension)
		}
		v.points[rec.ChunkID] = rec
	}
	return nil
}

// Search scans every stored vector and returns the topK most similar
// by cosine similarity, descending.
func (v *VectorIndex) Search(_ context.Context, vector []float32, topK int) ([]driven.VectorHit, error) {
	if topK <= 0 {
		return nil, nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(v.points))
	for _, rec := range v.points {
		hits = append(hits, driven.VectorHit{
			Payload: rec.Payload,
			Score:   cosineSimilarity(vector, rec.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

// DeleteByDocument removes every record belonging to a document.
func (v *VectorIndex) DeleteByDocument(_ context.Context, documentID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for id, rec := range v.points {
		if rec.Payload.DocumentID == documentID {
			delete(v.points, id)
		}
	}
	return nil
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	return nil
}

// Len returns the number of stored points.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.points)
}

// cosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths or zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
