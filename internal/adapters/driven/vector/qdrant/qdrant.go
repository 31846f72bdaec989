// Package qdrant provides a vector index adapter backed by Qdrant's
// REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:6333"
	DefaultCollection = "farmlore"
	DefaultTimeout    = 15 * time.Second
)

// Config holds configuration for the Qdrant vector index.
type Config struct {
	// BaseURL is the Qdrant REST API base URL (default: http://localhost:6333).
	BaseURL string

	// APIKey is the Qdrant API key, if the server requires one.
	APIKey string

	// Collection is the collection name (default: farmlore).
	Collection string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// VectorIndex stores and searches embeddings in Qdrant.
type VectorIndex struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	collection string
}

// point is the Qdrant point format for upserts.
type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload domain.Payload `json:"payload"`
}

// searchResult is one entry of a Qdrant search response.
type searchResult struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload domain.Payload `json:"payload"`
}

// apiResponse is the Qdrant response envelope.
type apiResponse struct {
	Status json.RawMessage `json:"status"`
	Result json.RawMessage `json:"result"`
}

// NewVectorIndex creates a new Qdrant vector index.
func NewVectorIndex(cfg Config) *VectorIndex {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &VectorIndex{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
	}
}

// EnsureCollection idempotently creates the collection with the given
// vector dimension, using cosine distance.
func (v *VectorIndex) EnsureCollection(ctx context.Context, dimension int) error {
	// An existing collection is left alone.
	status, _, err := v.do(ctx, http.MethodGet, "/collections/"+v.collection, nil)
	if err != nil {
		return fmt.Errorf("%w: check collection: %w", domain.ErrIndex, err)
	}
	if status == http.StatusOK {
		return nil
	}
	if status != http.StatusNotFound {
		return fmt.Errorf("%w: check collection: status %d", domain.ErrIndex, status)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	status, respBody, err := v.do(ctx, http.MethodPut, "/collections/"+v.collection, body)
	if err != nil {
		return fmt.Errorf("%w: create collection: %w", domain.ErrIndex, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: create collection: status %d: %s", domain.ErrIndex, status, respBody)
	}
	return nil
}

// Upsert writes a batch of records keyed by chunk ID. The write waits
// for Qdrant to apply it, so a successful return means the points are
// searchable.
func (v *VectorIndex) Upsert(ctx context.Context, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]point, len(records))
	for i, rec := range records {
		points[i] = point{
			ID:      rec.ChunkID,
			Vector:  rec.Embedding,
			Payload: rec.Payload,
		}
	}

	body := map[string]any{"points": points}
	status, respBody, err := v.do(ctx, http.MethodPut,
		"/collections/"+v.collection+"/points?wait=true", body)
	if err != nil {
		return fmt.Errorf("%w: upsert: %w", domain.ErrIndex, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: upsert: status %d: %s", domain.ErrIndex, status, respBody)
	}
	return nil
}

// Search returns the topK nearest points in descending score order.
func (v *VectorIndex) Search(ctx context.Context, vector []float32, topK int) ([]driven.VectorHit, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	status, respBody, err := v.do(ctx, http.MethodPost,
		"/collections/"+v.collection+"/points/search", body)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", domain.ErrIndex, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: search: status %d: %s", domain.ErrIndex, status, respBody)
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %w", domain.ErrIndex, err)
	}
	var results []searchResult
	if err := json.Unmarshal(envelope.Result, &results); err != nil {
		return nil, fmt.Errorf("%w: decode search results: %w", domain.ErrIndex, err)
	}

	hits := make([]driven.VectorHit, len(results))
	for i, r := range results {
		hits[i] = driven.VectorHit{
			Payload: r.Payload,
			Score:   r.Score,
		}
	}
	return hits, nil
}

// DeleteByDocument removes every point whose payload carries the
// given document ID.
func (v *VectorIndex) DeleteByDocument(ctx context.Context, documentID string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key":   "document_id",
					"match": map[string]any{"value": documentID},
				},
			},
		},
	}
	status, respBody, err := v.do(ctx, http.MethodPost,
		"/collections/"+v.collection+"/points/delete?wait=true", body)
	if err != nil {
		return fmt.Errorf("%w: delete by document: %w", domain.ErrIndex, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: delete by document: status %d: %s", domain.ErrIndex, status, respBody)
	}
	return nil
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	return nil
}

// do sends one request to Qdrant and returns the status and body.
func (v *VectorIndex) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, v.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if v.apiKey != "" {
		req.Header.Set("api-key", v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
