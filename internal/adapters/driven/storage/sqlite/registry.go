package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driven"
)

// documentRegistry implements driven.DocumentRegistry.
type documentRegistry struct {
	store *Store
}

var _ driven.DocumentRegistry = (*documentRegistry)(nil)

// Seen reports whether the document identity was already ingested.
func (r *documentRegistry) Seen(ctx context.Context, documentID string) (bool, error) {
	var count int
	row := r.store.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM documents WHERE id = ?", documentID)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("checking document: %w", err)
	}
	return count > 0, nil
}

// Record stores a document's identity and metadata after a successful
// ingestion. Recording an existing identity updates it.
func (r *documentRegistry) Record(ctx context.Context, doc domain.Document, chunkCount int) error {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, source, url, chunk_count, fetched_at, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			source = excluded.source,
			url = excluded.url,
			chunk_count = excluded.chunk_count,
			fetched_at = excluded.fetched_at,
			ingested_at = excluded.ingested_at
	`, doc.ID, doc.Title, doc.Source, doc.URL, chunkCount,
		formatNullableTime(doc.FetchedAt), time.Now().UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("recording document: %w", err)
	}
	return nil
}

// Count returns the number of recorded documents.
func (r *documentRegistry) Count(ctx context.Context) (int, error) {
	var count int
	row := r.store.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM documents")
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// Close is a no-op; the underlying store owns the connection.
func (r *documentRegistry) Close() error {
	return nil
}
