// Package chunker provides fixed-size overlapping text chunking.
package chunker

import (
	"github.com/farmlore/farmlore/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// Chunker splits document text into overlapping windows. Identical
// input always yields an identical sequence, which the deterministic
// chunk IDs depend on.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Keep 0 < overlap < chunkSize so the window always advances.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// ChunkSize returns the configured window size.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the configured overlap length.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits the document's text into overlapping windows, advancing
// by chunkSize-overlap each step. Offsets are rune positions so
// multi-byte text never splits inside a character. The final window may
// be shorter and is kept only if non-empty; text shorter than the
// window yields exactly one chunk.
func (c *Chunker) Chunk(doc *domain.Document) []domain.Chunk {
	if doc.RawText == "" {
		return nil
	}

	runes := []rune(doc.RawText)
	total := len(runes)
	step := c.chunkSize - c.overlap

	chunks := make([]domain.Chunk, 0, total/step+1)

	seq := 0
	for start := 0; start < total; start += step {
		end := start + c.chunkSize
		if end > total {
			end = total
		}

		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(doc.ID, seq),
			DocumentID: doc.ID,
			SeqIndex:   seq,
			Text:       string(runes[start:end]),
			CharStart:  start,
			CharEnd:    end,
		})
		seq++

		if end == total {
			break
		}
	}

	return chunks
}
