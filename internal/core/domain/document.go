package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// idNamespace is the fixed UUID namespace for deterministic identity
// derivation. Changing it invalidates every previously written chunk ID.
var idNamespace = uuid.MustParse("8d4a7e1c-52bb-4c2e-9f3a-6be0d1a94f07")

// Document represents a logical source unit: one article, page or
// manually submitted text. Documents are immutable once created;
// re-ingesting under the same identity replaces the indexed chunks
// rather than appending duplicates.
type Document struct {
	// ID is the stable identity, derived from the source URL or an
	// explicit key via DocumentID.
	ID string

	// Title is the human-readable title.
	Title string

	// Source is the origin label (crawler name or "manual").
	Source string

	// URL is the original location, if any.
	URL string

	// RawText is the full text content before chunking.
	RawText string

	// FetchedAt is when the document was fetched or submitted.
	FetchedAt time.Time
}

// Chunk is a bounded window of a document's text prepared for embedding.
// Chunks of one document are contiguous and overlap by the configured
// overlap length.
type Chunk struct {
	// ID is the deterministic chunk identity, see ChunkID.
	ID string

	// DocumentID links back to the owning document.
	DocumentID string

	// SeqIndex is the position within the document. It participates in
	// the chunk identity, which is what makes upsert idempotent.
	SeqIndex int

	// Text is the chunk content.
	Text string

	// CharStart and CharEnd are rune offsets into the document text.
	CharStart int
	CharEnd   int
}

// DocumentID derives the stable document identity. The URL wins when
// present so re-crawled pages map to the same document; otherwise the
// explicit key (e.g. a title for manual ingestion) is used.
func DocumentID(url, key string) string {
	if url != "" {
		return uuid.NewSHA1(idNamespace, []byte("doc:"+url)).String()
	}
	return uuid.NewSHA1(idNamespace, []byte("doc:key:"+key)).String()
}

// ChunkID derives the deterministic chunk identity from the owning
// document and the sequence index. Re-ingesting the same document with
// the same chunking parameters therefore overwrites the same IDs.
func ChunkID(documentID string, seqIndex int) string {
	return uuid.NewSHA1(idNamespace, []byte(documentID+"#"+strconv.Itoa(seqIndex))).String()
}
