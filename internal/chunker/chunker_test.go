package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmlore/farmlore/internal/core/domain"
)

func testDoc(text string) *domain.Document {
	return &domain.Document{
		ID:      domain.DocumentID("", "chunk-test"),
		RawText: text,
	}
}

func TestChunk_Offsets(t *testing.T) {
	// 250 characters, size 100, overlap 20: windows at [0,100),
	// [80,180), [160,250), the last one shorter.
	text := strings.Repeat("a", 250)
	c := New(WithChunkSize(100), WithOverlap(20))

	chunks := c.Chunk(testDoc(text))

	require.Len(t, chunks, 3)
	assert.Equal(t, 0, chunks[0].CharStart)
	assert.Equal(t, 100, chunks[0].CharEnd)
	assert.Equal(t, 80, chunks[1].CharStart)
	assert.Equal(t, 180, chunks[1].CharEnd)
	assert.Equal(t, 160, chunks[2].CharStart)
	assert.Equal(t, 250, chunks[2].CharEnd)
	assert.Len(t, chunks[2].Text, 90)
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(20))

	chunks := c.Chunk(testDoc("short text"))

	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].SeqIndex)
}

func TestChunk_EmptyTextNoChunks(t *testing.T) {
	c := New()

	assert.Empty(t, c.Chunk(testDoc("")))
}

func TestChunk_Reconstruction(t *testing.T) {
	// Concatenating chunks minus the overlap reconstructs the text.
	text := "The quick brown fox jumps over the lazy dog. " +
		strings.Repeat("Pigs thrive on consistent feeding schedules. ", 12)
	c := New(WithChunkSize(80), WithOverlap(30))

	chunks := c.Chunk(testDoc(text))
	require.NotEmpty(t, chunks)

	var sb strings.Builder
	for i, ch := range chunks {
		runes := []rune(ch.Text)
		if i == 0 {
			sb.WriteString(ch.Text)
			continue
		}
		sb.WriteString(string(runes[c.Overlap():]))
	}

	assert.Equal(t, text, sb.String())
}

func TestChunk_Deterministic(t *testing.T) {
	text := strings.Repeat("deterministic ", 40)
	c := New(WithChunkSize(64), WithOverlap(16))

	first := c.Chunk(testDoc(text))
	second := c.Chunk(testDoc(text))

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestChunk_MultibyteRunes(t *testing.T) {
	// Offsets are rune positions; multi-byte text must not split
	// inside a character.
	text := strings.Repeat("양돈농가", 30) // 120 runes
	c := New(WithChunkSize(50), WithOverlap(10))

	chunks := c.Chunk(testDoc(text))

	require.Len(t, chunks, 3)
	for _, ch := range chunks {
		assert.Equal(t, ch.CharEnd-ch.CharStart, len([]rune(ch.Text)))
	}
}

func TestNew_ClampsOverlap(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(150))

	assert.Equal(t, 25, c.Overlap())
	// Still terminates and covers the text.
	chunks := c.Chunk(testDoc(strings.Repeat("x", 300)))
	assert.NotEmpty(t, chunks)
	assert.Equal(t, 300, chunks[len(chunks)-1].CharEnd)
}
