package domain

// Payload is the metadata stored alongside a vector and returned with
// every retrieval hit. It is everything a caller needs to render a
// citation without a second lookup.
type Payload struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Source     string `json:"source"`
	Text       string `json:"text"`
	SeqIndex   int    `json:"seq_index"`
}

// RetrievedPassage is one scored retrieval hit. Passages are ephemeral,
// produced per query in descending score order, and never persisted.
type RetrievedPassage struct {
	Payload Payload
	Score   float64
}

// RetrievalOptions configures a retrieval call.
type RetrievalOptions struct {
	// TopK is the maximum number of passages to return.
	TopK int

	// ScoreThreshold is the minimum similarity score. Comparison is
	// inclusive: a passage scoring exactly the threshold is kept.
	ScoreThreshold float64

	// Enabled gates retrieval entirely. When false the retriever
	// returns an empty slice without touching the embedder or index.
	// This is the "generation only" mode, not an error.
	Enabled bool
}

// SourceDocument is a cited source in an answer, mirroring one
// retrieved passage in the same order the prompt numbered it.
type SourceDocument struct {
	Content string  `json:"content"`
	Title   string  `json:"title,omitempty"`
	URL     string  `json:"url,omitempty"`
	Source  string  `json:"source,omitempty"`
	Score   float64 `json:"score"`
}

// Answer is the structured response produced by the answer composer.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Sources enumerates exactly the retrieved passages used to build
	// the prompt, in prompt citation order. Empty for degraded answers.
	Sources []SourceDocument

	// OCRText is what was read from the supplied image, when any.
	// Kept separate from Text so callers can display it independently.
	OCRText string
}
