package driving

import (
	"context"

	"github.com/farmlore/farmlore/internal/core/domain"
)

// QueryRequest is a text question against the corpus.
type QueryRequest struct {
	// Question is the user's current question.
	Question string

	// UseRAG enables retrieval. When false the answer is generated
	// from the question and history alone.
	UseRAG bool

	// ChatHistory holds prior user turns, oldest first. The core does
	// not store it; persistence is the caller's concern.
	ChatHistory []string

	// TopK overrides the configured retrieval depth when positive.
	TopK int
}

// ImageQueryRequest is a question accompanied by an image.
type ImageQueryRequest struct {
	// Image is the raw image bytes handed to OCR.
	Image []byte

	// Question is the user's accompanying question, possibly empty.
	Question string

	// UseRAG enables retrieval over the OCR text or question.
	UseRAG bool
}

// AnswerService composes retrieval, history and generation into a
// structured answer.
type AnswerService interface {
	// Query answers a text question. Empty retrieval results degrade
	// to a sourceless answer; generation failure is returned as an
	// error wrapping domain.ErrGeneration.
	Query(ctx context.Context, req QueryRequest) (*domain.Answer, error)

	// ImageQuery answers a question about an image. The returned
	// answer carries the OCR text separately from the answer text.
	ImageQuery(ctx context.Context, req ImageQueryRequest) (*domain.Answer, error)
}
