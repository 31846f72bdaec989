package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driven"
	"github.com/farmlore/farmlore/internal/core/ports/driving"
	"github.com/farmlore/farmlore/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// PassageRetriever finds passages relevant to a query.
type PassageRetriever interface {
	Retrieve(ctx context.Context, query string, opts domain.RetrievalOptions) ([]domain.RetrievedPassage, error)
}

// AnswerConfig holds the answer composition tunables.
type AnswerConfig struct {
	// TopK is the default retrieval depth.
	TopK int

	// ScoreThreshold is the minimum similarity score, inclusive.
	ScoreThreshold float64

	// Temperature and MaxTokens are passed through to generation.
	Temperature float64
	MaxTokens   int
}

// AnswerService composes retrieval, chat history and generation into a
// structured answer with numbered citations.
type AnswerService struct {
	retriever PassageRetriever
	llm       driven.LLMService
	ocr       driven.OCRService
	prompts   driven.PromptStore
	config    AnswerConfig
}

// NewAnswerService creates an answer service.
// The ocr parameter is optional (can be nil); without it image queries
// fail with domain.ErrOCR.
func NewAnswerService(
	retriever PassageRetriever,
	llm driven.LLMService,
	ocr driven.OCRService,
	prompts driven.PromptStore,
	config AnswerConfig,
) *AnswerService {
	if config.TopK <= 0 {
		config.TopK = 5
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 1024
	}
	return &AnswerService{
		retriever: retriever,
		llm:       llm,
		ocr:       ocr,
		prompts:   prompts,
		config:    config,
	}
}

// Query answers a text question, with retrieval when requested.
func (s *AnswerService) Query(ctx context.Context, req driving.QueryRequest) (*domain.Answer, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	passages := s.retrieve(ctx, question, req.UseRAG, req.TopK)

	text, err := s.generate(ctx, question, passages, req.ChatHistory)
	if err != nil {
		return nil, err
	}

	return &domain.Answer{
		Text:    text,
		Sources: sourcesFrom(passages),
	}, nil
}

// ImageQuery answers a question about an image. The OCR text seeds
// retrieval when the user supplied no question of their own, and is
// returned alongside the answer.
func (s *AnswerService) ImageQuery(ctx context.Context, req driving.ImageQueryRequest) (*domain.Answer, error) {
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}
	if s.ocr == nil {
		return nil, fmt.Errorf("%w: no OCR capability configured", domain.ErrOCR)
	}

	ocrText, err := s.ocr.ExtractText(ctx, req.Image)
	if err != nil {
		return nil, fmt.Errorf("extract text from image: %w", err)
	}
	ocrText = strings.TrimSpace(ocrText)
	logger.Debug("OCR extracted %d characters", len(ocrText))

	question := strings.TrimSpace(req.Question)
	if question == "" && ocrText == "" {
		return nil, fmt.Errorf("%w: image contains no readable text and no question was supplied", domain.ErrInvalidInput)
	}

	// The user's own question wins as the retrieval query; OCR text is
	// the fallback when they only sent a picture.
	retrievalQuery := question
	if retrievalQuery == "" {
		retrievalQuery = ocrText
	}
	passages := s.retrieve(ctx, retrievalQuery, req.UseRAG, 0)

	effective := question
	if ocrText != "" {
		tmpl := s.prompt(driven.PromptImageAnswer, defaultImagePrompt)
		effective = fmt.Sprintf(tmpl, ocrText, question)
	}

	text, err := s.generate(ctx, effective, passages, nil)
	if err != nil {
		return nil, err
	}

	return &domain.Answer{
		Text:    text,
		Sources: sourcesFrom(passages),
		OCRText: ocrText,
	}, nil
}

// retrieve runs retrieval and degrades to no passages on capability
// failure. Losing sources is acceptable; losing the answer is not.
func (s *AnswerService) retrieve(ctx context.Context, query string, useRAG bool, topK int) []domain.RetrievedPassage {
	if topK <= 0 {
		topK = s.config.TopK
	}
	passages, err := s.retriever.Retrieve(ctx, query, domain.RetrievalOptions{
		TopK:           topK,
		ScoreThreshold: s.config.ScoreThreshold,
		Enabled:        useRAG,
	})
	if err != nil {
		logger.Warn("Retrieval failed, answering without sources: %v", err)
		return nil
	}
	return passages
}

// generate builds the prompt and calls the generation capability.
func (s *AnswerService) generate(
	ctx context.Context, question string, passages []domain.RetrievedPassage, history []string,
) (string, error) {
	var prompt string
	if len(passages) > 0 {
		tmpl := s.prompt(driven.PromptAnswer, defaultAnswerPrompt)
		prompt = fmt.Sprintf(tmpl, contextBlock(passages), question)
	} else {
		tmpl := s.prompt(driven.PromptAnswerNoContext, defaultNoContextPrompt)
		prompt = fmt.Sprintf(tmpl, question)
	}

	var (
		text string
		err  error
	)
	if len(history) > 0 {
		messages := make([]driven.ChatMessage, 0, len(history)+1)
		for _, turn := range history {
			messages = append(messages, driven.ChatMessage{Role: "user", Content: turn})
		}
		messages = append(messages, driven.ChatMessage{Role: "user", Content: prompt})
		text, err = s.llm.Chat(ctx, messages, driven.ChatOptions{
			MaxTokens:   s.config.MaxTokens,
			Temperature: s.config.Temperature,
		})
	} else {
		text, err = s.llm.Generate(ctx, prompt, driven.GenerateOptions{
			MaxTokens:   s.config.MaxTokens,
			Temperature: s.config.Temperature,
		})
	}
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: model returned an empty answer", domain.ErrGeneration)
	}
	return text, nil
}

// prompt loads a template, falling back to the built-in default when
// the store has nothing for the name.
func (s *AnswerService) prompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	tmpl, err := s.prompts.Load(name)
	if err != nil || strings.TrimSpace(tmpl) == "" {
		return fallback
	}
	return tmpl
}

// contextBlock renders passages as a numbered context listing. The
// numbering matches the order of the answer's Sources field so callers
// can resolve citations.
func contextBlock(passages []domain.RetrievedPassage) string {
	var b strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] %s", i+1, p.Payload.Title)
		if p.Payload.URL != "" {
			fmt.Fprintf(&b, " (%s)", p.Payload.URL)
		}
		b.WriteString("\n")
		b.WriteString(p.Payload.Text)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// sourcesFrom mirrors passages into citation entries, preserving order.
func sourcesFrom(passages []domain.RetrievedPassage) []domain.SourceDocument {
	sources := make([]domain.SourceDocument, len(passages))
	for i, p := range passages {
		sources[i] = domain.SourceDocument{
			Content: p.Payload.Text,
			Title:   p.Payload.Title,
			URL:     p.Payload.URL,
			Source:  p.Payload.Source,
			Score:   p.Score,
		}
	}
	return sources
}

// Built-in prompt templates, used when no prompt store is configured or
// a template file is missing.
const (
	defaultAnswerPrompt = `You are a knowledgeable assistant for pig farming and livestock husbandry.
Answer the question using the numbered reference passages below. Cite passages
by their number, like [1]. If the passages do not cover the question, say so
rather than inventing an answer.

Reference passages:
%s

Question: %s

Answer:`

	defaultNoContextPrompt = `You are a knowledgeable assistant for pig farming and livestock husbandry.
No reference material was found for this question. Answer from general
knowledge, and say clearly when you are unsure.

Question: %s

Answer:`

	defaultImagePrompt = `The following text was read from an image supplied by the user:

%s

User's question: %s

Answer the question, using the text read from the image where relevant.`
)
