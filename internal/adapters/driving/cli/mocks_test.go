package cli

import (
	"context"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driving"
)

type mockAnswerService struct {
	queries []driving.QueryRequest
	answer  *domain.Answer
	err     error
}

func (m *mockAnswerService) Query(_ context.Context, req driving.QueryRequest) (*domain.Answer, error) {
	m.queries = append(m.queries, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{Text: "answer"}, nil
}

func (m *mockAnswerService) ImageQuery(_ context.Context, _ driving.ImageQueryRequest) (*domain.Answer, error) {
	return &domain.Answer{}, nil
}

type mockIngestorService struct {
	requests  []driving.IngestRequest
	chunks    int
	err       error
	initCalls int
	initErr   error
}

func (m *mockIngestorService) Ingest(_ context.Context, req driving.IngestRequest) (int, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return 0, m.err
	}
	return m.chunks, nil
}

func (m *mockIngestorService) IngestDocument(_ context.Context, _ domain.Document) (int, error) {
	return m.chunks, m.err
}

func (m *mockIngestorService) InitIndex(_ context.Context) error {
	m.initCalls++
	return m.initErr
}

type mockCrawlOrchestrator struct {
	report *domain.CrawlReport
	err    error
	calls  int
}

func (m *mockCrawlOrchestrator) CrawlAll(_ context.Context) (*domain.CrawlReport, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	return &domain.CrawlReport{}, nil
}
