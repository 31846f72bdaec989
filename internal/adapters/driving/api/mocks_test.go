package api

import (
	"context"
	"sync"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driving"
)

type mockAnswer struct {
	mu           sync.Mutex
	queries      []driving.QueryRequest
	imageQueries []driving.ImageQueryRequest
	answer       *domain.Answer
	err          error
	imageAnswer  *domain.Answer
	imageErr     error
}

func (m *mockAnswer) Query(_ context.Context, req driving.QueryRequest) (*domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{Text: "answer"}, nil
}

func (m *mockAnswer) ImageQuery(_ context.Context, req driving.ImageQueryRequest) (*domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageQueries = append(m.imageQueries, req)
	if m.imageErr != nil {
		return nil, m.imageErr
	}
	if m.imageAnswer != nil {
		return m.imageAnswer, nil
	}
	return &domain.Answer{Text: "image answer", OCRText: "label text"}, nil
}

type mockIngestor struct {
	mu        sync.Mutex
	requests  []driving.IngestRequest
	chunks    int
	err       error
	initCalls int
	initErr   error
}

func (m *mockIngestor) Ingest(_ context.Context, req driving.IngestRequest) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return 0, m.err
	}
	return m.chunks, nil
}

func (m *mockIngestor) IngestDocument(_ context.Context, _ domain.Document) (int, error) {
	return m.chunks, m.err
}

func (m *mockIngestor) InitIndex(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initCalls++
	return m.initErr
}

type mockCrawler struct {
	report *domain.CrawlReport
	err    error
	calls  int
}

func (m *mockCrawler) CrawlAll(_ context.Context) (*domain.CrawlReport, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	return &domain.CrawlReport{}, nil
}

type mockRegistry struct {
	count    int
	countErr error
}

func (m *mockRegistry) Seen(_ context.Context, _ string) (bool, error) { return false, nil }

func (m *mockRegistry) Record(_ context.Context, _ domain.Document, _ int) error { return nil }

func (m *mockRegistry) Count(_ context.Context) (int, error) {
	return m.count, m.countErr
}

func (m *mockRegistry) Close() error { return nil }
