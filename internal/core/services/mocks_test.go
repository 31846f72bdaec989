package services

import (
	"context"
	"sync"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	mu         sync.Mutex
	vector     []float32
	dimensions int
	embedErr   error
	calls      []string
	failAfter  int // fail once this many calls have succeeded; 0 disables
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.failAfter > 0 && len(m.calls) >= m.failAfter {
		return nil, domain.ErrEmbedding
	}
	m.calls = append(m.calls, text)
	if m.vector != nil {
		return m.vector, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int {
	if m.dimensions > 0 {
		return m.dimensions
	}
	return 3
}

func (m *mockEmbedder) ModelName() string { return "mock-embed" }

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	mu          sync.Mutex
	hits        []driven.VectorHit
	searchErr   error
	upsertErr   error
	ensureErr   error
	deleteErr   error
	upserts     [][]driven.VectorRecord
	deleted     []string
	ensuredDims []int
	searchTopK  []int
}

func (m *mockVectorIndex) EnsureCollection(_ context.Context, dimension int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ensureErr != nil {
		return m.ensureErr
	}
	m.ensuredDims = append(m.ensuredDims, dimension)
	return nil
}

func (m *mockVectorIndex) Upsert(_ context.Context, records []driven.VectorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	batch := make([]driven.VectorRecord, len(records))
	copy(batch, records)
	m.upserts = append(m.upserts, batch)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, topK int) ([]driven.VectorHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	m.searchTopK = append(m.searchTopK, topK)
	if topK > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:topK], nil
}

func (m *mockVectorIndex) DeleteByDocument(_ context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, documentID)
	return nil
}

func (m *mockVectorIndex) Close() error { return nil }

func (m *mockVectorIndex) allRecords() []driven.VectorRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []driven.VectorRecord
	for _, batch := range m.upserts {
		all = append(all, batch...)
	}
	return all
}

// mockRegistry implements driven.DocumentRegistry for testing.
type mockRegistry struct {
	mu       sync.Mutex
	known    map[string]int
	seenErr  error
	recorded []string
}

func newMockRegistry(knownIDs ...string) *mockRegistry {
	known := make(map[string]int, len(knownIDs))
	for _, id := range knownIDs {
		known[id] = 1
	}
	return &mockRegistry{known: known}
}

func (m *mockRegistry) Seen(_ context.Context, documentID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seenErr != nil {
		return false, m.seenErr
	}
	_, ok := m.known[documentID]
	return ok, nil
}

func (m *mockRegistry) Record(_ context.Context, doc domain.Document, chunkCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.known[doc.ID] = chunkCount
	m.recorded = append(m.recorded, doc.ID)
	return nil
}

func (m *mockRegistry) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.known), nil
}

func (m *mockRegistry) Close() error { return nil }

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	response     string
	generateErr  error
	prompts      []string
	chatMessages [][]driven.ChatMessage
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	m.prompts = append(m.prompts, prompt)
	return m.response, nil
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	m.chatMessages = append(m.chatMessages, messages)
	return m.response, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

func (m *mockLLM) Ping(_ context.Context) error { return nil }

func (m *mockLLM) Close() error { return nil }

// mockOCR implements driven.OCRService for testing.
type mockOCR struct {
	text       string
	extractErr error
}

func (m *mockOCR) ExtractText(_ context.Context, _ []byte) (string, error) {
	if m.extractErr != nil {
		return "", m.extractErr
	}
	return m.text, nil
}

func (m *mockOCR) Ping(_ context.Context) error { return nil }

func (m *mockOCR) Close() error { return nil }

// mockRetriever implements PassageRetriever for testing.
type mockRetriever struct {
	passages    []domain.RetrievedPassage
	retrieveErr error
	queries     []string
	opts        []domain.RetrievalOptions
}

func (m *mockRetriever) Retrieve(
	_ context.Context, query string, opts domain.RetrievalOptions,
) ([]domain.RetrievedPassage, error) {
	m.queries = append(m.queries, query)
	m.opts = append(m.opts, opts)
	if m.retrieveErr != nil {
		return nil, m.retrieveErr
	}
	if !opts.Enabled {
		return []domain.RetrievedPassage{}, nil
	}
	return m.passages, nil
}

// mockSchedulerStore implements driven.SchedulerStore for testing.
type mockSchedulerStore struct {
	mu      sync.Mutex
	tasks   map[string]*domain.ScheduledTask
	results []domain.TaskResult
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{tasks: make(map[string]*domain.ScheduledTask)}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return nil, nil
	}
	cp := *task
	return &cp, nil
}

func (m *mockSchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *mockSchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, *result)
	return nil
}

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TaskResult
	for i := len(m.results) - 1; i >= 0 && len(out) < limit; i-- {
		if m.results[i].TaskID == taskID {
			out = append(out, m.results[i])
		}
	}
	return out, nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, _ int) error { return nil }

func (m *mockSchedulerStore) resultCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results)
}
