package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driven"
	"github.com/farmlore/farmlore/internal/core/ports/driving"
)

// fakeCrawler replays a fixed set of documents and errors.
type fakeCrawler struct {
	name string
	docs []domain.CrawledDocument
	errs []error
}

func (c *fakeCrawler) Name() string { return c.name }

func (c *fakeCrawler) Crawl(_ context.Context) (<-chan domain.CrawledDocument, <-chan error) {
	docsCh := make(chan domain.CrawledDocument, len(c.docs))
	errsCh := make(chan error, len(c.errs))
	for _, d := range c.docs {
		docsCh <- d
	}
	for _, e := range c.errs {
		errsCh <- e
	}
	close(docsCh)
	close(errsCh)
	return docsCh, errsCh
}

// fakeIngestor records ingested documents without touching an index.
type fakeIngestor struct {
	chunksPerDoc int
	ingestErr    error
	errFor       map[string]error
	ingested     []domain.Document
}

func (f *fakeIngestor) Ingest(_ context.Context, _ driving.IngestRequest) (int, error) {
	return 0, errors.New("not used")
}

func (f *fakeIngestor) IngestDocument(_ context.Context, doc domain.Document) (int, error) {
	if f.ingestErr != nil {
		return 0, f.ingestErr
	}
	if err, ok := f.errFor[doc.URL]; ok {
		return 0, err
	}
	f.ingested = append(f.ingested, doc)
	if f.chunksPerDoc > 0 {
		return f.chunksPerDoc, nil
	}
	return 1, nil
}

func (f *fakeIngestor) InitIndex(_ context.Context) error { return nil }

func crawledDoc(url string) domain.CrawledDocument {
	return domain.CrawledDocument{
		Title: "Article at " + url,
		URL:   url,
		Text:  "Body text for " + url,
	}
}

func TestCrawlAllSkipsKnownDocuments(t *testing.T) {
	knownID := domain.DocumentID("https://example.com/known", "")
	reg := newMockRegistry(knownID)
	ing := &fakeIngestor{chunksPerDoc: 3}
	crawler := &fakeCrawler{name: "testsite", docs: []domain.CrawledDocument{
		crawledDoc("https://example.com/a"),
		crawledDoc("https://example.com/known"),
		crawledDoc("https://example.com/b"),
	}}

	svc := NewCrawlService([]driven.Crawler{crawler}, ing, reg)
	report, err := svc.CrawlAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Ingested)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 6, report.ChunksWritten)
	assert.Len(t, ing.ingested, 2)
	assert.Len(t, report.Outcomes, 3)
}

func TestCrawlAllSetsSourceFromCrawler(t *testing.T) {
	ing := &fakeIngestor{}
	crawler := &fakeCrawler{name: "pigsite", docs: []domain.CrawledDocument{
		crawledDoc("https://example.com/a"),
	}}

	svc := NewCrawlService([]driven.Crawler{crawler}, ing, newMockRegistry())
	_, err := svc.CrawlAll(context.Background())
	require.NoError(t, err)

	require.Len(t, ing.ingested, 1)
	assert.Equal(t, "pigsite", ing.ingested[0].Source)
	assert.Equal(t, domain.DocumentID("https://example.com/a", ""), ing.ingested[0].ID)
}

func TestCrawlAllIsolatesPerDocumentFailures(t *testing.T) {
	ing := &fakeIngestor{errFor: map[string]error{
		"https://example.com/bad": domain.ErrEmbedding,
	}}
	crawler := &fakeCrawler{
		name: "testsite",
		docs: []domain.CrawledDocument{
			crawledDoc("https://example.com/a"),
			crawledDoc("https://example.com/bad"),
			crawledDoc("https://example.com/b"),
		},
		errs: []error{errors.New("fetch timeout on article 4")},
	}

	svc := NewCrawlService([]driven.Crawler{crawler}, ing, newMockRegistry())
	report, err := svc.CrawlAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Ingested)
	assert.Equal(t, 2, report.Failed)
	assert.Len(t, ing.ingested, 2)

	var crawlerErrs int
	for _, o := range report.Outcomes {
		if o.Err != nil && errors.Is(o.Err, domain.ErrCrawlerFailed) {
			crawlerErrs++
		}
	}
	assert.Equal(t, 1, crawlerErrs)
}

func TestCrawlAllRejectsDocumentsWithoutURL(t *testing.T) {
	ing := &fakeIngestor{}
	crawler := &fakeCrawler{name: "testsite", docs: []domain.CrawledDocument{
		{Title: "no url", Text: "body"},
	}}

	svc := NewCrawlService([]driven.Crawler{crawler}, ing, newMockRegistry())
	report, err := svc.CrawlAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Empty(t, ing.ingested)
}

func TestCrawlAllWorksWithoutRegistry(t *testing.T) {
	ing := &fakeIngestor{}
	crawler := &fakeCrawler{name: "testsite", docs: []domain.CrawledDocument{
		crawledDoc("https://example.com/a"),
	}}

	svc := NewCrawlService([]driven.Crawler{crawler}, ing, nil)
	report, err := svc.CrawlAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Ingested)
}

func TestCrawlAllRunsEveryCrawler(t *testing.T) {
	ing := &fakeIngestor{}
	first := &fakeCrawler{name: "one", docs: []domain.CrawledDocument{crawledDoc("https://one.example/a")}}
	second := &fakeCrawler{name: "two", docs: []domain.CrawledDocument{crawledDoc("https://two.example/a")}}

	svc := NewCrawlService([]driven.Crawler{first, second}, ing, newMockRegistry())
	report, err := svc.CrawlAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Ingested)
}

func TestCrawlAllStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ing := &fakeIngestor{}
	crawler := &fakeCrawler{name: "testsite", docs: []domain.CrawledDocument{
		crawledDoc("https://example.com/a"),
	}}

	svc := NewCrawlService([]driven.Crawler{crawler}, ing, newMockRegistry())
	_, err := svc.CrawlAll(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ing.ingested)
}
