// Command farmlore is the pig farming knowledge assistant. It wires
// the configured adapters into the core services and hands them to the
// command line interface.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	promptfile "github.com/farmlore/farmlore/internal/adapters/driven/config/file"
	ollamaembed "github.com/farmlore/farmlore/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/farmlore/farmlore/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/farmlore/farmlore/internal/adapters/driven/llm/ollama"
	openaillm "github.com/farmlore/farmlore/internal/adapters/driven/llm/openai"
	ocrhttp "github.com/farmlore/farmlore/internal/adapters/driven/ocr/http"
	"github.com/farmlore/farmlore/internal/adapters/driven/storage/sqlite"
	memvec "github.com/farmlore/farmlore/internal/adapters/driven/vector/memory"
	"github.com/farmlore/farmlore/internal/adapters/driven/vector/qdrant"
	"github.com/farmlore/farmlore/internal/adapters/driving/api"
	"github.com/farmlore/farmlore/internal/adapters/driving/cli"
	"github.com/farmlore/farmlore/internal/adapters/driving/watch"
	"github.com/farmlore/farmlore/internal/chunker"
	"github.com/farmlore/farmlore/internal/config"
	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driven"
	"github.com/farmlore/farmlore/internal/core/services"
	"github.com/farmlore/farmlore/internal/crawlers/weblist"
	"github.com/farmlore/farmlore/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A .env file is a convenience for local development; absence is
	// not an error.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetInitialiser(buildServices)

	if err := cli.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// buildServices assembles the adapters and core services from the
// configuration.
func buildServices(configPath string) (*cli.Services, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	llm, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}
	index := buildVectorIndex(cfg)

	var ocr driven.OCRService
	if cfg.OCR.URL != "" {
		service, err := ocrhttp.NewOCRService(ocrhttp.Config{
			BaseURL: cfg.OCR.URL,
			Timeout: cfg.OCR.Timeout.Std(),
		})
		if err != nil {
			return nil, fmt.Errorf("configure ocr: %w", err)
		}
		ocr = service
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	registry := store.DocumentRegistry()

	prompts, err := promptfile.NewPromptStore(cfg.PromptDir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("configure prompts: %w", err)
	}

	splitter := chunker.New(
		chunker.WithChunkSize(cfg.Pipeline.ChunkSize),
		chunker.WithOverlap(cfg.Pipeline.ChunkOverlap),
	)
	ingest := services.NewIngestService(splitter, embedder, index, registry, services.IngestConfig{
		MinDocumentLength:    cfg.Pipeline.MinDocumentLength,
		EmbedWorkers:         cfg.Pipeline.EmbedWorkers,
		BatchSize:            cfg.Pipeline.IngestBatchSize,
		DeleteBeforeReingest: cfg.Pipeline.DeleteBeforeReingest,
	})
	retriever := services.NewRetrieveService(embedder, index)
	answer := services.NewAnswerService(retriever, llm, ocr, prompts, services.AnswerConfig{
		TopK:           cfg.Pipeline.TopK,
		ScoreThreshold: cfg.Pipeline.ScoreThreshold,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
	})

	svc := &cli.Services{
		Answer:   answer,
		Ingestor: ingest,
		Registry: registry,
		APIConfig: api.Config{
			Addr: fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		},
		Close: func() error {
			return errors.Join(index.Close(), store.Close())
		},
	}

	crawlers, err := buildCrawlers(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	if len(crawlers) > 0 {
		crawlService := services.NewCrawlService(crawlers, ingest, registry)
		svc.Crawler = crawlService

		if cfg.Scheduler.Enabled {
			schedulerConfig := domain.SchedulerConfig{
				Enabled: true,
				TaskConfigs: map[string]domain.TaskConfig{
					domain.TaskIDCrawl: {
						Enabled:  true,
						Interval: cfg.Scheduler.Interval.Std(),
					},
				},
			}
			svc.Scheduler = services.NewScheduler(schedulerConfig, store.SchedulerStore(), crawlService)
		}
	}

	if cfg.WatchDir != "" {
		watcher, err := watch.New(ingest, watch.Config{Dir: cfg.WatchDir})
		if err != nil {
			store.Close()
			return nil, err
		}
		svc.Watcher = watcher
	}

	return svc, nil
}

func buildEmbedder(cfg *config.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Timeout:    cfg.Embedding.Timeout.Std(),
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	case "ollama", "":
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Timeout:    cfg.Embedding.Timeout.Std(),
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

func buildLLM(cfg *config.Config) (driven.LLMService, error) {
	switch cfg.LLM.Provider {
	case "openai", "":
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout.Std(),
		}), nil
	case "ollama":
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout.Std(),
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// buildVectorIndex picks the index backend. The in-memory index is for
// development and tests; everything real goes through Qdrant.
func buildVectorIndex(cfg *config.Config) driven.VectorIndex {
	if cfg.Vector.URL == "memory" {
		return memvec.NewVectorIndex()
	}
	return qdrant.NewVectorIndex(qdrant.Config{
		BaseURL:    cfg.Vector.URL,
		APIKey:     cfg.Vector.APIKey,
		Collection: cfg.Vector.Collection,
		Timeout:    cfg.Vector.Timeout.Std(),
	})
}

func buildCrawlers(cfg *config.Config) ([]driven.Crawler, error) {
	crawlerConfig := weblist.Config{
		UserAgent:         cfg.Crawler.UserAgent,
		Timeout:           cfg.Crawler.Timeout.Std(),
		MaxRetries:        cfg.Crawler.MaxRetries,
		RequestsPerSecond: cfg.Crawler.RequestsPerSecond,
	}

	crawlers := make([]driven.Crawler, 0, len(cfg.Crawler.Sources))
	for _, source := range cfg.Crawler.Sources {
		crawler, err := weblist.New(weblist.Source{
			Name:        source.Name,
			ListURL:     source.ListURL,
			LinkPattern: source.LinkPattern,
			MaxArticles: source.MaxArticles,
		}, crawlerConfig)
		if err != nil {
			return nil, fmt.Errorf("configure crawler: %w", err)
		}
		crawlers = append(crawlers, crawler)
	}
	return crawlers, nil
}
