// Package config loads the immutable application configuration.
//
// Precedence, lowest to highest: built-in defaults, the TOML config
// file, environment variables. The resulting struct is read-only after
// startup; every service receives it (or the slice of it that it
// needs) at construction time.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that decodes from strings like "30s" or
// "24h" in both the TOML file and environment variables.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config holds every tunable the pipeline reads.
type Config struct {
	// LLM is the generation capability endpoint (OpenAI-compatible,
	// which covers vLLM and LM Studio, or Ollama).
	LLM LLMConfig `toml:"llm"`

	// Embedding is the embedding capability endpoint.
	Embedding EmbeddingConfig `toml:"embedding"`

	// Vector is the vector index endpoint.
	Vector VectorConfig `toml:"vector"`

	// OCR is the optional text-from-image sidecar.
	OCR OCRConfig `toml:"ocr"`

	// Pipeline holds the chunking and retrieval tunables.
	Pipeline PipelineConfig `toml:"pipeline"`

	// API is the HTTP server binding.
	API APIConfig `toml:"api"`

	// Crawler holds fetch behaviour shared by all crawler sources.
	Crawler CrawlerConfig `toml:"crawler"`

	// Scheduler controls the periodic crawl task.
	Scheduler SchedulerConfig `toml:"scheduler"`

	// DataDir is where SQLite state lives. Defaults to ~/.farmlore/data.
	DataDir string `toml:"data_dir" env:"FARMLORE_DATA_DIR"`

	// PromptDir holds user-editable prompt templates.
	// Defaults to ~/.farmlore/prompts.
	PromptDir string `toml:"prompt_dir" env:"FARMLORE_PROMPT_DIR"`

	// WatchDir, when set, is watched for dropped text files to ingest.
	WatchDir string `toml:"watch_dir" env:"FARMLORE_WATCH_DIR"`
}

// LLMConfig configures the generation capability.
type LLMConfig struct {
	Provider    string   `toml:"provider" env:"FARMLORE_LLM_PROVIDER"`
	BaseURL     string   `toml:"base_url" env:"FARMLORE_LLM_BASE_URL"`
	Model       string   `toml:"model" env:"FARMLORE_LLM_MODEL"`
	APIKey      string   `toml:"api_key" env:"FARMLORE_LLM_API_KEY"`
	Temperature float64  `toml:"temperature" env:"FARMLORE_LLM_TEMPERATURE"`
	MaxTokens   int      `toml:"max_tokens" env:"FARMLORE_LLM_MAX_TOKENS"`
	Timeout     Duration `toml:"timeout" env:"FARMLORE_LLM_TIMEOUT"`
}

// EmbeddingConfig configures the embedding capability.
type EmbeddingConfig struct {
	Provider   string   `toml:"provider" env:"FARMLORE_EMBED_PROVIDER"`
	BaseURL    string   `toml:"base_url" env:"FARMLORE_EMBED_BASE_URL"`
	Model      string   `toml:"model" env:"FARMLORE_EMBED_MODEL"`
	APIKey     string   `toml:"api_key" env:"FARMLORE_EMBED_API_KEY"`
	Dimensions int      `toml:"dimensions" env:"FARMLORE_EMBED_DIMENSIONS"`
	Timeout    Duration `toml:"timeout" env:"FARMLORE_EMBED_TIMEOUT"`
}

// VectorConfig configures the vector index.
type VectorConfig struct {
	URL        string   `toml:"url" env:"FARMLORE_VECTOR_URL"`
	APIKey     string   `toml:"api_key" env:"FARMLORE_VECTOR_API_KEY"`
	Collection string   `toml:"collection" env:"FARMLORE_VECTOR_COLLECTION"`
	Timeout    Duration `toml:"timeout" env:"FARMLORE_VECTOR_TIMEOUT"`
}

// OCRConfig configures the OCR sidecar. Empty URL disables it.
type OCRConfig struct {
	URL     string   `toml:"url" env:"FARMLORE_OCR_URL"`
	Timeout Duration `toml:"timeout" env:"FARMLORE_OCR_TIMEOUT"`
}

// PipelineConfig holds the correctness-affecting pipeline tunables.
type PipelineConfig struct {
	// ChunkSize is the chunk window in characters.
	ChunkSize int `toml:"chunk_size" env:"FARMLORE_CHUNK_SIZE"`

	// ChunkOverlap is the overlap between adjacent chunks.
	ChunkOverlap int `toml:"chunk_overlap" env:"FARMLORE_CHUNK_OVERLAP"`

	// TopK is the default retrieval depth.
	TopK int `toml:"top_k" env:"FARMLORE_TOP_K"`

	// ScoreThreshold is the minimum similarity score, inclusive.
	ScoreThreshold float64 `toml:"score_threshold" env:"FARMLORE_SCORE_THRESHOLD"`

	// MinDocumentLength rejects near-empty documents at ingestion.
	MinDocumentLength int `toml:"min_document_length" env:"FARMLORE_MIN_DOC_LENGTH"`

	// EmbedWorkers bounds the concurrent embedding calls per document.
	EmbedWorkers int `toml:"embed_workers" env:"FARMLORE_EMBED_WORKERS"`

	// IngestBatchSize bounds the upsert batch, not its semantics.
	IngestBatchSize int `toml:"ingest_batch_size" env:"FARMLORE_INGEST_BATCH_SIZE"`

	// DeleteBeforeReingest deletes a document's existing vectors before
	// re-ingesting, closing the stale-chunk gap at the cost of a
	// window where the document is unsearchable.
	DeleteBeforeReingest bool `toml:"delete_before_reingest" env:"FARMLORE_DELETE_BEFORE_REINGEST"`
}

// APIConfig is the HTTP server binding.
type APIConfig struct {
	Host string `toml:"host" env:"FARMLORE_API_HOST"`
	Port int    `toml:"port" env:"FARMLORE_API_PORT"`
}

// CrawlerConfig holds fetch behaviour shared by all crawler sources.
type CrawlerConfig struct {
	UserAgent  string   `toml:"user_agent" env:"FARMLORE_CRAWLER_USER_AGENT"`
	Timeout    Duration `toml:"timeout" env:"FARMLORE_CRAWLER_TIMEOUT"`
	MaxRetries int      `toml:"max_retries" env:"FARMLORE_CRAWLER_MAX_RETRIES"`

	// RequestsPerSecond is the politeness rate limit per source.
	RequestsPerSecond float64 `toml:"requests_per_second" env:"FARMLORE_CRAWLER_RPS"`

	// Sources lists the sites to crawl. Configured in TOML only.
	Sources []SourceConfig `toml:"sources"`
}

// SourceConfig describes one listing site to crawl.
type SourceConfig struct {
	// Name is the label recorded on documents from this source.
	Name string `toml:"name"`

	// ListURL is the page carrying the article links.
	ListURL string `toml:"list_url"`

	// LinkPattern selects article links, matched against resolved URLs.
	LinkPattern string `toml:"link_pattern"`

	// MaxArticles caps how many articles one run fetches.
	MaxArticles int `toml:"max_articles"`
}

// SchedulerConfig controls the periodic crawl task.
type SchedulerConfig struct {
	Enabled  bool     `toml:"enabled" env:"FARMLORE_SCHEDULER_ENABLED"`
	Interval Duration `toml:"interval" env:"FARMLORE_SCHEDULER_INTERVAL"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:    "openai",
			BaseURL:     "http://localhost:8000/v1",
			Model:       "qwen2.5-7b-instruct",
			APIKey:      "EMPTY",
			Temperature: 0.3,
			MaxTokens:   1024,
			Timeout:     Duration(120 * time.Second),
		},
		Embedding: EmbeddingConfig{
			Provider:   "ollama",
			BaseURL:    "http://localhost:11434",
			Model:      "nomic-embed-text",
			Dimensions: 768,
			Timeout:    Duration(30 * time.Second),
		},
		Vector: VectorConfig{
			URL:        "http://localhost:6333",
			Collection: "farmlore",
			Timeout:    Duration(15 * time.Second),
		},
		OCR: OCRConfig{
			Timeout: Duration(30 * time.Second),
		},
		Pipeline: PipelineConfig{
			ChunkSize:         1000,
			ChunkOverlap:      200,
			TopK:              5,
			ScoreThreshold:    0.35,
			MinDocumentLength: 100,
			EmbedWorkers:      4,
			IngestBatchSize:   100,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Crawler: CrawlerConfig{
			UserAgent:         "farmlore-crawler/1.0",
			Timeout:           Duration(30 * time.Second),
			MaxRetries:        3,
			RequestsPerSecond: 1,
		},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Interval: Duration(24 * time.Hour),
		},
	}
}

// Load builds the configuration from defaults, the TOML file at path
// (skipped when path is empty or the file does not exist) and finally
// environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Pipeline.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.Pipeline.ChunkSize)
	}
	if c.Pipeline.ChunkOverlap < 0 || c.Pipeline.ChunkOverlap >= c.Pipeline.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size), got %d", c.Pipeline.ChunkOverlap)
	}
	if c.Pipeline.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.Pipeline.TopK)
	}
	if c.Pipeline.EmbedWorkers <= 0 {
		return fmt.Errorf("embed_workers must be positive, got %d", c.Pipeline.EmbedWorkers)
	}
	if c.Pipeline.IngestBatchSize <= 0 {
		return fmt.Errorf("ingest_batch_size must be positive, got %d", c.Pipeline.IngestBatchSize)
	}
	return nil
}
