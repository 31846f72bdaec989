package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Pipeline.ChunkSize)
	assert.Equal(t, 200, cfg.Pipeline.ChunkOverlap)
	assert.Equal(t, 5, cfg.Pipeline.TopK)
	assert.Equal(t, 0.35, cfg.Pipeline.ScoreThreshold)
	assert.Equal(t, "farmlore", cfg.Vector.Collection)
	assert.Equal(t, 768, cfg.Embedding.Dimensions)
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Pipeline.ChunkSize)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[pipeline]
chunk_size = 500
chunk_overlap = 50
score_threshold = 0.5

[vector]
collection = "pigs"

[scheduler]
enabled = true
interval = "1h"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Pipeline.ChunkSize)
	assert.Equal(t, 50, cfg.Pipeline.ChunkOverlap)
	assert.Equal(t, 0.5, cfg.Pipeline.ScoreThreshold)
	assert.Equal(t, "pigs", cfg.Vector.Collection)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, time.Hour, cfg.Scheduler.Interval.Std())

	// Untouched sections keep their defaults.
	assert.Equal(t, 5, cfg.Pipeline.TopK)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[pipeline]\ntop_k = 3\n"), 0o644))

	t.Setenv("FARMLORE_TOP_K", "10")
	t.Setenv("FARMLORE_VECTOR_URL", "http://qdrant:6333")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Pipeline.TopK)
	assert.Equal(t, "http://qdrant:6333", cfg.Vector.URL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero chunk size", map[string]string{"FARMLORE_CHUNK_SIZE": "0"}},
		{"overlap not below chunk size", map[string]string{
			"FARMLORE_CHUNK_SIZE":    "100",
			"FARMLORE_CHUNK_OVERLAP": "100",
		}},
		{"negative overlap", map[string]string{"FARMLORE_CHUNK_OVERLAP": "-1"}},
		{"zero top k", map[string]string{"FARMLORE_TOP_K": "0"}},
		{"zero workers", map[string]string{"FARMLORE_EMBED_WORKERS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadParsesDurationStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[llm]
timeout = "90s"

[crawler]
timeout = "45s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("FARMLORE_SCHEDULER_INTERVAL", "6h")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout.Std())
	assert.Equal(t, 45*time.Second, cfg.Crawler.Timeout.Std())
	assert.Equal(t, 6*time.Hour, cfg.Scheduler.Interval.Std())

	// Untouched durations keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Vector.Timeout.Std())
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scheduler]\ninterval = \"soon\"\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadCrawlerSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[[crawler.sources]]
name = "farm-news"
list_url = "https://example.com/news"
link_pattern = "/articles/"
max_articles = 20

[[crawler.sources]]
name = "extension-service"
list_url = "https://example.org/bulletins"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Crawler.Sources, 2)
	assert.Equal(t, "farm-news", cfg.Crawler.Sources[0].Name)
	assert.Equal(t, "https://example.com/news", cfg.Crawler.Sources[0].ListURL)
	assert.Equal(t, "/articles/", cfg.Crawler.Sources[0].LinkPattern)
	assert.Equal(t, 20, cfg.Crawler.Sources[0].MaxArticles)
	assert.Equal(t, "extension-service", cfg.Crawler.Sources[1].Name)
	assert.Zero(t, cfg.Crawler.Sources[1].MaxArticles)
}
