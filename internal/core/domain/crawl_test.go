package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrawlReport_Add(t *testing.T) {
	var report CrawlReport

	report.Add(CrawlOutcome{URL: "a", Ingested: true})
	report.Add(CrawlOutcome{URL: "b", Skipped: true})
	report.Add(CrawlOutcome{URL: "c", Err: errors.New("fetch failed")})
	report.Add(CrawlOutcome{URL: "d", Ingested: true})

	assert.Equal(t, 2, report.Ingested)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Outcomes, 4)
	assert.Equal(t, "a", report.Outcomes[0].URL)
}

func TestSchedulerConfig_GetTaskConfig(t *testing.T) {
	cfg := DefaultSchedulerConfig()

	crawl := cfg.GetTaskConfig(TaskIDCrawl)
	assert.True(t, crawl.Enabled)
	assert.NotZero(t, crawl.Interval)

	unknown := cfg.GetTaskConfig("nope")
	assert.False(t, unknown.Enabled)
	assert.Zero(t, unknown.Interval)
}
