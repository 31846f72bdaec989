package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl configured sources and ingest new articles",
	Long: `Runs every configured crawler once. Articles already in the knowledge
base are skipped before any embedding work; per-article failures are
reported and never abort the run.`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if services.Crawler == nil {
		return errors.New("no crawlers configured")
	}

	cmd.Println("Crawling configured sources...")

	report, err := services.Crawler.CrawlAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	cmd.Printf("Ingested %d documents (%d chunks), skipped %d, failed %d.\n",
		report.Ingested, report.ChunksWritten, report.Skipped, report.Failed)

	for _, outcome := range report.Outcomes {
		if outcome.Err != nil {
			cmd.Printf("  failed: %s: %v\n", outcome.URL, outcome.Err)
		}
	}
	return nil
}
