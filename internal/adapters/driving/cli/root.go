// Package cli implements the farmlore command line interface. It is a
// driving adapter: commands translate flags and arguments into calls
// on the core service ports.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/farmlore/farmlore/internal/adapters/driving/api"
	"github.com/farmlore/farmlore/internal/core/ports/driven"
	"github.com/farmlore/farmlore/internal/core/ports/driving"
	"github.com/farmlore/farmlore/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// BackgroundTask is a long-running component started alongside the
// server, such as the crawl scheduler or the drop-folder watcher.
type BackgroundTask interface {
	Start(ctx context.Context) error
	Stop() error
}

// Services bundles everything the commands can drive. Optional fields
// may be nil; commands that need them report it.
type Services struct {
	// Answer serves questions.
	Answer driving.AnswerService

	// Ingestor handles document submission and index setup.
	Ingestor driving.Ingestor

	// Crawler triggers crawl-and-ingest runs. Optional.
	Crawler driving.CrawlOrchestrator

	// Registry supplies document counts. Optional.
	Registry driven.DocumentRegistry

	// Scheduler runs periodic crawls while serving. Optional.
	Scheduler BackgroundTask

	// Watcher ingests dropped files while serving. Optional.
	Watcher BackgroundTask

	// APIConfig configures the HTTP server for the serve command.
	APIConfig api.Config

	// Close releases held resources after a command finishes. Optional.
	Close func() error
}

var (
	cfgPath     string
	verboseFlag bool
	services    *Services
	initialiser func(configPath string) (*Services, error)
)

var rootCmd = &cobra.Command{
	Use:   "farmlore",
	Short: "Pig farming knowledge assistant",
	Long: `Farmlore answers pig farming questions from a curated knowledge
base. Documents are crawled or submitted manually, chunked, embedded
and indexed; questions are answered by a language model grounded in
the retrieved passages.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging to stderr")
}

// SetInitialiser registers the function that builds the services from
// the configuration file. It runs lazily, on the first command that
// needs services.
func SetInitialiser(fn func(configPath string) (*Services, error)) {
	initialiser = fn
}

// SetServices injects already-built services, bypassing the
// initialiser. Used by tests.
func SetServices(svc *Services) {
	services = svc
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// ensureServices builds the services on first use.
func ensureServices() error {
	if services != nil {
		return nil
	}
	if initialiser == nil {
		return errors.New("services not configured")
	}
	svc, err := initialiser(cfgPath)
	if err != nil {
		return fmt.Errorf("initialise services: %w", err)
	}
	services = svc
	return nil
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if services != nil && services.Close != nil {
			_ = services.Close()
		}
	}()
	return rootCmd.Execute()
}
