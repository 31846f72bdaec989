package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/farmlore/farmlore/internal/adapters/driving/api"
	"github.com/farmlore/farmlore/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the HTTP API. The crawl scheduler and the drop-folder watcher
run alongside the server when configured. Stops on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides configuration)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	cfg := services.APIConfig
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	server, err := api.NewServer(&api.Ports{
		Answer:   services.Answer,
		Ingestor: services.Ingestor,
		Crawler:  services.Crawler,
		Registry: services.Registry,
	}, cfg)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if services.Scheduler != nil {
		// Start blocks until Stop, so it runs on its own goroutine.
		go func() {
			if err := services.Scheduler.Start(ctx); err != nil {
				logger.Warn("Scheduler stopped: %v", err)
			}
		}()
		defer func() { _ = services.Scheduler.Stop() }()
	}
	if services.Watcher != nil {
		if err := services.Watcher.Start(ctx); err != nil {
			logger.Warn("Watcher not started: %v", err)
		} else {
			defer func() { _ = services.Watcher.Stop() }()
		}
	}

	return server.Run(ctx)
}
