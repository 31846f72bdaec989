package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the vector collection",
	Long: `Idempotently creates the vector collection sized to the configured
embedding model. Safe to run against an existing collection.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	if err := services.Ingestor.InitIndex(cmd.Context()); err != nil {
		return fmt.Errorf("init index failed: %w", err)
	}

	cmd.Println("Vector collection ready.")
	return nil
}
