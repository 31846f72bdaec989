package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/farmlore/farmlore/internal/core/ports/driving"
)

var (
	ingestTitle  string
	ingestSource string
	ingestURL    string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document into the knowledge base",
	Long: `Reads a document from a file, or from standard input when no file is
given, then chunks, embeds and indexes it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "origin label (defaults to \"manual\")")
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "original document URL")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	var text string
	title := ingestTitle

	if len(args) > 0 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		text = string(content)
		if title == "" {
			base := filepath.Base(args[0])
			title = strings.TrimSuffix(base, filepath.Ext(base))
		}
	} else {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(content)
	}

	count, err := services.Ingestor.Ingest(cmd.Context(), driving.IngestRequest{
		Text:   text,
		Title:  title,
		Source: ingestSource,
		URL:    ingestURL,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %d chunks.\n", count)
	return nil
}
