// Package watch ingests documents dropped into a local folder. Files
// written into the watched directory are read, debounced and handed to
// the ingestion pipeline, so a farm operator can add knowledge by
// copying text files around.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/farmlore/farmlore/internal/core/ports/driving"
	"github.com/farmlore/farmlore/internal/logger"
)

// ErrMissingIngestor is returned when the ingestor is not provided.
var ErrMissingIngestor = errors.New("watch: ingestor is required")

// Default configuration values.
const (
	DefaultSource   = "drop-folder"
	DefaultDebounce = 2 * time.Second
)

// defaultExtensions lists the file types the watcher picks up.
var defaultExtensions = []string{".txt", ".md"}

// Config holds drop-folder watcher configuration.
type Config struct {
	// Dir is the directory to watch.
	Dir string

	// Source is the origin label on ingested documents
	// (default: "drop-folder").
	Source string

	// Debounce is how long a file must stay quiet before it is read.
	// Editors and copies emit bursts of write events (default: 2s).
	Debounce time.Duration

	// Extensions lists accepted file extensions (default: .txt, .md).
	Extensions []string
}

// Watcher feeds dropped files into the ingestion pipeline.
type Watcher struct {
	ingestor   driving.Ingestor
	dir        string
	source     string
	debounce   time.Duration
	extensions map[string]struct{}

	mu      sync.Mutex
	timers  map[string]*time.Timer
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New creates a watcher over the configured directory.
func New(ingestor driving.Ingestor, cfg Config) (*Watcher, error) {
	if ingestor == nil {
		return nil, ErrMissingIngestor
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("watch: directory is required")
	}
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = defaultExtensions
	}

	extensions := make(map[string]struct{}, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extensions[strings.ToLower(ext)] = struct{}{}
	}

	return &Watcher{
		ingestor:   ingestor,
		dir:        cfg.Dir,
		source:     cfg.Source,
		debounce:   cfg.Debounce,
		extensions: extensions,
		timers:     make(map[string]*time.Timer),
	}, nil
}

// Start begins watching. It returns once the watch is registered;
// ingestion happens on a background goroutine until Stop or context
// cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.mu.Lock()
	w.watcher = watcher
	w.done = make(chan struct{})
	w.mu.Unlock()

	logger.Info("Watching %s for dropped documents", w.dir)

	go w.run(ctx, watcher)
	return nil
}

func (w *Watcher) run(ctx context.Context, watcher *fsnotify.Watcher) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.eligible(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// schedule arms or resets the per-file debounce timer.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.ingestFile(ctx, path)
	})
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Read dropped file %s: %v", path, err)
		return
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	count, err := w.ingestor.Ingest(ctx, driving.IngestRequest{
		Text:   string(content),
		Title:  title,
		Source: w.source,
		URL:    fileURL(path),
	})
	if err != nil {
		logger.Warn("Ingest dropped file %s: %v", path, err)
		return
	}
	logger.Info("Ingested dropped file %s (%d chunks)", filepath.Base(path), count)
}

// eligible filters out directories, hidden files and unknown types.
func (w *Watcher) eligible(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return false
	}
	_, ok := w.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// fileURL gives dropped files a stable identity, so overwriting a file
// replaces its chunks instead of appending duplicates.
func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}

// Stop ends the watch and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	watcher := w.watcher
	done := w.done
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	if watcher == nil {
		return nil
	}
	err := watcher.Close()
	if done != nil {
		<-done
	}
	return err
}
