package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/farmlore/farmlore/internal/logger"
)

// Default configuration values.
const (
	DefaultAddr          = ":8000"
	DefaultReadTimeout   = 30 * time.Second
	DefaultWriteTimeout  = 5 * time.Minute
	DefaultMaxImageBytes = 10 << 20
)

// Config holds HTTP server configuration.
type Config struct {
	// Addr is the listen address (default: ":8000").
	Addr string

	// ReadTimeout bounds reading a request (default: 30s).
	ReadTimeout time.Duration

	// WriteTimeout bounds writing a response. Generation can be slow,
	// so the default is generous (default: 5m).
	WriteTimeout time.Duration

	// MaxImageBytes caps uploaded image size (default: 10 MiB).
	MaxImageBytes int64
}

// Server is the HTTP front end for the answering pipeline.
type Server struct {
	ports         *Ports
	maxImageBytes int64
	server        *http.Server
	listener      net.Listener
	errCh         chan error
}

// NewServer creates an HTTP server serving the given ports.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.MaxImageBytes == 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}

	s := &Server{
		ports:         ports,
		maxImageBytes: cfg.MaxImageBytes,
		errCh:         make(chan error, 1),
	}
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

// Handler returns the server's route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("POST /image-query", s.handleImageQuery)
	mux.HandleFunc("POST /ingest", s.handleIngest)
	mux.HandleFunc("POST /init-index", s.handleInitIndex)
	mux.HandleFunc("POST /crawl", s.handleCrawl)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// Start begins listening on the configured address. It returns once
// the listener is open; serve errors surface through Run or Stop.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	s.listener = listener
	logger.Info("API server listening on %s", listener.Addr())

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case s.errCh <- err:
			default:
			}
		}
	}()
	return nil
}

// Addr returns the bound listen address. Useful when Config.Addr
// requested port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Run starts the server and blocks until the context is cancelled or
// the server fails.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-s.errCh:
		return err
	}
}
