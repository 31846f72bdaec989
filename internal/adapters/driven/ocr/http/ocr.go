// Package http provides an OCR service adapter backed by an HTTP
// sidecar. The sidecar accepts an image upload and returns the text it
// could read; which OCR engine runs behind it is its own business.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driven"
)

// Ensure OCRService implements the interface.
var _ driven.OCRService = (*OCRService)(nil)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// Config holds configuration for the OCR service.
type Config struct {
	// BaseURL is the OCR sidecar base URL (required).
	BaseURL string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// OCRService extracts text from images via an HTTP sidecar.
type OCRService struct {
	client  *http.Client
	baseURL string
}

// ocrResponse is the sidecar response format.
type ocrResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// NewOCRService creates a new OCR service.
func NewOCRService(cfg Config) (*OCRService, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ocr: base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &OCRService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
	}, nil
}

// ExtractText reads the text visible in the image. An empty result is
// valid: an image with nothing readable in it.
func (s *OCRService) ExtractText(ctx context.Context, image []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", "image")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/ocr", &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrOCR, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", domain.ErrOCR, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrOCR, resp.StatusCode, string(body))
	}

	var ocrResp ocrResponse
	if err := json.Unmarshal(body, &ocrResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", domain.ErrOCR, err)
	}
	if ocrResp.Error != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrOCR, ocrResp.Error)
	}

	return ocrResp.Text, nil
}

// Ping validates the sidecar is reachable.
func (s *OCRService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ocr: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ocr: sidecar returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *OCRService) Close() error {
	return nil
}
