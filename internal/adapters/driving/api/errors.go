// Package api exposes the answering pipeline over HTTP with JSON
// request and response bodies.
package api

import (
	"errors"
	"net/http"

	"github.com/farmlore/farmlore/internal/core/domain"
)

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("api: answer service is required")

// ErrMissingIngestor is returned when the ingestor is not provided.
var ErrMissingIngestor = errors.New("api: ingestor is required")

// statusFor maps domain errors onto HTTP status codes. Capability
// failures behind the API map to 502 because the upstream service,
// not the request, is at fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmbedding),
		errors.Is(err, domain.ErrIndex),
		errors.Is(err, domain.ErrGeneration),
		errors.Is(err, domain.ErrOCR):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
