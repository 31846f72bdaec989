package driven

import "context"

// OCRService extracts text from images. It is treated as a black box:
// the pipeline only depends on the text coming back.
type OCRService interface {
	// ExtractText reads the text visible in the image. An empty string
	// is a valid result (an image with no readable text), not an
	// error. Capability failures wrap domain.ErrOCR.
	ExtractText(ctx context.Context, image []byte) (string, error)

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
