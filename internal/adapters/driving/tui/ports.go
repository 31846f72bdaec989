package tui

import (
	"github.com/farmlore/farmlore/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the chat
// TUI. This provides a single injection point for dependency injection.
type Ports struct {
	// Answer serves the chat questions.
	Answer driving.AnswerService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
