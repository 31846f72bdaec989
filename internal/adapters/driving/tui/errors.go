// Package tui provides an interactive terminal chat interface over the
// answering pipeline. It implements a driving adapter following
// hexagonal architecture principles.
package tui

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("tui: answer service is required")
