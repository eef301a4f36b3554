package generation

import (
	"errors"

	"github.com/KaramelBytes/sitesmith-cli/internal/ai"
)

// Messages surfaced to users.
const (
	CapacityMessage = "The AI service is currently at capacity. Please try again in a few minutes, or contact support to upgrade your API quota."
	EmptyMessage    = "No response received from the generation service"
	FallbackMessage = "An unexpected error occurred. Please try again."
)

// ErrPreviewLimit is returned when a free account has used all its builder
// previews.
var ErrPreviewLimit = errors.New("you've reached the limit of free previews; upgrade to continue generating websites")

// ErrNotConfigured is returned when no runtime is available.
var ErrNotConfigured = errors.New("generation service is not configured; set an API key with 'sitesmith config set api_key <key>'")

// GenerationError is the single error type returned by Service calls.
type GenerationError struct {
	Message string
	// Capacity is set when the service rejected the call for rate or quota
	// reasons.
	Capacity bool
	Err      error
}

func (e *GenerationError) Error() string { return e.Message }

func (e *GenerationError) Unwrap() error { return e.Err }

// wrapError maps a runtime failure to a GenerationError.
func wrapError(err error) error {
	if ai.IsCapacity(err) {
		return &GenerationError{Message: CapacityMessage, Capacity: true, Err: err}
	}
	msg := err.Error()
	if msg == "" {
		msg = FallbackMessage
	}
	return &GenerationError{Message: msg, Err: err}
}
