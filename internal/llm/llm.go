// Package llm wraps the text-generation providers the planner talks to.
package llm

import (
	"context"
	"errors"
	"strings"

	"meal-planner/internal/shared"
)

// ContentResponse is the raw text a provider produced for a prompt.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// ErrEmptyResponse is returned when a provider answers with no text.
var ErrEmptyResponse = errors.New("llm returned an empty response")

// TextGenerator turns a prompt into text.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Closer is implemented by generators holding a connection to release.
type Closer interface {
	Close() error
}

// Empty reports whether the provider returned nothing usable.
func (r ContentResponse) Empty() bool {
	return strings.TrimSpace(r.Content) == ""
}
