package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrUnavailable is returned while the breaker is rejecting calls.
var ErrUnavailable = errors.New("llm provider temporarily unavailable")

// BreakerSettings tunes a BreakerGenerator.
type BreakerSettings struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerSettings returns settings suited to a single LLM provider.
func DefaultBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{
		Name:             name,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

// BreakerGenerator fails fast once the wrapped generator keeps failing.
type BreakerGenerator struct {
	next TextGenerator
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerGenerator wraps next with a circuit breaker.
func NewBreakerGenerator(next TextGenerator, s BreakerSettings, logger *zap.Logger) *BreakerGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("llm circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		// A cancelled caller says nothing about the provider's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerGenerator{next: next, cb: cb}
}

// GenerateContent implements TextGenerator.
func (b *BreakerGenerator) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		resp, err := b.next.GenerateContent(ctx, prompt)
		if err == nil && resp.Empty() {
			return resp, ErrEmptyResponse
		}
		return resp, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return ContentResponse{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return ContentResponse{}, err
	}
	return res.(ContentResponse), nil
}

// State reports the breaker state, for health output.
func (b *BreakerGenerator) State() string {
	return b.cb.State().String()
}

// Close closes the wrapped generator when it holds resources.
func (b *BreakerGenerator) Close() error {
	if c, ok := b.next.(Closer); ok {
		return c.Close()
	}
	return nil
}
