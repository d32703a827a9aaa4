package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/hfdaily/paperlens/internal/model"
)

// Failure classes surfaced by providers and the retry client. Callers
// branch with errors.Is; all three are transient from the pipeline's point
// of view and covered by the retry loop.
var (
	// ErrTransport marks network-level failures (connect, TLS, read).
	ErrTransport = errors.New("assistant transport failure")

	// ErrAPIStatus marks a non-2xx response from the assistant API.
	ErrAPIStatus = errors.New("assistant API status failure")

	// ErrEmptyResponse marks a 2xx response with no usable payload.
	ErrEmptyResponse = errors.New("assistant empty response")
)

// RetryableClient wraps one provider call with bounded retries and a fixed
// inter-attempt delay, shielding pipeline stages from transient failures.
// It enforces no timeout of its own beyond the provider's HTTP client; the
// caller owns any wall-clock ceiling.
type RetryableClient struct {
	provider   Provider
	maxRetries int
	delay      time.Duration
	limiter    *rate.Limiter
}

// NewRetryableClient creates a retry wrapper around the given provider.
// maxRetries <= 0 defaults to 3 attempts, delay <= 0 to 2 s. limiter may be
// nil to disable request pacing.
func NewRetryableClient(provider Provider, maxRetries int, delay time.Duration, limiter *rate.Limiter) *RetryableClient {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if delay <= 0 {
		delay = 2 * time.Second
	}

	return &RetryableClient{
		provider:   provider,
		maxRetries: maxRetries,
		delay:      delay,
		limiter:    limiter,
	}
}

// Provider returns the wrapped provider.
func (c *RetryableClient) Provider() Provider {
	return c.provider
}

// Limiter returns the request pacer, nil when pacing is disabled.
func (c *RetryableClient) Limiter() *rate.Limiter {
	return c.limiter
}

// PacerFromModel builds the per-call rate limiter from configuration.
// A non-positive rate disables pacing.
func PacerFromModel(c model.LLMConfig) *rate.Limiter {
	if c.RequestsPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(c.RequestsPerSecond), 1)
}

// Chat issues one assistant call, retrying transient failures up to the
// configured bound. The last attempt's error is returned after exhaustion.
func (c *RetryableClient) Chat(ctx context.Context, messages []Message) (string, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.delay):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		text, err := c.provider.Chat(ctx, messages)
		if err == nil {
			if text == "" {
				lastErr = fmt.Errorf("%w: attempt %d", ErrEmptyResponse, attempt+1)
				continue
			}
			return text, nil
		}

		lastErr = err

		// Context cancellation is the caller's signal, not a transient
		// provider failure.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
	}

	return "", fmt.Errorf("assistant call failed after %d attempts: %w", c.maxRetries, lastErr)
}
