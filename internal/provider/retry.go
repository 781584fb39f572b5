package provider

import (
	"context"
	"time"
)

// RetryConfig controls retry behavior for backend calls
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts before giving up
	MaxAttempts int

	// InitialBackoff is the delay before the first retry
	InitialBackoff time.Duration

	// MaxBackoff is the maximum delay between retries
	MaxBackoff time.Duration

	// BackoffMultiply is the factor to multiply backoff by after each attempt
	BackoffMultiply float64
}

// DefaultRetryConfig provides sensible defaults for LLM backends
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialBackoff:  1 * time.Second,
	MaxBackoff:      30 * time.Second,
	BackoffMultiply: 2.0,
}

// Retrying wraps a Provider with exponential-backoff retries. It retries on
// ANY backend error - the assumption is that LLM failures are transient
// (network, rate limits, etc.). The orchestration layer above never retries;
// this is the capability-interface side of that contract.
type Retrying struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry wraps the provider with the given retry configuration
func WithRetry(inner Provider, cfg RetryConfig) *Retrying {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Retrying{inner: inner, cfg: cfg}
}

// Generate calls the wrapped provider, backing off between failed attempts
func (r *Retrying) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	var lastErr error
	backoff := r.cfg.InitialBackoff

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		out, err := r.inner.Generate(ctx, prompt, opts)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if attempt < r.cfg.MaxAttempts {
			select {
			case <-ctx.Done():
				return "", &BackendError{Backend: r.inner.Name(), Op: "retry", Err: ctx.Err()}
			case <-time.After(backoff):
			}

			backoff = time.Duration(float64(backoff) * r.cfg.BackoffMultiply)
			if backoff > r.cfg.MaxBackoff {
				backoff = r.cfg.MaxBackoff
			}
		}
	}

	return "", lastErr
}

// Name returns the wrapped provider's type
func (r *Retrying) Name() Type {
	return r.inner.Name()
}
