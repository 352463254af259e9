package errors

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryConfig defines retry behavior
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

// DefaultRetryConfig returns sensible defaults
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// DatabaseRetryConfig returns retry config tuned for database operations
func DatabaseRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     3 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// RetryableOperation is a function that can be retried
type RetryableOperation func(ctx context.Context) error

// Retryer executes operations with retry logic
type Retryer struct {
	config RetryConfig
}

// NewRetryer creates a retryer with the given config
func NewRetryer(config RetryConfig) *Retryer {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.Multiplier <= 1 {
		config.Multiplier = 2.0
	}
	return &Retryer{config: config}
}

// Execute runs the operation, retrying retryable failures with backoff.
func (r *Retryer) Execute(ctx context.Context, op RetryableOperation) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return NewTimeoutError("CONTEXT_CANCELLED", "operation cancelled", err)
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if !r.shouldRetry(lastErr) || attempt == r.config.MaxAttempts {
			break
		}

		delay := r.calculateDelay(attempt)
		select {
		case <-ctx.Done():
			return NewTimeoutError("CONTEXT_CANCELLED", "operation cancelled during backoff", ctx.Err())
		case <-time.After(delay):
		}
	}

	return r.wrapFinalError(lastErr)
}

// ExecuteWithResult runs an operation returning a value, with the same retry rules.
func ExecuteWithResult[T any](ctx context.Context, r *Retryer, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Execute(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	return result, err
}

func (r *Retryer) shouldRetry(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsRetryable()
	}
	return false
}

func (r *Retryer) calculateDelay(attempt int) time.Duration {
	delay := float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1))
	if max := float64(r.config.MaxDelay); delay > max {
		delay = max
	}
	if r.config.Jitter {
		// +-10% to avoid thundering herds
		jitter := delay * 0.1 * (rand.Float64()*2 - 1)
		delay += jitter
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

func (r *Retryer) wrapFinalError(err error) error {
	if err == nil {
		return nil
	}
	if IsAppError(err) {
		return err
	}
	return WrapError(err, ErrTypeInternal, ErrCodeProcessingError,
		fmt.Sprintf("operation failed after %d attempts", r.config.MaxAttempts))
}
