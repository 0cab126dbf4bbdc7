package llm

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy bounds the generic retry layer.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy allows four attempts with doubling backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 4, BaseDelay: 500 * time.Millisecond, MaxDelay: 4 * time.Second}
}

// Delay returns the wait before attempt n+1, where n counts failed attempts.
func (p RetryPolicy) Delay(n int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < n; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Retry runs fn until it succeeds, fails with a non-retryable error, the
// attempts run out or ctx is done. It returns the number of attempts made.
// Exhaustion wraps the last error with ErrRetryExhausted; a non-retryable
// failure comes back as a *GenerateError without further attempts.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context) (T, error)) (T, int, error) {
	var zero T
	attempts := max(1, p.MaxAttempts)

	var lastErr error
	for n := 1; n <= attempts; n++ {
		if err := ctx.Err(); err != nil {
			return zero, n - 1, err
		}

		out, err := fn(ctx)
		if err == nil {
			return out, n, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, n, ctxErr
		}

		code := ClassifyError(err)
		if !code.Retryable() {
			return zero, n, NewGenerateError(code, err)
		}
		lastErr = err
		if n == attempts {
			break
		}

		timer := time.NewTimer(p.Delay(n))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, n, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, attempts, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, attempts, lastErr)
}
