package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}
}

func TestRetry_SucceedsAfterRetryableFailures(t *testing.T) {
	calls := 0
	out, attempts, err := Retry(context.Background(), fastPolicy(4), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", NewGenerateError(CodeServiceUnavailable, ErrUnavailable)
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, attempts)
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	_, attempts, err := Retry(context.Background(), fastPolicy(4), func(context.Context) (int, error) {
		calls++
		return 0, NewGenerateError(CodePermissionDenied, errors.New("forbidden"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, CodePermissionDenied, ClassifyError(err))
	assert.NotErrorIs(t, err, ErrRetryExhausted)
}

func TestRetry_Exhausted(t *testing.T) {
	calls := 0
	_, attempts, err := Retry(context.Background(), fastPolicy(3), func(context.Context) (int, error) {
		calls++
		return 0, NewGenerateError(CodeResourceExhausted, errors.New("429"))
	})

	assert.ErrorIs(t, err, ErrRetryExhausted)
	assert.Equal(t, CodeResourceExhausted, ClassifyError(err))
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, attempts)
}

func TestRetry_InvalidOutputIsRetried(t *testing.T) {
	calls := 0
	_, _, err := Retry(context.Background(), fastPolicy(2), func(context.Context) (int, error) {
		calls++
		return 0, ErrInvalidOutput
	})

	assert.ErrorIs(t, err, ErrInvalidOutput)
	assert.Equal(t, 2, calls)
}

func TestRetry_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := RetryPolicy{MaxAttempts: 4, BaseDelay: time.Hour, MaxDelay: time.Hour}

	calls := 0
	_, _, err := Retry(ctx, p, func(context.Context) (int, error) {
		calls++
		time.AfterFunc(10*time.Millisecond, cancel)
		return 0, NewGenerateError(CodeTimeout, ErrTimeout)
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetry_ZeroAttemptsStillCallsOnce(t *testing.T) {
	calls := 0
	_, _, err := Retry(context.Background(), RetryPolicy{}, func(context.Context) (int, error) {
		calls++
		return 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_DelayDoublesUpToCap(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, 500*time.Millisecond, p.Delay(1))
	assert.Equal(t, time.Second, p.Delay(2))
	assert.Equal(t, 2*time.Second, p.Delay(3))
	assert.Equal(t, 4*time.Second, p.Delay(4))
	assert.Equal(t, 4*time.Second, p.Delay(9))
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), ClassifyError(nil))
	assert.Equal(t, CodeTimeout, ClassifyError(context.DeadlineExceeded))
	assert.Equal(t, CodeCancelled, ClassifyError(context.Canceled))
	assert.Equal(t, CodeInvalidOutput, ClassifyError(ErrInvalidOutput))
	assert.Equal(t, CodeServiceUnavailable, ClassifyError(ErrUnavailable))
	assert.Equal(t, CodeServerError, ClassifyError(errors.New("boom")))
}

func TestErrorCode_Retryable(t *testing.T) {
	retryable := []ErrorCode{CodeResourceExhausted, CodeServiceUnavailable, CodeTimeout, CodeServerError, CodeInvalidOutput}
	fatal := []ErrorCode{
		CodeBadRequest, CodeInvalidArgument, CodeFailedPrecondition, CodeOutOfRange,
		CodeUnauthenticated, CodePermissionDenied, CodeNotFound, CodeCancelled,
	}
	for _, c := range retryable {
		assert.True(t, c.Retryable(), c)
	}
	for _, c := range fatal {
		assert.False(t, c.Retryable(), c)
	}
}

func TestCodeForStatus(t *testing.T) {
	cases := map[int]ErrorCode{
		http.StatusBadRequest:                   CodeBadRequest,
		http.StatusUnprocessableEntity:          CodeInvalidArgument,
		http.StatusPreconditionFailed:           CodeFailedPrecondition,
		http.StatusRequestedRangeNotSatisfiable: CodeOutOfRange,
		http.StatusConflict:                     CodeBadRequest,
		http.StatusBadGateway:                   CodeServiceUnavailable,
		http.StatusRequestTimeout:               CodeTimeout,
		http.StatusNotImplemented:               CodeServerError,
	}
	for status, want := range cases {
		assert.Equal(t, want, CodeForStatus(status), http.StatusText(status))
	}
}
