package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrUnavailable indicates the generator backend is unreachable.
	ErrUnavailable = errors.New("llm backend unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput indicates the LLM response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")
)

// ErrorCode classifies generator failures.
type ErrorCode string

const (
	CodeBadRequest         ErrorCode = "BAD_REQUEST"
	CodeInvalidArgument    ErrorCode = "INVALID_ARGUMENT"
	CodeFailedPrecondition ErrorCode = "FAILED_PRECONDITION"
	CodeOutOfRange         ErrorCode = "OUT_OF_RANGE"
	CodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	CodePermissionDenied   ErrorCode = "PERMISSION_DENIED"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeResourceExhausted  ErrorCode = "RESOURCE_EXHAUSTED"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodeTimeout            ErrorCode = "TIMEOUT"
	CodeServerError        ErrorCode = "SERVER_ERROR"
	CodeInvalidOutput      ErrorCode = "INVALID_OUTPUT"
	CodeCancelled          ErrorCode = "CANCELLED"
)

// Retryable reports whether another attempt may succeed. A malformed or
// hallucinated response is retried because the next sample may differ.
func (c ErrorCode) Retryable() bool {
	switch c {
	case CodeResourceExhausted, CodeServiceUnavailable, CodeTimeout, CodeServerError, CodeInvalidOutput:
		return true
	default:
		return false
	}
}

// GenerateError is a classified generator failure.
type GenerateError struct {
	Code ErrorCode
	Err  error
}

func (e *GenerateError) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *GenerateError) Unwrap() error { return e.Err }

// NewGenerateError wraps err with an explicit code.
func NewGenerateError(code ErrorCode, err error) *GenerateError {
	return &GenerateError{Code: code, Err: err}
}

// ClassifyError maps any error onto the taxonomy. Unrecognised errors are
// server errors.
func ClassifyError(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var ge *GenerateError
	switch {
	case errors.As(err, &ge):
		return ge.Code
	case errors.Is(err, context.Canceled):
		return CodeCancelled
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, ErrInvalidOutput):
		return CodeInvalidOutput
	case errors.Is(err, ErrUnavailable), isConnectionError(err):
		return CodeServiceUnavailable
	default:
		return CodeServerError
	}
}

// CodeForStatus maps an HTTP status code onto the taxonomy.
func CodeForStatus(status int) ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusUnprocessableEntity:
		return CodeInvalidArgument
	case http.StatusUnauthorized:
		return CodeUnauthenticated
	case http.StatusForbidden:
		return CodePermissionDenied
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusPreconditionFailed:
		return CodeFailedPrecondition
	case http.StatusRequestedRangeNotSatisfiable:
		return CodeOutOfRange
	case http.StatusTooManyRequests:
		return CodeResourceExhausted
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return CodeServiceUnavailable
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return CodeTimeout
	}
	if status >= 500 {
		return CodeServerError
	}
	return CodeBadRequest
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
