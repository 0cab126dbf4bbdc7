package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// GenerateRequest is one prompt for a planner stage.
type GenerateRequest struct {
	Task         TaskType
	SystemPrompt string
	UserPrompt   string
	Temperature  *float64 // nil uses the task default
	MaxTokens    *int     // nil uses the task default
}

// GenerateResponse is the raw model text for a GenerateRequest.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// LLMClient is a language model backend. Generate makes exactly one attempt
// and fails with a *GenerateError; Retry decides whether to try again.
type LLMClient interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Available reports whether the backend looks usable right now.
	Available(ctx context.Context) bool
}

// NewClient builds the client for cfg.Provider.
func NewClient(cfg LLMConfig, observer Observer) (LLMClient, error) {
	switch cfg.Provider {
	case ProviderOllama, "":
		return NewOllamaClient(cfg, observer), nil
	case ProviderAnthropic:
		return NewAnthropicClient(cfg, observer)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// call is a single Generate invocation: it owns the per-task deadline and
// reports exactly one LLMCallEvent when it ends.
type call struct {
	parent   context.Context
	ctx      context.Context
	cancel   context.CancelFunc
	start    time.Time
	observer Observer
	event    LLMCallEvent
}

func startCall(ctx context.Context, cfg LLMConfig, provider Provider, model string, task TaskType, observer Observer) *call {
	if observer == nil {
		observer = NoopObserver{}
	}
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.TaskTimeout(task))*time.Millisecond)
	return &call{
		parent:   ctx,
		ctx:      callCtx,
		cancel:   cancel,
		start:    time.Now(),
		observer: observer,
		event:    LLMCallEvent{Task: task, Provider: provider, Model: model},
	}
}

func (c *call) elapsed() int64 { return time.Since(c.start).Milliseconds() }

// fail classifies err, reports the failure and returns the error to hand
// back to the caller. The caller's own cancellation is kept distinct from
// the per-task deadline.
func (c *call) fail(err error) *GenerateError {
	defer c.cancel()

	var gerr *GenerateError
	switch {
	case errors.As(err, &gerr):
	case c.parent.Err() != nil:
		gerr = NewGenerateError(CodeCancelled, c.parent.Err())
	case c.ctx.Err() != nil:
		gerr = NewGenerateError(CodeTimeout, ErrTimeout)
	case isConnectionError(err):
		gerr = NewGenerateError(CodeServiceUnavailable, fmt.Errorf("%w: %v", ErrUnavailable, err))
	default:
		gerr = NewGenerateError(ClassifyError(err), err)
	}

	c.event.LatencyMs = c.elapsed()
	c.event.ErrorCode = gerr.Code
	c.observer.OnCallComplete(c.event)
	return gerr
}

// succeed reports a successful call. An empty model keeps the requested one.
func (c *call) succeed(text, model string, inputTokens, outputTokens int64) *GenerateResponse {
	defer c.cancel()

	if model != "" {
		c.event.Model = model
	}
	c.event.LatencyMs = c.elapsed()
	c.event.Success = true
	c.event.InputTokens = inputTokens
	c.event.OutputTokens = outputTokens
	c.observer.OnCallComplete(c.event)
	return &GenerateResponse{Text: text, Model: c.event.Model, LatencyMs: c.event.LatencyMs}
}

// sampling resolves temperature and token limit for req.
func (c LLMConfig) sampling(req GenerateRequest) (float64, int) {
	task := c.Tasks[req.Task]
	temp, maxTokens := task.Temperature, task.MaxTokens
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	return temp, maxTokens
}
