package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = anthropic.ModelClaudeSonnet4_5_20250929

// anthropicClient implements LLMClient on the Anthropic Messages API.
type anthropicClient struct {
	cfg      LLMConfig
	inner    anthropic.Client
	model    anthropic.Model
	observer Observer
}

// NewAnthropicClient creates an LLMClient backed by the Anthropic API.
// cfg.Endpoint overrides the API base URL when it is not the Ollama default.
func NewAnthropicClient(cfg LLMConfig, observer Observer) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, NewGenerateError(CodeUnauthenticated, errors.New("anthropic api key is not set"))
	}
	if observer == nil {
		observer = NoopObserver{}
	}

	// Retries belong to the retry layer, not the SDK.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Endpoint != "" && cfg.Endpoint != DefaultConfig().Endpoint {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}

	model := anthropic.Model(cfg.Model)
	if cfg.Model == "" || cfg.Model == DefaultConfig().Model {
		model = defaultAnthropicModel
	}

	return &anthropicClient{
		cfg:      cfg,
		inner:    anthropic.NewClient(opts...),
		model:    model,
		observer: observer,
	}, nil
}

func (c *anthropicClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	temp, maxTokens := c.cfg.sampling(req)
	cl := startCall(ctx, c.cfg, ProviderAnthropic, string(c.model), req.Task, c.observer)

	params := anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temp),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	msg, err := c.inner.Messages.New(cl.ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			err = NewGenerateError(CodeForStatus(apiErr.StatusCode), fmt.Errorf("anthropic: %w", err))
		}
		return nil, cl.fail(err)
	}
	if msg.StopReason == anthropic.StopReasonMaxTokens {
		return nil, cl.fail(NewGenerateError(CodeInvalidOutput,
			fmt.Errorf("%w: reply truncated after %d tokens", ErrInvalidOutput, msg.Usage.OutputTokens)))
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(tb.Text)
		}
	}
	return cl.succeed(text.String(), string(msg.Model), msg.Usage.InputTokens, msg.Usage.OutputTokens), nil
}

// Available reports whether a key is configured. The Messages API has no
// free health endpoint.
func (c *anthropicClient) Available(context.Context) bool {
	return c.cfg.APIKey != ""
}
