package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// maxReplyBytes caps how much of an Ollama reply is read.
const maxReplyBytes = 4 << 20

// ollamaClient talks to a local Ollama server over its HTTP API.
type ollamaClient struct {
	cfg      LLMConfig
	http     *http.Client
	observer Observer
}

// NewOllamaClient returns an LLMClient for the Ollama server at cfg.Endpoint.
func NewOllamaClient(cfg LLMConfig, observer Observer) LLMClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	transport := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		IdleConnTimeout: 30 * time.Second,
	}
	return &ollamaClient{cfg: cfg, http: &http.Client{Transport: transport}, observer: observer}
}

// ollamaRequest is the body of POST /api/generate.
type ollamaRequest struct {
	Model   string        `json:"model"`
	System  string        `json:"system,omitempty"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ollamaResponse is the non-streaming reply of POST /api/generate.
type ollamaResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	DoneReason      string `json:"done_reason,omitempty"`
	PromptEvalCount int64  `json:"prompt_eval_count,omitempty"`
	EvalCount       int64  `json:"eval_count,omitempty"`
}

func (c *ollamaClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	temp, maxTokens := c.cfg.sampling(req)
	cl := startCall(ctx, c.cfg, ProviderOllama, c.cfg.Model, req.Task, c.observer)

	reply, err := c.post(cl.ctx, ollamaRequest{
		Model:   c.cfg.Model,
		System:  req.SystemPrompt,
		Prompt:  req.UserPrompt,
		Format:  "json",
		Options: ollamaOptions{Temperature: temp, NumPredict: maxTokens},
	})
	if err != nil {
		return nil, cl.fail(err)
	}
	// A reply cut off at num_predict is almost never valid JSON.
	if reply.DoneReason == "length" {
		return nil, cl.fail(NewGenerateError(CodeInvalidOutput,
			fmt.Errorf("%w: reply truncated after %d tokens", ErrInvalidOutput, reply.EvalCount)))
	}
	return cl.succeed(reply.Response, reply.Model, reply.PromptEvalCount, reply.EvalCount), nil
}

func (c *ollamaClient) post(ctx context.Context, body ollamaRequest) (*ollamaResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, NewGenerateError(CodeBadRequest, fmt.Errorf("encoding ollama request: %w", err))
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, NewGenerateError(CodeBadRequest, fmt.Errorf("building ollama request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading ollama reply: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, NewGenerateError(CodeForStatus(httpResp.StatusCode),
			fmt.Errorf("ollama: status %d: %s", httpResp.StatusCode, bytes.TrimSpace(raw)))
	}

	var reply ollamaResponse
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, NewGenerateError(CodeInvalidOutput, fmt.Errorf("%w: decoding ollama reply: %v", ErrInvalidOutput, err))
	}
	return &reply, nil
}

// Available lists local models to check that the server is up.
func (c *ollamaClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
