package llm

import (
	"os"
	"strconv"
	"time"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskStructure TaskType = "structure"
	TaskChain     TaskType = "chain"
)

// Provider selects the text generation backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled  bool
	LogCalls bool
	Provider Provider
	Endpoint string
	Model    string
	// APIKey authenticates remote providers. Resolved from the environment
	// or the OS keyring by the caller.
	APIKey      string
	TimeoutMs   int
	MaxAttempts int
	RetryBaseMs int
	RetryMaxMs  int
	Tasks       map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig with sensible defaults.
// LLM is disabled by default; the planner then runs on its fallbacks.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:     false,
		LogCalls:    false,
		Provider:    ProviderOllama,
		Endpoint:    "http://localhost:11434",
		Model:       "llama3.2",
		TimeoutMs:   30000,
		MaxAttempts: 4,
		RetryBaseMs: 500,
		RetryMaxMs:  4000,
		Tasks: map[TaskType]TaskConfig{
			TaskStructure: {Temperature: 0.1, MaxTokens: 2048, TimeoutMs: 30000},
			TaskChain:     {Temperature: 0.4, MaxTokens: 4096, TimeoutMs: 45000},
		},
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()

	if v := os.Getenv("DAYPLAN_LLM_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("DAYPLAN_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("DAYPLAN_LLM_PROVIDER"); v != "" {
		switch p := Provider(v); p {
		case ProviderOllama, ProviderAnthropic:
			cfg.Provider = p
		}
	}
	if v := os.Getenv("DAYPLAN_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("DAYPLAN_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	applyPositiveInt(&cfg.TimeoutMs, "DAYPLAN_LLM_TIMEOUT_MS")
	applyPositiveInt(&cfg.MaxAttempts, "DAYPLAN_LLM_MAX_ATTEMPTS")
	applyPositiveInt(&cfg.RetryBaseMs, "DAYPLAN_LLM_RETRY_BASE_MS")
	applyPositiveInt(&cfg.RetryMaxMs, "DAYPLAN_LLM_RETRY_MAX_MS")

	applyTaskTimeoutEnv(&cfg, TaskStructure, "DAYPLAN_LLM_STRUCTURE_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskChain, "DAYPLAN_LLM_CHAIN_TIMEOUT_MS")

	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// RetryPolicy derives the retry layer's policy from the config.
func (c LLMConfig) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: c.MaxAttempts,
		BaseDelay:   time.Duration(c.RetryBaseMs) * time.Millisecond,
		MaxDelay:    time.Duration(c.RetryMaxMs) * time.Millisecond,
	}
}

func applyPositiveInt(dst *int, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		*dst = n
	}
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
