package summarizer

import (
	"fmt"
	"time"

	"astro-news/internal/resilience/retry"
)

// Hosted backend defaults.
const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel   = "meta-llama/llama-3.3-8b-instruct:free"
	DefaultClaudeModel       = "claude-3-5-haiku-latest"
	DefaultLocalBaseURL      = "http://localhost:11434/v1"
	DefaultLocalModel        = "qwen2.5:7b-instruct"

	DefaultInputChars    = 2000
	DefaultTemperature   = 0.3
	DefaultTopP          = 0.9
	DefaultHostedTimeout = 30 * time.Second
	DefaultLocalTimeout  = 2 * time.Minute
)

// OpenRouterConfig configures the retrying hosted backend.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Model   string

	// InputChars is the number of leading characters of the article sent.
	InputChars int

	Temperature float32
	TopP        float32

	// Timeout bounds each HTTP attempt.
	Timeout time.Duration

	Retry retry.Policy
}

// DefaultOpenRouterConfig returns the free-tier Llama configuration.
func DefaultOpenRouterConfig(apiKey string) OpenRouterConfig {
	return OpenRouterConfig{
		APIKey:      apiKey,
		BaseURL:     DefaultOpenRouterBaseURL,
		Model:       DefaultOpenRouterModel,
		InputChars:  DefaultInputChars,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		Timeout:     DefaultHostedTimeout,
		Retry:       retry.DefaultPolicy(),
	}
}

// Validate checks the configuration. A missing key wraps ErrMissingCredential.
func (c *OpenRouterConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY: %w", ErrMissingCredential)
	}
	if c.BaseURL == "" || c.Model == "" {
		return fmt.Errorf("base URL and model are required")
	}
	if c.InputChars <= 0 {
		return fmt.Errorf("input chars must be positive, got %d", c.InputChars)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry attempts must be positive, got %d", c.Retry.MaxAttempts)
	}
	return nil
}

// ClaudeConfig configures the non-retrying hosted backend.
type ClaudeConfig struct {
	APIKey      string
	BaseURL     string // empty uses the SDK default
	Model       string
	InputChars  int
	Temperature float64
	Timeout     time.Duration
}

// DefaultClaudeConfig returns the default Claude configuration.
func DefaultClaudeConfig(apiKey string) ClaudeConfig {
	return ClaudeConfig{
		APIKey:      apiKey,
		Model:       DefaultClaudeModel,
		InputChars:  DefaultInputChars,
		Temperature: DefaultTemperature,
		Timeout:     DefaultHostedTimeout,
	}
}

// Validate checks the configuration. A missing key wraps ErrMissingCredential.
func (c *ClaudeConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY: %w", ErrMissingCredential)
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.InputChars <= 0 {
		return fmt.Errorf("input chars must be positive, got %d", c.InputChars)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// LocalConfig configures the local model Generator.
type LocalConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultLocalConfig targets an Ollama server on the default port.
func DefaultLocalConfig() LocalConfig {
	return LocalConfig{
		BaseURL: DefaultLocalBaseURL,
		Model:   DefaultLocalModel,
		Timeout: DefaultLocalTimeout,
	}
}

// Validate checks the configuration.
func (c *LocalConfig) Validate() error {
	if c.BaseURL == "" || c.Model == "" {
		return fmt.Errorf("local model base URL and name are required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}
