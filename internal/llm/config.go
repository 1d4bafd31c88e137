package llm

import (
	"fmt"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds LLM provider configuration. It is filled by the config
// package from the config file, EXAMIZ_* variables and flags.
type Config struct {
	// Provider selects which LLM provider to use. Empty means discover
	// from the standard API key variables.
	Provider string

	Anthropic  ProviderConfig
	OpenAI     ProviderConfig
	Gemini     ProviderConfig
	OpenRouter ProviderConfig
	Retry      RetryConfig

	// Timeout bounds a single Generate call including retries. Zero means
	// no bound; the exam screen lets the learner abandon a slow request.
	Timeout time.Duration
}

// ProviderConfig holds the credentials and model for one provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, OpenAI-compatible endpoints only
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with default models and retry policy.
func DefaultConfig() Config {
	return Config{
		Anthropic:  ProviderConfig{Model: "claude-haiku"},
		OpenAI:     ProviderConfig{Model: "gpt-4o-mini"},
		Gemini:     ProviderConfig{Model: "gemini-flash"},
		OpenRouter: ProviderConfig{Model: "google/gemini-2.0-flash-001", BaseURL: defaultOpenRouterBaseURL},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// discoveryOrder lists the standard key variables probed by Discover.
var discoveryOrder = []struct {
	env      string
	provider string
}{
	{"GEMINI_API_KEY", ProviderGemini},
	{"OPENAI_API_KEY", ProviderOpenAI},
	{"ANTHROPIC_API_KEY", ProviderAnthropic},
	{"OPENROUTER_API_KEY", ProviderOpenRouter},
}

// Discover fills missing API keys from the standard variables and, when no
// provider is selected, picks the first one with a key. It reports whether
// a provider is selected afterwards.
func (c *Config) Discover(lookup func(string) string) bool {
	for _, d := range discoveryOrder {
		k := lookup(d.env)
		if k == "" {
			continue
		}
		pc := c.For(d.provider)
		if pc.APIKey == "" {
			pc.APIKey = k
		}
		if c.Provider == "" {
			c.Provider = d.provider
		}
	}
	return c.Provider != ""
}

// Selected returns the configuration of the selected provider.
func (c *Config) Selected() *ProviderConfig {
	return c.For(c.Provider)
}

// For returns the configuration of the named provider. Unknown names get a
// detached empty value.
func (c *Config) For(name string) *ProviderConfig {
	switch name {
	case ProviderAnthropic:
		return &c.Anthropic
	case ProviderOpenAI:
		return &c.OpenAI
	case ProviderGemini:
		return &c.Gemini
	case ProviderOpenRouter:
		return &c.OpenRouter
	}
	return &ProviderConfig{}
}

// Validate checks that the selected provider has its API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter:
		if c.Selected().APIKey == "" {
			return fmt.Errorf("an API key is required for the %s provider (set llm.%s.api_key or EXAMIZ_LLM_%s_API_KEY)",
				c.Provider, c.Provider, strings.ToUpper(c.Provider))
		}
	case ProviderMock:
	case "":
		return fmt.Errorf("no LLM provider configured")
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
