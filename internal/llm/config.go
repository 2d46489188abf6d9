package llm

import (
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "gemini", "openai", "anthropic", "openrouter", "mock"
	Provider string

	Gemini     GeminiConfig
	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout is the maximum duration for a single LLM request
	// (including retries). Default: 60s.
	Timeout time.Duration
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults. Gemini is the
// primary provider: essay grading sends scanned pages as inline images.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values. A key set to the literal string
// "undefined" counts as unset; some deployment tooling writes that value
// through when the variable was never provided.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := envValue("ECONCOACH_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	if k := envValue("ECONCOACH_GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := envValue("ECONCOACH_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	if k := envValue("ECONCOACH_OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if m := envValue("ECONCOACH_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := envValue("ECONCOACH_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	if k := envValue("ECONCOACH_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := envValue("ECONCOACH_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	if k := envValue("ECONCOACH_OPENROUTER_API_KEY"); k != "" {
		cfg.OpenRouter.APIKey = k
	}
	if m := envValue("ECONCOACH_OPENROUTER_MODEL"); m != "" {
		cfg.OpenRouter.Model = m
	}

	return cfg
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic → OpenRouter) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := envValue("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := envValue("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := envValue("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := envValue("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has its required API key set.
// A missing key yields *ErrNotConfigured so callers can surface a
// configuration instruction rather than a generic failure.
func (c Config) Validate() error {
	switch c.Provider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return &ErrNotConfigured{Provider: "gemini"}
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return &ErrNotConfigured{Provider: "openai"}
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return &ErrNotConfigured{Provider: "anthropic"}
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return &ErrNotConfigured{Provider: "openrouter"}
		}
	case "mock":
		// No API key needed.
	default:
		return &ErrNotConfigured{Provider: c.Provider}
	}
	return nil
}

// envValue reads an environment variable, treating the literal string
// "undefined" as unset.
func envValue(name string) string {
	v := os.Getenv(name)
	if v == "undefined" {
		return ""
	}
	return v
}
