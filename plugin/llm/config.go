package llm

import (
	"errors"
	"time"

	"github.com/sitewizard/sitewizard/internal/profile"
)

// ProviderConfig represents a single provider configuration.
type ProviderConfig struct {
	Provider    string  // openai, deepseek, ollama
	Model       string  // deepseek-chat
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 2048
	Temperature float32 // default: 0.7
}

// Config represents the full gateway configuration.
type Config struct {
	Providers      map[string]*ProviderConfig
	FallbackOrder  []string
	MaxRetries     int           // attempts per provider, default: 2
	AttemptTimeout time.Duration // per-attempt deadline, default: 30s
	MaxConcurrent  int64         // cap on in-flight provider calls, default: 8
}

// NewConfigFromProfile creates gateway config from the runtime profile.
// Only providers with usable credentials are registered; Ollama needs no key.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Providers:      map[string]*ProviderConfig{},
		FallbackOrder:  p.FallbackProviders(),
		MaxRetries:     p.IntakeMaxRetries,
		AttemptTimeout: time.Duration(p.IntakeTimeoutSec) * time.Second,
		MaxConcurrent:  8,
	}

	if p.OpenAIAPIKey != "" {
		cfg.Providers[ProviderOpenAI] = &ProviderConfig{
			Provider:    ProviderOpenAI,
			Model:       p.OpenAIModel,
			APIKey:      p.OpenAIAPIKey,
			BaseURL:     p.OpenAIBaseURL,
			MaxTokens:   2048,
			Temperature: 0.7,
		}
	}
	if p.DeepSeekAPIKey != "" {
		cfg.Providers[ProviderDeepSeek] = &ProviderConfig{
			Provider:    ProviderDeepSeek,
			Model:       p.DeepSeekModel,
			APIKey:      p.DeepSeekAPIKey,
			BaseURL:     p.DeepSeekBaseURL,
			MaxTokens:   2048,
			Temperature: 0.7,
		}
	}
	if p.OllamaBaseURL != "" {
		cfg.Providers[ProviderOllama] = &ProviderConfig{
			Provider:    ProviderOllama,
			Model:       p.OllamaModel,
			BaseURL:     p.OllamaBaseURL,
			MaxTokens:   2048,
			Temperature: 0.7,
		}
	}

	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return errors.New("at least one LLM provider is required")
	}
	for name, pc := range c.Providers {
		if pc.Model == "" {
			return errors.New("model is required for provider " + name)
		}
		if pc.Provider != ProviderOllama && pc.APIKey == "" {
			return errors.New("API key is required for provider " + name)
		}
	}
	return nil
}
