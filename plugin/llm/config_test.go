package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewizard/sitewizard/internal/profile"
)

func TestNewConfigFromProfile(t *testing.T) {
	p := &profile.Profile{
		IntakeFallbackOrder: "deepseek, openai,,ollama",
		IntakeMaxRetries:    3,
		IntakeTimeoutSec:    20,
		OpenAIAPIKey:        "sk-test",
		OpenAIBaseURL:       "https://api.openai.com/v1",
		OpenAIModel:         "gpt-4o-mini",
		OllamaBaseURL:       "http://localhost:11434/v1",
		OllamaModel:         "llama3.1",
	}

	cfg := NewConfigFromProfile(p)

	// DeepSeek has no key so it is not registered.
	assert.Contains(t, cfg.Providers, ProviderOpenAI)
	assert.Contains(t, cfg.Providers, ProviderOllama)
	assert.NotContains(t, cfg.Providers, ProviderDeepSeek)

	assert.Equal(t, []string{"deepseek", "openai", "ollama"}, cfg.FallbackOrder)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, int64(8), cfg.MaxConcurrent)

	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name:    "no providers",
			cfg:     &Config{Providers: map[string]*ProviderConfig{}},
			wantErr: true,
		},
		{
			name: "missing model",
			cfg: &Config{Providers: map[string]*ProviderConfig{
				ProviderOpenAI: {Provider: ProviderOpenAI, APIKey: "sk-test"},
			}},
			wantErr: true,
		},
		{
			name: "missing api key",
			cfg: &Config{Providers: map[string]*ProviderConfig{
				ProviderDeepSeek: {Provider: ProviderDeepSeek, Model: "deepseek-chat"},
			}},
			wantErr: true,
		},
		{
			name: "ollama needs no key",
			cfg: &Config{Providers: map[string]*ProviderConfig{
				ProviderOllama: {Provider: ProviderOllama, Model: "llama3.1", BaseURL: "http://localhost:11434/v1"},
			}},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
