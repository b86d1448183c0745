package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where sitewizard stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your sitewizard instance.
	InstanceURL string

	// Intake (conversational profile extraction) configuration
	IntakeProvider      string // SITEWIZARD_INTAKE_PROVIDER (default provider for new sessions)
	IntakeFallbackOrder string // SITEWIZARD_INTAKE_FALLBACK_ORDER (comma separated provider names)
	IntakeMaxRetries    int    // SITEWIZARD_INTAKE_MAX_RETRIES (attempts per provider)
	IntakeTimeoutSec    int    // SITEWIZARD_INTAKE_TIMEOUT (seconds per provider attempt)

	// LLM provider credentials
	OpenAIAPIKey    string // SITEWIZARD_OPENAI_API_KEY
	OpenAIBaseURL   string // SITEWIZARD_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	OpenAIModel     string // SITEWIZARD_OPENAI_MODEL (default: gpt-4o-mini)
	DeepSeekAPIKey  string // SITEWIZARD_DEEPSEEK_API_KEY
	DeepSeekBaseURL string // SITEWIZARD_DEEPSEEK_BASE_URL (default: https://api.deepseek.com)
	DeepSeekModel   string // SITEWIZARD_DEEPSEEK_MODEL (default: deepseek-chat)
	OllamaBaseURL   string // SITEWIZARD_OLLAMA_BASE_URL (default: http://localhost:11434/v1)
	OllamaModel     string // SITEWIZARD_OLLAMA_MODEL (default: llama3.1)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from SITEWIZARD_* environment variables.
// Values already set on the profile (e.g. from flags) take precedence.
func (p *Profile) FromEnv() {
	setIfEmpty := func(dst *string, key, defaultValue string) {
		if *dst == "" {
			*dst = getEnvOrDefault(key, defaultValue)
		}
	}

	setIfEmpty(&p.IntakeProvider, "SITEWIZARD_INTAKE_PROVIDER", "deepseek")
	setIfEmpty(&p.IntakeFallbackOrder, "SITEWIZARD_INTAKE_FALLBACK_ORDER", "deepseek,openai,ollama")
	setIfEmpty(&p.OpenAIAPIKey, "SITEWIZARD_OPENAI_API_KEY", "")
	setIfEmpty(&p.OpenAIBaseURL, "SITEWIZARD_OPENAI_BASE_URL", "https://api.openai.com/v1")
	setIfEmpty(&p.OpenAIModel, "SITEWIZARD_OPENAI_MODEL", "gpt-4o-mini")
	setIfEmpty(&p.DeepSeekAPIKey, "SITEWIZARD_DEEPSEEK_API_KEY", "")
	setIfEmpty(&p.DeepSeekBaseURL, "SITEWIZARD_DEEPSEEK_BASE_URL", "https://api.deepseek.com")
	setIfEmpty(&p.DeepSeekModel, "SITEWIZARD_DEEPSEEK_MODEL", "deepseek-chat")
	setIfEmpty(&p.OllamaBaseURL, "SITEWIZARD_OLLAMA_BASE_URL", "http://localhost:11434/v1")
	setIfEmpty(&p.OllamaModel, "SITEWIZARD_OLLAMA_MODEL", "llama3.1")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "sitewizard")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/sitewizard"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("sitewizard_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.IntakeMaxRetries <= 0 {
		p.IntakeMaxRetries = 2
	}
	if p.IntakeTimeoutSec <= 0 {
		p.IntakeTimeoutSec = 30
	}

	return nil
}

// FallbackProviders returns the configured provider fallback order.
func (p *Profile) FallbackProviders() []string {
	var providers []string
	for _, name := range strings.Split(p.IntakeFallbackOrder, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			providers = append(providers, name)
		}
	}
	return providers
}
