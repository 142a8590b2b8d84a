package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/cineforge/muse/pkg/creative"
)

type Config struct {
	Providers ProvidersConfig `json:"providers"`
	Extractor ExtractorConfig `json:"extractor"`
	Scenes    ScenesConfig    `json:"scenes"`
	Knowledge KnowledgeConfig `json:"knowledge"`
	Engine    EngineConfig    `json:"engine"`
	Gateway   GatewayConfig   `json:"gateway"`
	Logging   LoggingConfig   `json:"logging"`
}

type ProvidersConfig struct {
	Anthropic ProviderConfig `json:"anthropic"`
	OpenAI    ProviderConfig `json:"openai"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key"`
	APIBase string `json:"api_base"`
}

// ExtractorConfig selects the keyword extraction backend. Backend is one of
// "rule", "anthropic" or "openai".
type ExtractorConfig struct {
	Backend string `json:"backend" env:"MUSE_EXTRACTOR_BACKEND"`
	Model   string `json:"model" env:"MUSE_EXTRACTOR_MODEL"`
}

type ScenesConfig struct {
	Enabled bool   `json:"enabled" env:"MUSE_SCENES_ENABLED"`
	Model   string `json:"model" env:"MUSE_SCENES_MODEL"`
}

// KnowledgeConfig optionally points at external corpus files. Empty paths
// fall back to the embedded corpora.
type KnowledgeConfig struct {
	TheoryPath string `json:"theory_path" env:"MUSE_KNOWLEDGE_THEORY_PATH"`
	WorkPath   string `json:"work_path" env:"MUSE_KNOWLEDGE_WORK_PATH"`
}

type EngineConfig struct {
	ProviderWaitMS     int `json:"provider_wait_ms" env:"MUSE_ENGINE_PROVIDER_WAIT_MS"`
	EventHistorySize   int `json:"event_history_size" env:"MUSE_ENGINE_EVENT_HISTORY_SIZE"`
	SessionMaxAgeHours int `json:"session_max_age_hours" env:"MUSE_ENGINE_SESSION_MAX_AGE_HOURS"`
}

type GatewayConfig struct {
	Host string `json:"host" env:"MUSE_GATEWAY_HOST"`
	Port int    `json:"port" env:"MUSE_GATEWAY_PORT"`
}

type LoggingConfig struct {
	Level       string `json:"level" env:"MUSE_LOGGING_LEVEL"`
	FileEnabled bool   `json:"file_enabled" env:"MUSE_LOGGING_FILE_ENABLED"`
	FilePath    string `json:"file_path" env:"MUSE_LOGGING_FILE_PATH"`
	MaxSizeMB   int    `json:"max_size_mb" env:"MUSE_LOGGING_MAX_SIZE_MB"`
}

func DefaultConfig() *Config {
	return &Config{
		Providers: ProvidersConfig{
			Anthropic: ProviderConfig{},
			OpenAI:    ProviderConfig{},
		},
		Extractor: ExtractorConfig{
			Backend: "rule",
			Model:   "claude-3-haiku-20240307",
		},
		Scenes: ScenesConfig{
			Enabled: false,
			Model:   "claude-3-5-haiku-20241022",
		},
		Engine: EngineConfig{
			ProviderWaitMS:     300,
			EventHistorySize:   100,
			SessionMaxAgeHours: 24,
		},
		Gateway: GatewayConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Logging: LoggingConfig{
			Level:       "info",
			FileEnabled: false,
			FilePath:    "~/.muse/muse.log",
			MaxSizeMB:   50,
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		// Running without a config file is fine; env still applies.
	default:
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	applyProviderEnvOverrides(cfg)
	resolveProviderEnvRefs(cfg)

	return cfg, nil
}

// Validate rejects configurations where an LLM feature is switched on
// without the credentials it needs.
func (c *Config) Validate() error {
	switch c.Extractor.Backend {
	case "rule":
	case "anthropic":
		if c.Providers.Anthropic.APIKey == "" {
			return &creative.ConfigurationError{
				Field:  "providers.anthropic.api_key",
				Reason: "extractor backend is anthropic but no API key is set",
			}
		}
	case "openai":
		if c.Providers.OpenAI.APIKey == "" {
			return &creative.ConfigurationError{
				Field:  "providers.openai.api_key",
				Reason: "extractor backend is openai but no API key is set",
			}
		}
	default:
		return &creative.ConfigurationError{
			Field:  "extractor.backend",
			Reason: "must be one of rule, anthropic, openai",
		}
	}

	if c.Scenes.Enabled && c.Providers.Anthropic.APIKey == "" {
		return &creative.ConfigurationError{
			Field:  "providers.anthropic.api_key",
			Reason: "scene generation is enabled but no API key is set",
		}
	}
	return nil
}

func applyProviderEnvOverrides(cfg *Config) {
	type providerEnvBinding struct {
		target *ProviderConfig
		apiKey string
	}
	bindings := []providerEnvBinding{
		{target: &cfg.Providers.Anthropic, apiKey: "MUSE_PROVIDERS_ANTHROPIC_API_KEY"},
		{target: &cfg.Providers.OpenAI, apiKey: "MUSE_PROVIDERS_OPENAI_API_KEY"},
	}

	for _, b := range bindings {
		if v := strings.TrimSpace(os.Getenv(b.apiKey)); v != "" {
			b.target.APIKey = v
		}
	}
}

func resolveProviderEnvRefs(cfg *Config) {
	providers := []*ProviderConfig{
		&cfg.Providers.Anthropic,
		&cfg.Providers.OpenAI,
	}
	for _, p := range providers {
		p.APIKey = resolveEnvRef(p.APIKey)
		p.APIBase = resolveEnvRef(p.APIBase)
	}
}

func resolveEnvRef(v string) string {
	s := strings.TrimSpace(v)
	if s == "" {
		return v
	}
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		key := strings.TrimSpace(s[2 : len(s)-1])
		if key == "" {
			return v
		}
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return v
	}
	if strings.HasPrefix(s, "$") && len(s) > 1 {
		key := strings.TrimSpace(s[1:])
		if key == "" {
			return v
		}
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
	}
	return v
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LogFilePath expands a leading ~ in the configured log path.
func (c *Config) LogFilePath() string {
	return expandHome(c.Logging.FilePath)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
