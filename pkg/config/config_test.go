package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cineforge/muse/pkg/creative"
)

// TestDefaultConfig_Extractor verifies the rule backend is the default so a
// keyless install works out of the box
func TestDefaultConfig_Extractor(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Extractor.Backend != "rule" {
		t.Errorf("Expected rule backend by default, got %q", cfg.Extractor.Backend)
	}
	if cfg.Extractor.Model == "" {
		t.Error("Extractor model should have default value")
	}
}

// TestDefaultConfig_Scenes verifies scene generation is off by default
func TestDefaultConfig_Scenes(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scenes.Enabled {
		t.Error("Scenes should be disabled by default")
	}
}

// TestDefaultConfig_Gateway verifies gateway defaults
func TestDefaultConfig_Gateway(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Gateway.Host != "0.0.0.0" {
		t.Error("Gateway host should have default value")
	}
	if cfg.Gateway.Port == 0 {
		t.Error("Gateway port should have default value")
	}
}

// TestDefaultConfig_Providers verifies provider keys start empty
func TestDefaultConfig_Providers(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Providers.Anthropic.APIKey != "" {
		t.Error("Anthropic API key should be empty by default")
	}
	if cfg.Providers.OpenAI.APIKey != "" {
		t.Error("OpenAI API key should be empty by default")
	}
}

// TestDefaultConfig_Engine verifies engine timing defaults
func TestDefaultConfig_Engine(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Engine.ProviderWaitMS == 0 {
		t.Error("ProviderWaitMS should have default value")
	}
	if cfg.Engine.EventHistorySize == 0 {
		t.Error("EventHistorySize should have default value")
	}
	if cfg.Engine.SessionMaxAgeHours == 0 {
		t.Error("SessionMaxAgeHours should have default value")
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestValidateRejectsLLMBackendWithoutKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extractor.Backend = "anthropic"

	err := cfg.Validate()
	var cerr *creative.ConfigurationError
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}

	cfg.Providers.Anthropic.APIKey = "sk-ant-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config once key set, got %v", err)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extractor.Backend = "gemini"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown backend")
	}
}

func TestValidateRejectsScenesWithoutKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scenes.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for scenes without key")
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Extractor.Backend != "rule" {
		t.Fatalf("expected default backend, got %q", cfg.Extractor.Backend)
	}
}

func TestLoadConfigMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"extractor": {"backend": "openai"}, "gateway": {"port": 9001}}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Extractor.Backend != "openai" {
		t.Fatalf("expected backend from file, got %q", cfg.Extractor.Backend)
	}
	if cfg.Gateway.Port != 9001 {
		t.Fatalf("expected port from file, got %d", cfg.Gateway.Port)
	}
	if cfg.Engine.ProviderWaitMS != 300 {
		t.Fatalf("expected untouched default, got %d", cfg.Engine.ProviderWaitMS)
	}
}

func TestApplyProviderEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("MUSE_PROVIDERS_OPENAI_API_KEY", "openai-env-key")
	t.Setenv("MUSE_PROVIDERS_ANTHROPIC_API_KEY", "anthropic-env-key")

	applyProviderEnvOverrides(cfg)

	if cfg.Providers.OpenAI.APIKey != "openai-env-key" {
		t.Fatalf("OpenAI API key not overridden from env")
	}
	if cfg.Providers.Anthropic.APIKey != "anthropic-env-key" {
		t.Fatalf("Anthropic API key not overridden from env")
	}
}

func TestResolveProviderEnvRefs(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("MY_ANTHROPIC_KEY", "ref-resolved-key")
	cfg.Providers.Anthropic.APIKey = "${MY_ANTHROPIC_KEY}"

	resolveProviderEnvRefs(cfg)

	if cfg.Providers.Anthropic.APIKey != "ref-resolved-key" {
		t.Fatalf("expected env ref to resolve, got %q", cfg.Providers.Anthropic.APIKey)
	}
}

func TestResolveEnvRefKeepsOriginalWhenUnset(t *testing.T) {
	_ = os.Unsetenv("MUSE_TEST_UNSET_REF")
	raw := "${MUSE_TEST_UNSET_REF}"
	if got := resolveEnvRef(raw); got != raw {
		t.Fatalf("expected unresolved ref to stay unchanged, got %q", got)
	}
}
