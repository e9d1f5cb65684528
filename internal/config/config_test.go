// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"LLM_PROVIDER", "LLM_MODEL", "LLM_TEMPERATURE", "LLM_TIMEOUT_SECS", "LLM_BASE_URL",
	"OLLAMA_HOST", "GOOGLE_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY",
	"WHITEPRINT_CONFIG", "WHITEPRINT_OUTPUT", "WHITEPRINT_LOG_LEVEL",
	"WHITEPRINT_LOG_FILE", "WHITEPRINT_AMBIGUOUS_POLICY",
}

// clearEnv blanks every variable the loader reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range envVars {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestLoadFromPath_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromPath("")
	require.NoError(t, err)

	assert.Equal(t, ProviderGoogle, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, 0.1, cfg.LLM.Temperature)
	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout())
	assert.Equal(t, PolicyAccept, cfg.Gates.AmbiguousPolicy)
	assert.Equal(t, "floor_plan.png", cfg.Output.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("WHITEPRINT_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderGoogle, cfg.LLM.Provider)
}

// =============================================================================
// FILE LAYER
// =============================================================================

func TestLoadFromPath_TOML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[llm]
provider = "ollama"
temperature = 0.0
timeout_secs = 300

[gates]
ambiguous_policy = "REJECT"

[output]
path = "out/plan.png"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "qwen2.5:7b", cfg.LLM.Model, "model defaults per provider")
	assert.Equal(t, 0.0, cfg.LLM.Temperature)
	assert.Equal(t, 300, cfg.LLM.TimeoutSecs)
	assert.Equal(t, PolicyReject, cfg.Gates.AmbiguousPolicy)
	assert.Equal(t, "out/plan.png", cfg.Output.Path)
}

func TestLoadFromPath_UnknownKey(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[llm]\nprovder = \"ollama\"\n")

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provder")
}

func TestLoadFromPath_BadSyntax(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[llm\n")

	_, err := LoadFromPath(path)
	require.Error(t, err)
}

// =============================================================================
// ENVIRONMENT LAYER
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "openrouter")
	t.Setenv("LLM_MODEL", "anthropic/claude-3.5-haiku")
	t.Setenv("LLM_TEMPERATURE", "0.4")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-env")
	t.Setenv("GOOGLE_API_KEY", "ignored-for-openrouter")
	t.Setenv("WHITEPRINT_OUTPUT", "custom.png")

	cfg, err := LoadFromPath("")
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenRouter, cfg.LLM.Provider)
	assert.Equal(t, "anthropic/claude-3.5-haiku", cfg.LLM.Model)
	assert.Equal(t, 0.4, cfg.LLM.Temperature)
	assert.Equal(t, "sk-or-env", cfg.LLM.APIKey)
	assert.Equal(t, "custom.png", cfg.Output.Path)
}

func TestApplyEnvOverrides_ProviderAliases(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"gemini", ProviderGoogle},
		{"Google", ProviderGoogle},
		{"openai", ProviderOpenRouter},
		{"OLLAMA", ProviderOllama},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("LLM_PROVIDER", tt.provider)

			cfg, err := LoadFromPath("")
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.LLM.Provider)
		})
	}
}

func TestApplyEnvOverrides_GeminiKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "AIza-gemini")

	cfg, err := LoadFromPath("")
	require.NoError(t, err)
	assert.Equal(t, "AIza-gemini", cfg.LLM.APIKey)
}

func TestApplyEnvOverrides_OllamaHost(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("OLLAMA_HOST", "10.0.0.5:11434")

	cfg, err := LoadFromPath("")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:11434", cfg.LLM.BaseURL)
}

func TestApplyEnvOverrides_BadTemperature(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_TEMPERATURE", "warm")

	_, err := LoadFromPath("")
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "LLM_TEMPERATURE", verrs[0].Field)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown provider", func(c *Config) { c.LLM.Provider = "bedrock" }, "llm.provider"},
		{"temperature too high", func(c *Config) { c.LLM.Temperature = 2.5 }, "llm.temperature"},
		{"negative timeout", func(c *Config) { c.LLM.TimeoutSecs = -1 }, "llm.timeout_secs"},
		{"bad policy", func(c *Config) { c.Gates.AmbiguousPolicy = "maybe" }, "gates.ambiguous_policy"},
		{"empty output", func(c *Config) { c.Output.Path = " " }, "output.path"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.SetDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Validate() = %q, want mention of %s", err, tt.field)
			}
		})
	}
}

func TestString_RedactsAPIKey(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = "AIza-secret"

	out := cfg.String()

	assert.NotContains(t, out, "AIza-secret")
	assert.Contains(t, out, "[REDACTED]")
	assert.Equal(t, "AIza-secret", cfg.LLM.APIKey, "original must not be modified")
}
