// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for whiteprint.
//
// Configuration is layered (later layers win):
//   - Built-in defaults
//   - ~/.whiteprint/config.toml (or the file named by WHITEPRINT_CONFIG)
//   - Environment variables
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"
)

// Provider names accepted in llm.provider.
const (
	ProviderGoogle     = "google_genai"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// Ambiguous verdict policies accepted in gates.ambiguous_policy.
const (
	PolicyAccept = "accept"
	PolicyReject = "reject"
)

// DefaultOutputPath is where the rendered plan is written.
const DefaultOutputPath = "floor_plan.png"

// providerAliases maps accepted spellings onto canonical provider names.
var providerAliases = map[string]string{
	"google_genai": ProviderGoogle,
	"google":       ProviderGoogle,
	"gemini":       ProviderGoogle,
	"openrouter":   ProviderOpenRouter,
	"openai":       ProviderOpenRouter,
	"ollama":       ProviderOllama,
}

// defaultModels is the model used when llm.model is empty.
var defaultModels = map[string]string{
	ProviderGoogle:     "gemini-2.5-flash",
	ProviderOpenRouter: "openai/gpt-4o-mini",
	ProviderOllama:     "qwen2.5:7b",
}

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete whiteprint configuration.
type Config struct {
	LLM    LLMConfig    `toml:"llm" json:"llm"`
	Gates  GatesConfig  `toml:"gates" json:"gates"`
	Output OutputConfig `toml:"output" json:"output"`
	Log    LogConfig    `toml:"log" json:"log"`
}

// LLMConfig selects and tunes the model provider.
type LLMConfig struct {
	// Provider is one of google_genai, openrouter, ollama.
	Provider string `toml:"provider" json:"provider"`

	// Model is the provider-specific model name. Empty picks a per-provider default.
	Model string `toml:"model" json:"model"`

	// Temperature is the sampling temperature, 0.0-2.0.
	Temperature float64 `toml:"temperature" json:"temperature"`

	// TimeoutSecs bounds each model call.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// BaseURL overrides the provider endpoint (Ollama host, OpenAI-compatible gateway).
	BaseURL string `toml:"base_url" json:"base_url"`

	// APIKey authenticates with hosted providers. Usually supplied by environment.
	APIKey string `toml:"api_key" json:"api_key"`
}

// Timeout returns TimeoutSecs as a duration.
func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSecs) * time.Second
}

// NormalizedProvider returns the canonical provider name, or the input
// lower-cased if it is unknown.
func (l LLMConfig) NormalizedProvider() string {
	p := strings.ToLower(strings.TrimSpace(l.Provider))
	if canonical, ok := providerAliases[p]; ok {
		return canonical
	}
	return p
}

// GatesConfig tunes the validation gates.
type GatesConfig struct {
	// AmbiguousPolicy decides replies that are neither accept nor reject:
	// "accept" (continue with a warning) or "reject".
	AmbiguousPolicy string `toml:"ambiguous_policy" json:"ambiguous_policy"`
}

// OutputConfig controls where results are written.
type OutputConfig struct {
	Path string `toml:"path" json:"path"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `toml:"level" json:"level"`

	// File receives JSON logs when set; otherwise console logs go to stderr.
	File string `toml:"file" json:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    ProviderGoogle,
			Temperature: 0.1,
			TimeoutSecs: 120,
		},
		Gates: GatesConfig{
			AmbiguousPolicy: PolicyAccept,
		},
		Output: OutputConfig{
			Path: DefaultOutputPath,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the whiteprint configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".whiteprint"), nil
}

// ConfigPath returns the config file path, honoring WHITEPRINT_CONFIG.
func ConfigPath() (string, error) {
	if p := os.Getenv("WHITEPRINT_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load builds the configuration from defaults, the config file if present,
// and the environment.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		if !errors.Is(statErr, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config: %w", statErr)
		}
		path = ""
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation. An empty path skips the file layer.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// SetDefaults fills empty values that depend on other settings.
func (c *Config) SetDefaults() {
	c.LLM.Provider = c.LLM.NormalizedProvider()
	if c.LLM.Model == "" {
		c.LLM.Model = defaultModels[c.LLM.Provider]
	}
	if c.LLM.TimeoutSecs == 0 {
		c.LLM.TimeoutSecs = Default().LLM.TimeoutSecs
	}
	if c.Gates.AmbiguousPolicy == "" {
		c.Gates.AmbiguousPolicy = PolicyAccept
	}
	c.Gates.AmbiguousPolicy = strings.ToLower(c.Gates.AmbiguousPolicy)
	if c.Output.Path == "" {
		c.Output.Path = DefaultOutputPath
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if _, ok := defaultModels[c.LLM.NormalizedProvider()]; !ok {
		errs = append(errs, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unknown provider '%s', must be one of: google_genai, openrouter, ollama", c.LLM.Provider),
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "llm.temperature",
			Message: fmt.Sprintf("must be between 0 and 2, got %g", c.LLM.Temperature),
		})
	}

	if c.LLM.TimeoutSecs <= 0 || c.LLM.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "llm.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 3600, got %d", c.LLM.TimeoutSecs),
		})
	}

	switch c.Gates.AmbiguousPolicy {
	case PolicyAccept, PolicyReject:
	default:
		errs = append(errs, ValidationError{
			Field:   "gates.ambiguous_policy",
			Message: fmt.Sprintf("invalid policy '%s', must be one of: accept, reject", c.Gates.AmbiguousPolicy),
		})
	}

	if strings.TrimSpace(c.Output.Path) == "" {
		errs = append(errs, ValidationError{Field: "output.path", Message: "must not be empty"})
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s'", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported variables:
//   - LLM_PROVIDER: overrides llm.provider
//   - LLM_MODEL: overrides llm.model
//   - LLM_TEMPERATURE: overrides llm.temperature (float)
//   - LLM_TIMEOUT_SECS: overrides llm.timeout_secs (integer)
//   - LLM_BASE_URL: overrides llm.base_url
//   - OLLAMA_HOST: overrides llm.base_url when the provider is ollama
//   - GOOGLE_API_KEY / GEMINI_API_KEY: api key for google_genai
//   - OPENROUTER_API_KEY: api key for openrouter
//   - WHITEPRINT_OUTPUT: overrides output.path
//   - WHITEPRINT_LOG_LEVEL: overrides log.level
//   - WHITEPRINT_LOG_FILE: overrides log.file
//   - WHITEPRINT_AMBIGUOUS_POLICY: overrides gates.ambiguous_policy
func (c *Config) ApplyEnvOverrides() error {
	var errs ValidateErrors

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if temp := os.Getenv("LLM_TEMPERATURE"); temp != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(temp), 64)
		if err != nil {
			errs = append(errs, ValidationError{Field: "LLM_TEMPERATURE", Message: fmt.Sprintf("not a number: %q", temp)})
		} else {
			c.LLM.Temperature = v
		}
	}

	if timeout := os.Getenv("LLM_TIMEOUT_SECS"); timeout != "" {
		v, err := strconv.Atoi(strings.TrimSpace(timeout))
		if err != nil {
			errs = append(errs, ValidationError{Field: "LLM_TIMEOUT_SECS", Message: fmt.Sprintf("not an integer: %q", timeout)})
		} else {
			c.LLM.TimeoutSecs = v
		}
	}

	if url := os.Getenv("LLM_BASE_URL"); url != "" {
		c.LLM.BaseURL = url
	}

	switch c.LLM.NormalizedProvider() {
	case ProviderGoogle:
		if key := firstEnv("GOOGLE_API_KEY", "GEMINI_API_KEY"); key != "" {
			c.LLM.APIKey = key
		}
	case ProviderOpenRouter:
		if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
			c.LLM.APIKey = key
		}
	case ProviderOllama:
		if host := os.Getenv("OLLAMA_HOST"); host != "" && c.LLM.BaseURL == "" {
			c.LLM.BaseURL = normalizeOllamaHost(host)
		}
	}

	if path := os.Getenv("WHITEPRINT_OUTPUT"); path != "" {
		c.Output.Path = path
	}

	if level := os.Getenv("WHITEPRINT_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}

	if file := os.Getenv("WHITEPRINT_LOG_FILE"); file != "" {
		c.Log.File = file
	}

	if policy := os.Getenv("WHITEPRINT_AMBIGUOUS_POLICY"); policy != "" {
		c.Gates.AmbiguousPolicy = policy
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// normalizeOllamaHost accepts the forms the ollama CLI accepts for
// OLLAMA_HOST ("0.0.0.0:11434", "http://host:port") and returns a URL.
func normalizeOllamaHost(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return host
}

// =============================================================================
// DISPLAY
// =============================================================================

// String returns a JSON rendering of the config with the API key redacted.
func (c *Config) String() string {
	safe := *c
	if safe.LLM.APIKey != "" {
		safe.LLM.APIKey = "[REDACTED]"
	}

	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}
