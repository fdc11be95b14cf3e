package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Provider IDs accepted in [backend].provider.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderOllama     = "ollama"
)

type BackendConfig struct {
	Provider  string `toml:"provider"`
	BaseURL   string `toml:"base_url"`
	Model     string `toml:"model"`
	Stream    bool   `toml:"stream"`
	MaxTokens int64  `toml:"max_tokens"`
}

type ConversationConfig struct {
	MaxMessages  int    `toml:"max_messages"`
	SystemPrompt string `toml:"system_prompt,omitempty"`
}

type ToolsConfig struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	WeatherBaseURL string `toml:"weather_base_url"`
	SearchURL      string `toml:"search_url"`
}

type DisplayConfig struct {
	RenderMarkdown bool `toml:"render_markdown"`
}

// Config is built once at startup and handed to every component that needs
// it. Nothing in the program reads configuration from package state.
type Config struct {
	Backend      BackendConfig      `toml:"backend"`
	Conversation ConversationConfig `toml:"conversation"`
	Tools        ToolsConfig        `toml:"tools"`
	Display      DisplayConfig      `toml:"display"`

	Credentials *CredentialStore `toml:"-"`

	configDir string
}

// ConfigDir returns the directory the settings were loaded from.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// APIKey returns the backend credential for the configured provider.
func (c *Config) APIKey() string {
	if c.Credentials == nil {
		return ""
	}
	return c.Credentials.Get(c.Backend.Provider)
}

// SearchAPIKey returns the credential used by the search_web tool.
func (c *Config) SearchAPIKey() string {
	if c.Credentials == nil {
		return ""
	}
	return c.Credentials.Get(CredentialTavily)
}

func (c *Config) applyEnvOverrides() {
	if provider := os.Getenv("AGENTREPL_PROVIDER"); provider != "" {
		c.Backend.Provider = strings.ToLower(provider)
	}
	if model := os.Getenv("AGENTREPL_MODEL"); model != "" {
		c.Backend.Model = model
	}
	if stream := os.Getenv("AGENTREPL_STREAM"); stream != "" {
		if parsed, err := strconv.ParseBool(stream); err == nil {
			c.Backend.Stream = parsed
		}
	}
	// OPENAI_API_BASE only makes sense for the OpenAI-compatible backends.
	if base := os.Getenv("OPENAI_API_BASE"); base != "" && c.Backend.Provider == ProviderOpenAI {
		c.Backend.BaseURL = base
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" && c.Backend.Provider == ProviderOllama {
		c.Backend.BaseURL = host
	}
}

// fillDefaults resolves values that depend on other settings.
func (c *Config) fillDefaults() {
	if c.Backend.Model == "" {
		c.Backend.Model = DefaultModel(c.Backend.Provider)
	}
}

// Validate reports the first setting that would make the agent unusable.
func (c *Config) Validate() error {
	switch c.Backend.Provider {
	case ProviderOpenAI, ProviderOpenRouter, ProviderAnthropic, ProviderOllama:
	default:
		return fmt.Errorf("unknown provider: %q", c.Backend.Provider)
	}
	if c.Backend.Model == "" {
		return fmt.Errorf("backend model cannot be empty")
	}
	if c.Conversation.MaxMessages < 1 {
		return fmt.Errorf("max_messages must be at least 1, got %d", c.Conversation.MaxMessages)
	}
	if c.Tools.TimeoutSeconds <= 0 {
		return fmt.Errorf("tools timeout_seconds must be positive, got %d", c.Tools.TimeoutSeconds)
	}
	return nil
}

func CheckDebug() bool {
	debug := os.Getenv("AGENTREPL_DEBUG")
	return debug == "true" || debug == "1"
}

// Load reads the settings file (AGENTREPL_CONFIG or the platform default),
// applies environment overrides and loads credentials.
func Load() (*Config, error) {
	return LoadFrom(GetSettingsFilePath())
}

// LoadFrom is Load with an explicit settings path. A missing file is not an
// error: the defaults are used as-is.
func LoadFrom(settingsPath string) (*Config, error) {
	cfg := DefaultConfig()

	if FileExists(settingsPath) {
		if err := decodeSettings(settingsPath, cfg); err != nil {
			return nil, err
		}
	}
	cfg.configDir = filepath.Dir(settingsPath)
	cfg.applyEnvOverrides()
	cfg.fillDefaults()

	creds := NewCredentialStore()
	if err := creds.Load(cfg.configDir); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	cfg.Credentials = creds

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", settingsPath, err)
	}

	return cfg, nil
}
