package config

const (
	DefaultMaxMessages    = 20
	DefaultToolTimeout    = 30
	DefaultWeatherBaseURL = "https://weather.cma.cn"
	DefaultSearchURL      = "https://api.tavily.com/search"
)

func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Provider:  ProviderOpenAI,
			Stream:    true,
			MaxTokens: 4096,
		},
		Conversation: ConversationConfig{
			MaxMessages: DefaultMaxMessages,
		},
		Tools: ToolsConfig{
			TimeoutSeconds: DefaultToolTimeout,
			WeatherBaseURL: DefaultWeatherBaseURL,
			SearchURL:      DefaultSearchURL,
		},
	}
}

// DefaultModel returns the model used when settings name a provider but no
// model.
func DefaultModel(providerID string) string {
	switch providerID {
	case ProviderOpenAI:
		return "gpt-3.5-turbo"
	case ProviderOpenRouter:
		return "meta-llama/llama-3.2-90b-instruct"
	case ProviderAnthropic:
		return "claude-sonnet-4-5-20250929"
	case ProviderOllama:
		return "llama3.1:latest"
	default:
		return ""
	}
}

// GenerateSettingsTemplate returns a commented settings file holding the
// defaults. The program never writes it; --print-config prints it.
func GenerateSettingsTemplate() string {
	return `# agentrepl settings
# Location: ~/.config/agentrepl/settings.toml (override with AGENTREPL_CONFIG)
# This file uses TOML format: https://toml.io

[backend]
# openai | openrouter | anthropic | ollama
provider = "openai"
# Leave empty for the provider default. OPENAI_API_BASE overrides this for openai.
base_url = ""
model = "gpt-3.5-turbo"
# Stream responses token by token. Some OpenAI-compatible backends only
# support tool calls without streaming.
stream = true
# Cap on generated tokens, sent to every backend: max_completion_tokens for
# openai, max_tokens for openrouter and anthropic, num_predict for ollama.
# 0 leaves the backend default; anthropic then uses 4096.
max_tokens = 4096

[conversation]
# Messages kept as context for each request
max_messages = 20
system_prompt = ""

[tools]
timeout_seconds = 30
weather_base_url = "https://weather.cma.cn"
search_url = "https://api.tavily.com/search"

[display]
# Render non-streamed answers as terminal markdown
render_markdown = false
`
}
