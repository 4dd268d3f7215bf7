package config

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains persistence settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains token and credential settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains provider settings. API keys are optional; a provider
// is only registered when its key is configured.
type LLMConfig struct {
	DefaultProvider string `mapstructure:"default_provider" validate:"required,oneof=openai openrouter gemini"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"  validate:"required,gt=0"`

	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	OpenAIModel  string `mapstructure:"openai_model"`

	OpenRouterAPIKey string `mapstructure:"openrouter_api_key"`
	OpenRouterModel  string `mapstructure:"openrouter_model"`

	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`
}
