package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config.yaml in the working
// directory and from CARDGEN_-prefixed environment variables, which take
// precedence. The result is validated before being returned.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CARDGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars may carry everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	// Keys without a meaningful default still need registering so that
	// AutomaticEnv picks them up during Unmarshal.
	v.SetDefault("database.url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("llm.openrouter_api_key", "")
	v.SetDefault("llm.gemini_api_key", "")

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080) // 7 days

	v.SetDefault("llm.default_provider", "openai")
	v.SetDefault("llm.timeout_seconds", 30)
	v.SetDefault("llm.openai_model", "gpt-4o-mini")
	v.SetDefault("llm.openrouter_model", "google/gemini-2.5-pro")
	v.SetDefault("llm.gemini_model", "gemini-2.0-flash")
}
