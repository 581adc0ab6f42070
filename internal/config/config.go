// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	GatewayBaseURL   string `mapstructure:"GATEWAY_BASE_URL"`
	GatewayTimeout   int    `mapstructure:"GATEWAY_TIMEOUT_SECONDS"`
	PageSize         int    `mapstructure:"PAGE_SIZE"`
	SessionBackend   string `mapstructure:"SESSION_BACKEND"`
	SessionFilePath  string `mapstructure:"SESSION_FILE_PATH"`
	RedisURL         string `mapstructure:"REDIS_URL"`
	Env              string `mapstructure:"APP_ENV"`
	TracingEnabled   bool   `mapstructure:"TRACING_ENABLED"`
	TracingExporter  string `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint     string `mapstructure:"OTLP_ENDPOINT"`
	StubPort         string `mapstructure:"STUB_PORT"`
	StubDBDriver     string `mapstructure:"STUB_DB_DRIVER"`
	StubDBDSN        string `mapstructure:"STUB_DB_DSN"`
	StubJWTSecret    string `mapstructure:"STUB_JWT_SECRET"`
	StubSeedDatabase bool   `mapstructure:"STUB_SEED_DATABASE"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; environment variables and defaults suffice.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	viper.SetDefault("GATEWAY_BASE_URL", "http://localhost:8460")
	viper.SetDefault("GATEWAY_TIMEOUT_SECONDS", 30)
	viper.SetDefault("PAGE_SIZE", 10)
	viper.SetDefault("SESSION_BACKEND", "file")
	viper.SetDefault("SESSION_FILE_PATH", ".votecast-session")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("STUB_PORT", "8460")
	viper.SetDefault("STUB_DB_DRIVER", "sqlite")
	viper.SetDefault("STUB_DB_DSN", "file:votecast-stub.db")
	viper.SetDefault("STUB_JWT_SECRET", "stub-secret-not-for-production")
	viper.SetDefault("STUB_SEED_DATABASE", true)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present.
func (c *Config) Validate() error {
	if c.GatewayBaseURL == "" {
		return errors.New("GATEWAY_BASE_URL is required")
	}
	if c.PageSize <= 0 {
		return errors.New("PAGE_SIZE must be positive")
	}
	switch c.SessionBackend {
	case "file", "redis":
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q (want file or redis)", c.SessionBackend)
	}
	if c.SessionBackend == "file" && c.SessionFilePath == "" {
		return errors.New("SESSION_FILE_PATH is required for the file session backend")
	}
	if c.SessionBackend == "redis" && c.RedisURL == "" {
		return errors.New("REDIS_URL is required for the redis session backend")
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction && c.StubJWTSecret == "stub-secret-not-for-production" {
		log.Println("WARNING: STUB_JWT_SECRET still has its default value; the stub gateway must not face production traffic.")
	}

	return nil
}
