package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Scoring   ScoringConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ScoringConfig holds the pipeline tuning knobs
type ScoringConfig struct {
	AllowRefurbished   bool    `mapstructure:"allow_refurbished"`
	MaxDeviation       float64 `mapstructure:"max_deviation"`
	MinPrice           float64 `mapstructure:"min_price"`
	MaxPrice           float64 `mapstructure:"max_price"`
	EnableDebugLogging bool    `mapstructure:"enable_debug_logging"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricelens/")

	// Environment variable settings. The replacer maps nested keys like
	// server.port to PRICELENS_SERVER_PORT.
	v.SetEnvPrefix("PRICELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Scoring defaults
	v.SetDefault("scoring.allow_refurbished", false)
	v.SetDefault("scoring.max_deviation", 0.5)
	v.SetDefault("scoring.min_price", 2000.0)
	v.SetDefault("scoring.max_price", 100000.0)
	v.SetDefault("scoring.enable_debug_logging", false)

	// Cache defaults
	v.SetDefault("cache.ttl", "1h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Scoring.MaxDeviation <= 0 || config.Scoring.MaxDeviation > 1 {
		return fmt.Errorf("scoring max_deviation must be in (0, 1], got: %g", config.Scoring.MaxDeviation)
	}

	if config.Scoring.MinPrice <= 0 || config.Scoring.MaxPrice <= config.Scoring.MinPrice {
		return fmt.Errorf("scoring price bounds must satisfy 0 < min_price < max_price, got: [%g, %g]",
			config.Scoring.MinPrice, config.Scoring.MaxPrice)
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("ratelimit per_ip must be positive, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
