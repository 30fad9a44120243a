package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("PRICELENS_SERVER_PORT")
		os.Unsetenv("PRICELENS_SERVER_ENVIRONMENT")
		os.Unsetenv("PRICELENS_SERVER_ALLOWED_ORIGINS")
		os.Unsetenv("PRICELENS_SCORING_ALLOW_REFURBISHED")
		os.Unsetenv("PRICELENS_SCORING_MAX_DEVIATION")
		os.Unsetenv("PRICELENS_SCORING_MIN_PRICE")
		os.Unsetenv("PRICELENS_SCORING_MAX_PRICE")
		os.Unsetenv("PRICELENS_SCORING_ENABLE_DEBUG_LOGGING")
		os.Unsetenv("PRICELENS_CACHE_TTL")
		os.Unsetenv("PRICELENS_RATELIMIT_PER_IP")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Scoring.AllowRefurbished {
			t.Error("Scoring.AllowRefurbished = true, want false")
		}
		if cfg.Scoring.MaxDeviation != 0.5 {
			t.Errorf("Scoring.MaxDeviation = %v, want 0.5", cfg.Scoring.MaxDeviation)
		}
		if cfg.Scoring.MinPrice != 2000 || cfg.Scoring.MaxPrice != 100000 {
			t.Errorf("price bounds = [%v, %v], want [2000, 100000]", cfg.Scoring.MinPrice, cfg.Scoring.MaxPrice)
		}
		if cfg.Cache.TTL != 1*time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PRICELENS_SERVER_PORT", "9090")
		os.Setenv("PRICELENS_SERVER_ENVIRONMENT", "production")
		os.Setenv("PRICELENS_SCORING_ALLOW_REFURBISHED", "true")
		os.Setenv("PRICELENS_SCORING_MAX_DEVIATION", "0.3")
		os.Setenv("PRICELENS_CACHE_TTL", "24h")
		os.Setenv("PRICELENS_RATELIMIT_PER_IP", "200")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if !cfg.Scoring.AllowRefurbished {
			t.Error("Scoring.AllowRefurbished = false, want true")
		}
		if cfg.Scoring.MaxDeviation != 0.3 {
			t.Errorf("Scoring.MaxDeviation = %v, want 0.3", cfg.Scoring.MaxDeviation)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
	})

	t.Run("rejects out-of-range max deviation", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PRICELENS_SCORING_MAX_DEVIATION", "1.5")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want validation error for max_deviation 1.5")
		}
	})

	t.Run("rejects inverted price bounds", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PRICELENS_SCORING_MIN_PRICE", "50000")
		os.Setenv("PRICELENS_SCORING_MAX_PRICE", "2000")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want validation error for inverted bounds")
		}
	})

	t.Run("rejects non-positive rate limit", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PRICELENS_RATELIMIT_PER_IP", "0")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want validation error for per_ip 0")
		}
	})
}
