package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents runtime configuration for the service.
type Config struct {
	ServerAddress   string        `env:"CODEPAIR_ADDR" envDefault:":8090"`
	AllowedOrigins  []string      `env:"CODEPAIR_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	SessionTTL      time.Duration `env:"CODEPAIR_SESSION_TTL" envDefault:"24h"`
	SweepInterval   time.Duration `env:"CODEPAIR_SWEEP_INTERVAL" envDefault:"1h"`
	RateLimitRPS    float64       `env:"CODEPAIR_RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst  int           `env:"CODEPAIR_RATE_LIMIT_BURST" envDefault:"50"`
	LogLevel        string        `env:"CODEPAIR_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"CODEPAIR_LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"CODEPAIR_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("rate limit must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, fmt.Errorf("shutdown timeout must be positive")
	}

	return &cfg, nil
}
