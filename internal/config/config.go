package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr     string        `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath       string        `env:"DB_PATH" envDefault:"data/quizbowl.db"`
	LogLevel     slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	StoreBackend string        `env:"STORE_BACKEND" envDefault:"sqlite"`
	RedisURL     string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	SaveDebounce time.Duration `env:"SAVE_DEBOUNCE" envDefault:"200ms"`
	// DefaultFormat names the preset applied to games created without one.
	DefaultFormat string `env:"DEFAULT_FORMAT" envDefault:"acf"`
	SeedDemo      bool   `env:"SEED_DEMO" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.StoreBackend != "sqlite" && cfg.StoreBackend != "redis" {
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	return &cfg, nil
}
