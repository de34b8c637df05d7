package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	TableSource string `env:"TABLE_SOURCE" envDefault:"file" validate:"omitempty,oneof=file postgres"`
	TablesPath  string `env:"TABLES_PATH" envDefault:"configs/tables.yaml"`
	DatabaseURL string `env:"DATABASE_URL" validate:"required_if=TableSource postgres"`

	CacheProvider         string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis"`

	// AdminTokenSecret signs the bearer tokens accepted by the table reload
	// endpoint. Leaving it empty disables the endpoint entirely.
	AdminTokenSecret string `env:"ADMIN_TOKEN_SECRET" validate:"omitempty,min=32"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	Port      string     `env:"PORT" envDefault:"8080"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	if c.TableSource != "postgres" && strings.TrimSpace(c.TablesPath) == "" {
		return fmt.Errorf("TABLES_PATH is required when TABLE_SOURCE is file")
	}

	return nil
}

// ReloadEnabled reports whether the admin reload endpoint should be served.
func (c *Config) ReloadEnabled() bool {
	return strings.TrimSpace(c.AdminTokenSecret) != ""
}
