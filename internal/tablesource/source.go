package tablesource

// Package tablesource loads the pricing rule tables from a configuration
// source at boot. Loading happens before any request is served; a reload
// re-reads the same source and produces a fresh snapshot.

import (
	"context"
	"fmt"

	"github.com/tradepostapp/tradepost/internal/pricing"
)

// Loader produces validated table snapshots from one configured source.
type Loader interface {
	Load(ctx context.Context) (*pricing.Tables, error)
	Close() error
}

type Config struct {
	Source      string
	Path        string
	DatabaseURL string
}

func NewLoader(ctx context.Context, cfg Config) (Loader, error) {
	switch cfg.Source {
	case "file", "":
		return NewFileLoader(cfg.Path), nil
	case "postgres":
		return NewPostgresLoader(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported table source: %s", cfg.Source)
	}
}
