package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/tradepostapp/tradepost/internal/cache"
	"github.com/tradepostapp/tradepost/internal/config"
	"github.com/tradepostapp/tradepost/internal/handlers"
	"github.com/tradepostapp/tradepost/internal/pricing"
	"github.com/tradepostapp/tradepost/internal/tablesource"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Engine        *pricing.Engine
	Loader        tablesource.Loader
	CacheProvider cache.Provider
	Handlers      *handlers.Handlers
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	loader, err := tablesource.NewLoader(startupCtx, tablesource.Config{
		Source:      cfg.TableSource,
		Path:        cfg.TablesPath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize table source: %w", err)
	}

	// A table set that fails validation is fatal here: serving prices from
	// an inconsistent table is worse than not serving at all.
	tables, err := loader.Load(startupCtx)
	if err != nil {
		closeLoader(logger, loader)
		return nil, fmt.Errorf("failed to load rule tables: %w", err)
	}

	engine, err := pricing.NewEngine(tables, logger.With("component", "pricing_engine"))
	if err != nil {
		closeLoader(logger, loader)
		return nil, fmt.Errorf("failed to initialize pricing engine: %w", err)
	}
	logger.Info("rule tables loaded",
		"source", cfg.TableSource,
		"version", tables.Version(),
		"base_currency", tables.BaseCurrency().Code,
	)

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		closeLoader(logger, loader)
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	h, err := handlers.New(handlers.Dependencies{
		Config:        cfg,
		Engine:        engine,
		Loader:        loader,
		CacheProvider: cacheProvider,
		Logger:        logger,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		closeLoader(logger, loader)
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		Engine:        engine,
		Loader:        loader,
		CacheProvider: cacheProvider,
		Handlers:      h,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.Loader != nil {
		closeLoader(a.Logger, a.Loader)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: cfg.LogLevel,
	}))
}

func closeLoader(logger *slog.Logger, loader tablesource.Loader) {
	if loader == nil {
		return
	}
	if err := loader.Close(); err != nil && logger != nil {
		logger.Warn("failed to close table source", "error", err)
	}
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
