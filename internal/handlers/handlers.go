package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tradepostapp/tradepost/internal/cache"
	"github.com/tradepostapp/tradepost/internal/config"
	"github.com/tradepostapp/tradepost/internal/logging"
	"github.com/tradepostapp/tradepost/internal/pricing"
	"github.com/tradepostapp/tradepost/internal/tablesource"
)

const maxBreakdownBodyBytes = 64 << 10 // 64 KB

// Handlers provides the HTTP surface of the pricing engine for the
// storefront UI.
type Handlers struct {
	config        *config.Config
	engine        *pricing.Engine
	loader        tablesource.Loader
	cacheProvider cache.Provider
	logger        *slog.Logger
}

type Dependencies struct {
	Config        *config.Config
	Engine        *pricing.Engine
	Loader        tablesource.Loader
	CacheProvider cache.Provider
	Logger        *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("handlers dependencies: engine is required")
	}
	if deps.Loader == nil {
		return nil, fmt.Errorf("handlers dependencies: loader is required")
	}
	if deps.CacheProvider == nil {
		return nil, fmt.Errorf("handlers dependencies: cacheProvider is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Handlers{
		config:        deps.Config,
		engine:        deps.Engine,
		loader:        deps.Loader,
		cacheProvider: deps.CacheProvider,
		logger:        logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(r.Context(), w, http.StatusOK, map[string]string{
		"status":         "healthy",
		"tables_version": h.engine.Version(),
	})
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func (h *Handlers) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.loggerFromContext(ctx).Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
// Stale method selections get 409 so the UI knows to re-fetch its lists.
func (h *Handlers) writeEngineError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := h.loggerFromContext(ctx)

	var status int
	switch {
	case errors.Is(err, pricing.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, pricing.ErrUnknownCountry):
		status = http.StatusNotFound
	case errors.Is(err, pricing.ErrUnsupportedCurrency):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, pricing.ErrMethodNotAvailable):
		status = http.StatusConflict
	default:
		logger.Error("pricing request failed", "error", err)
		h.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	logger.Debug("pricing request rejected", "status", status, "error", err)
	h.writeJSON(ctx, w, status, errorResponse{Error: err.Error()})
}

func (h *Handlers) writeBadRequest(ctx context.Context, w http.ResponseWriter, format string, args ...any) {
	h.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf(format, args...)})
}
