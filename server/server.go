package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tradepostapp/tradepost/internal/config"
	"github.com/tradepostapp/tradepost/internal/handlers"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/zones/{country}", h.Zone).Methods("GET").Name("api.zones")
	api.HandleFunc("/countries/{country}", h.Country).Methods("GET").Name("api.countries")
	api.HandleFunc("/commission", h.Commission).Methods("GET").Name("api.commission")
	api.HandleFunc("/shipping/{country}/methods", h.ShippingMethods).Methods("GET").Name("api.shipping.methods")
	api.HandleFunc("/shipping/{country}/cost", h.ShippingCost).Methods("GET").Name("api.shipping.cost")
	api.HandleFunc("/payments/{country}", h.PaymentMethods).Methods("GET").Name("api.payments")
	api.HandleFunc("/convert", h.Convert).Methods("GET").Name("api.convert")
	api.HandleFunc("/breakdown", h.Breakdown).Methods("POST").Name("api.breakdown")

	if s.cfg.ReloadEnabled() {
		admin := r.PathPrefix("/admin").Subrouter()
		admin.Use(h.RequireAdminToken)
		admin.HandleFunc("/tables/reload", h.ReloadTables).Methods("POST").Name("admin.tables.reload")
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	})

	return r
}
