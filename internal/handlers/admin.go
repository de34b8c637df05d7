package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// RequireAdminToken gates the reload endpoint behind a signed bearer token.
// With no secret configured the endpoint is not routed at all; this guard
// is the second line.
func (h *Handlers) RequireAdminToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := h.loggerFromContext(r.Context())

		if !h.config.ReloadEnabled() {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}

		token := bearerToken(r)
		if token == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if err := h.verifyAdminToken(token); err != nil {
			logger.Warn("rejected admin token", "error", err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ReloadTables re-reads the configured table source and swaps the new
// snapshot in atomically. In-flight requests keep the snapshot they
// started with.
func (h *Handlers) ReloadTables(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	tables, err := h.loader.Load(ctx)
	if err != nil {
		logger.Error("table reload failed", "error", err)
		h.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	if err := h.engine.Reload(tables); err != nil {
		logger.Error("table swap failed", "error", err)
		h.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, map[string]string{
		"status":         "reloaded",
		"tables_version": tables.Version(),
	})
}

func (h *Handlers) verifyAdminToken(token string) error {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(h.config.AdminTokenSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
