package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/gorilla/mux"

	"github.com/tradepostapp/tradepost/internal/cache"
	"github.com/tradepostapp/tradepost/internal/observability"
	"github.com/tradepostapp/tradepost/internal/pricing"
)

const breakdownCacheTTL = 30 * time.Second

// Zone returns the shipping/commerce zone for a country.
func (h *Handlers) Zone(w http.ResponseWriter, r *http.Request) {
	country := mux.Vars(r)["country"]
	h.writeJSON(r.Context(), w, http.StatusOK, map[string]string{
		"countryCode": country,
		"zone":        string(h.engine.ResolveZone(country)),
	})
}

// Country returns the country table row, including its default currency.
func (h *Handlers) Country(w http.ResponseWriter, r *http.Request) {
	country, err := h.engine.LookupCountry(mux.Vars(r)["country"])
	if err != nil {
		h.writeEngineError(r.Context(), w, err)
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, country)
}

// Commission prices the marketplace commission for one base price.
func (h *Handlers) Commission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	price, err := strconv.ParseFloat(r.URL.Query().Get("price"), 64)
	if err != nil {
		h.writeBadRequest(ctx, w, "price must be a number")
		return
	}

	result, err := h.engine.ComputeCommission(price)
	if err != nil {
		h.writeEngineError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, result)
}

// ShippingMethods lists the methods visible for a country, cheapest first.
func (h *Handlers) ShippingMethods(w http.ResponseWriter, r *http.Request) {
	methods := h.engine.ListShippingMethods(mux.Vars(r)["country"])
	h.writeJSON(r.Context(), w, http.StatusOK, methods)
}

// ShippingCost prices one method for one shipment weight.
func (h *Handlers) ShippingCost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	method := query.Get("method")
	if method == "" {
		h.writeBadRequest(ctx, w, "method is required")
		return
	}
	weight, err := strconv.ParseFloat(query.Get("weight"), 64)
	if err != nil {
		h.writeBadRequest(ctx, w, "weight must be a number")
		return
	}

	cost, err := h.engine.ComputeShippingCost(method, mux.Vars(r)["country"], weight)
	if err != nil {
		h.writeEngineError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, cost)
}

// PaymentMethods lists the payment methods for a country and currency.
func (h *Handlers) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	currency := r.URL.Query().Get("currency")
	if currency == "" {
		h.writeBadRequest(ctx, w, "currency is required")
		return
	}

	methods, err := h.engine.ListPaymentMethods(mux.Vars(r)["country"], currency)
	if err != nil {
		h.writeEngineError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, methods)
}

// Convert converts an amount between two table currencies.
func (h *Handlers) Convert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	amount, err := strconv.ParseFloat(query.Get("amount"), 64)
	if err != nil {
		h.writeBadRequest(ctx, w, "amount must be a number")
		return
	}
	from := query.Get("from")
	to := query.Get("to")
	if from == "" || to == "" {
		h.writeBadRequest(ctx, w, "from and to currencies are required")
		return
	}

	converted, err := h.engine.ConvertCurrency(amount, from, to)
	if err != nil {
		h.writeEngineError(ctx, w, err)
		return
	}

	formatted, err := h.engine.FormatMoney(converted, to)
	if err != nil {
		h.writeEngineError(ctx, w, err)
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, map[string]any{
		"amount":    converted,
		"currency":  to,
		"formatted": formatted,
	})
}

// Breakdown computes the full price breakdown for a cart. Responses are
// cached briefly per table snapshot; storefront pages re-request this on
// every render.
func (h *Handlers) Breakdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBreakdownBodyBytes))
	if err != nil {
		h.writeBadRequest(ctx, w, "failed to read request body")
		return
	}

	meter := observability.MeterFromContext(ctx)

	key := cache.BreakdownKey(h.engine.Version(), body)
	if cached, err := h.cacheProvider.Get(ctx, key); err == nil {
		meter.Count("pricing.breakdown.cache", 1, sentry.WithAttributes(attribute.String("result", "hit")))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, bytes.NewReader([]byte(cached))); err != nil {
			logger.Error("failed to write cached breakdown", "error", err)
		}
		return
	} else if !errors.Is(err, cache.ErrNotFound) {
		logger.Warn("breakdown cache read failed", "error", err)
	}
	meter.Count("pricing.breakdown.cache", 1, sentry.WithAttributes(attribute.String("result", "miss")))

	var input pricing.BreakdownInput
	if err := json.Unmarshal(body, &input); err != nil {
		h.writeBadRequest(ctx, w, "invalid JSON body")
		return
	}

	breakdown, err := h.engine.ComputeBreakdown(input)
	if err != nil {
		h.writeEngineError(ctx, w, err)
		return
	}

	encoded, err := json.Marshal(breakdown)
	if err != nil {
		logger.Error("failed to encode breakdown", "error", err)
		h.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	if err := h.cacheProvider.Set(ctx, key, string(encoded), breakdownCacheTTL); err != nil {
		logger.Warn("breakdown cache write failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(encoded); err != nil {
		logger.Error("failed to write breakdown", "error", err)
	}
}
