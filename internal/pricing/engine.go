package pricing

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync/atomic"
)

// Engine evaluates the pricing & fulfillment rules. The tables are held
// behind an atomic pointer: every operation reads one snapshot, so a reload
// can never leave an in-flight computation looking at a half-updated table.
// All operations are pure and safe for concurrent use without locking.
type Engine struct {
	tables atomic.Pointer[Tables]
	logger *slog.Logger
}

func NewEngine(tables *Tables, logger *slog.Logger) (*Engine, error) {
	if tables == nil {
		return nil, fmt.Errorf("tables are required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &Engine{logger: logger}
	e.tables.Store(tables)
	return e, nil
}

// Reload swaps in a new snapshot. The snapshot was validated when it was
// built, so the swap is a single pointer store.
func (e *Engine) Reload(tables *Tables) error {
	if tables == nil {
		return fmt.Errorf("tables are required")
	}

	previous := e.tables.Swap(tables)
	e.logger.Info("rule tables reloaded",
		"version", tables.Version(),
		"previous_version", previous.Version(),
	)
	return nil
}

// Version identifies the currently served table snapshot.
func (e *Engine) Version() string {
	return e.snapshot().Version()
}

func (e *Engine) snapshot() *Tables {
	return e.tables.Load()
}

// ResolveZone maps a country code to its zone; unknown codes resolve to the
// international zone.
func (e *Engine) ResolveZone(countryCode string) Zone {
	return resolveZone(e.snapshot(), countryCode)
}

// LookupCountry returns the country table row for a code, or
// ErrUnknownCountry.
func (e *Engine) LookupCountry(countryCode string) (Country, error) {
	return lookupCountry(e.snapshot(), countryCode)
}

// ComputeCommission maps a base-currency price to its commission tier.
func (e *Engine) ComputeCommission(basePrice float64) (CommissionResult, error) {
	return computeCommission(e.snapshot(), basePrice)
}

// ListShippingMethods returns the methods visible for a country, cheapest
// first.
func (e *Engine) ListShippingMethods(countryCode string) []ShippingMethod {
	return listShippingMethods(e.snapshot(), countryCode)
}

// ComputeShippingCost prices one shipping method for one shipment.
func (e *Engine) ComputeShippingCost(methodID, countryCode string, weightKg float64) (ShippingCost, error) {
	return computeShippingCost(e.snapshot(), methodID, countryCode, weightKg)
}

// ListPaymentMethods returns the payment methods eligible for a country that
// also support the given currency.
func (e *Engine) ListPaymentMethods(countryCode, currencyCode string) ([]PaymentMethod, error) {
	return listPaymentMethods(e.snapshot(), countryCode, currencyCode)
}

// ConvertCurrency converts an amount between any two table currencies.
func (e *Engine) ConvertCurrency(amount float64, fromCurrency, toCurrency string) (float64, error) {
	return convertCurrency(e.snapshot(), amount, fromCurrency, toCurrency)
}

// FormatMoney renders an amount with the currency's grouping, minor-unit,
// and symbol-placement rules.
func (e *Engine) FormatMoney(amount float64, currencyCode string) (string, error) {
	return formatMoney(e.snapshot(), amount, currencyCode)
}

// BreakdownInput is one storefront pricing request. Line item prices are in
// the base currency. An empty CurrencyCode selects the country's default
// currency, falling back to the base currency for unknown countries.
type BreakdownInput struct {
	CountryCode        string    `json:"countryCode"`
	CurrencyCode       string    `json:"currencyCode"`
	WeightKg           float64   `json:"weightKg"`
	LineItemBasePrices []float64 `json:"lineItemBasePrices"`
}

// LineItem is one priced cart line, in the breakdown's currency.
type LineItem struct {
	BasePrice        float64 `json:"basePrice"`
	CommissionRate   float64 `json:"commissionRate"`
	CommissionAmount float64 `json:"commissionAmount"`
	LineTotal        float64 `json:"lineTotal"`
}

// ShippingOption is one visible shipping method priced for the request's
// weight, in the breakdown's currency.
type ShippingOption struct {
	Method   ShippingMethod `json:"method"`
	Cost     float64        `json:"cost"`
	ETALabel string         `json:"etaLabel"`
}

// PriceBreakdown is the complete derived pricing for one order. It is built
// per request and owned by the caller; the engine keeps no reference.
type PriceBreakdown struct {
	LineItems       []LineItem       `json:"lineItems"`
	ShippingOptions []ShippingOption `json:"shippingOptions"`
	PaymentOptions  []PaymentMethod  `json:"paymentOptions"`
	Currency        string           `json:"currency"`
	Zone            Zone             `json:"zone"`
	ItemsTotal      float64          `json:"itemsTotal"`
	Total           float64          `json:"total"`
	FormattedTotal  string           `json:"formattedTotal"`
}

// ComputeBreakdown runs the full pipeline: zone, per-line commission,
// shipping options, payment options, then conversion and formatting. Each
// stage feeds the next; any failure aborts the whole computation, so a
// partial breakdown is never returned.
func (e *Engine) ComputeBreakdown(input BreakdownInput) (*PriceBreakdown, error) {
	t := e.snapshot()

	if len(input.LineItemBasePrices) == 0 {
		return nil, fmt.Errorf("%w: at least one line item is required", ErrInvalidAmount)
	}
	if input.WeightKg <= 0 || math.IsInf(input.WeightKg, 0) || math.IsNaN(input.WeightKg) {
		return nil, fmt.Errorf("%w: weight %v kg", ErrInvalidAmount, input.WeightKg)
	}

	country := normalizeCode(input.CountryCode)
	zone := resolveZone(t, country)
	currency := normalizeCode(input.CurrencyCode)
	if currency == "" {
		currency = t.base.Code
		if row, err := lookupCountry(t, country); err == nil {
			currency = row.DefaultCurrency
		}
	}
	if _, ok := t.currencies[currency]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, input.CurrencyCode)
	}

	breakdown := &PriceBreakdown{
		Currency: currency,
		Zone:     zone,
	}

	var itemsTotalBase float64
	for _, basePrice := range input.LineItemBasePrices {
		commission, err := computeCommission(t, basePrice)
		if err != nil {
			return nil, err
		}
		itemsTotalBase += commission.FinalPrice

		line := LineItem{CommissionRate: commission.Rate}
		if line.BasePrice, err = convertCurrency(t, basePrice, t.base.Code, currency); err != nil {
			return nil, err
		}
		if line.CommissionAmount, err = convertCurrency(t, commission.Amount, t.base.Code, currency); err != nil {
			return nil, err
		}
		if line.LineTotal, err = convertCurrency(t, commission.FinalPrice, t.base.Code, currency); err != nil {
			return nil, err
		}
		breakdown.LineItems = append(breakdown.LineItems, line)
	}

	totalBase := itemsTotalBase
	for i, method := range listShippingMethods(t, country) {
		cost, err := computeShippingCost(t, method.ID, country, input.WeightKg)
		if err != nil {
			return nil, err
		}
		converted, err := convertCurrency(t, cost.Cost, t.base.Code, currency)
		if err != nil {
			return nil, err
		}
		breakdown.ShippingOptions = append(breakdown.ShippingOptions, ShippingOption{
			Method:   method,
			Cost:     converted,
			ETALabel: cost.ETALabel,
		})
		// Methods arrive cheapest first; the first is the default selection.
		if i == 0 {
			totalBase += cost.Cost
		}
	}

	payments, err := listPaymentMethods(t, country, currency)
	if err != nil {
		return nil, err
	}
	breakdown.PaymentOptions = payments

	if breakdown.ItemsTotal, err = convertCurrency(t, itemsTotalBase, t.base.Code, currency); err != nil {
		return nil, err
	}
	if breakdown.Total, err = convertCurrency(t, totalBase, t.base.Code, currency); err != nil {
		return nil, err
	}
	if breakdown.FormattedTotal, err = formatMoney(t, breakdown.Total, currency); err != nil {
		return nil, err
	}

	e.logger.Debug("breakdown computed",
		"country", country,
		"zone", zone,
		"currency", currency,
		"line_items", len(breakdown.LineItems),
		"shipping_options", len(breakdown.ShippingOptions),
		"payment_options", len(breakdown.PaymentOptions),
	)
	return breakdown, nil
}
