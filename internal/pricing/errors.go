package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount is returned for negative or non-finite prices, weights,
	// and amounts. Values are never clamped.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrUnknownCountry is returned by explicit country lookups. Zone
	// resolution never returns it; unknown countries resolve to the
	// international zone instead.
	ErrUnknownCountry = errors.New("unknown country")

	// ErrUnsupportedCurrency is returned when a currency code is not in the
	// currency table. The base currency is never substituted.
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrMethodNotAvailable is returned when a shipping or payment method is
	// not visible for the resolved zone and country. Callers should re-fetch
	// the method list rather than retry.
	ErrMethodNotAvailable = errors.New("method not available")
)

// ConfigurationError reports an inconsistent rule table at load time. The
// engine refuses to serve requests from a table that fails validation.
type ConfigurationError struct {
	Table  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s table: %s", e.Table, e.Reason)
}

func configErrorf(table, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Table: table, Reason: fmt.Sprintf(format, args...)}
}
