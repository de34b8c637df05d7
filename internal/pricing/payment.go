package pricing

import (
	"fmt"
	"slices"
)

// PaymentMethod is one row of the payment method table. Eligibility is a
// zone list, a country list, or both; a method is offered when either list
// matches. Currency support is a separate, independent condition.
type PaymentMethod struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	FeePercent          float64  `json:"feePercent"`
	SupportedCurrencies []string `json:"supportedCurrencies"`
	Zones               []Zone   `json:"zones,omitempty"`
	Countries           []string `json:"countries,omitempty"`
}

func (m PaymentMethod) eligibleFor(zone Zone, countryCode string) bool {
	if slices.Contains(m.Zones, zone) {
		return true
	}
	return slices.Contains(m.Countries, countryCode)
}

func (m PaymentMethod) supportsCurrency(currencyCode string) bool {
	return slices.Contains(m.SupportedCurrencies, currencyCode)
}

// listPaymentMethods returns the methods eligible for a country that also
// support the requested currency. Both conditions are required: a method
// eligible by zone but unable to settle in the currency is excluded.
func listPaymentMethods(t *Tables, countryCode, currencyCode string) ([]PaymentMethod, error) {
	currency := normalizeCode(currencyCode)
	if _, ok := t.currencies[currency]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, currencyCode)
	}

	code := normalizeCode(countryCode)
	zone := resolveZone(t, code)

	methods := make([]PaymentMethod, 0, len(t.payments))
	for _, m := range t.payments {
		if m.eligibleFor(zone, code) && m.supportsCurrency(currency) {
			methods = append(methods, m)
		}
	}
	return methods, nil
}
