package pricing

import (
	"fmt"
	"math"
	"sort"
)

// ShippingMethod is one row of the shipping rate table. A method with an
// empty CountryOverride is offered to every country in its zone; a method
// with an override is offered only to that country, on top of the zone's
// generic set.
type ShippingMethod struct {
	ID              string  `json:"id"`
	Zone            Zone    `json:"zone"`
	CountryOverride string  `json:"countryOverride,omitempty"`
	BaseRate        float64 `json:"baseRate"`
	PerKgRate       float64 `json:"perKgRate"`
	ETALabel        string  `json:"etaLabel"`
	Tracking        bool    `json:"tracking"`
	Insured         bool    `json:"insured"`
	Carrier         string  `json:"carrier"`
}

// visibleFor is the single eligibility predicate for shipping methods.
// Country-specific rules live in the table, never in calculation code.
func (m ShippingMethod) visibleFor(zone Zone, countryCode string) bool {
	if m.Zone != zone {
		return false
	}
	return m.CountryOverride == "" || m.CountryOverride == countryCode
}

// ShippingCost is the computed cost of one method for one shipment.
type ShippingCost struct {
	MethodID string  `json:"methodId"`
	Cost     float64 `json:"cost"`
	ETALabel string  `json:"etaLabel"`
	Carrier  string  `json:"carrier"`
	Tracking bool    `json:"tracking"`
	Insured  bool    `json:"insured"`
}

// listShippingMethods returns the methods visible for a country, cheapest
// base rate first so callers get a stable default selection.
func listShippingMethods(t *Tables, countryCode string) []ShippingMethod {
	code := normalizeCode(countryCode)
	zone := resolveZone(t, code)

	methods := make([]ShippingMethod, 0, len(t.shipping))
	for _, m := range t.shipping {
		if m.visibleFor(zone, code) {
			methods = append(methods, m)
		}
	}
	sort.SliceStable(methods, func(i, j int) bool {
		return methods[i].BaseRate < methods[j].BaseRate
	})
	return methods
}

// computeShippingCost prices one method for one shipment. A method that is
// not visible for the country is a hard error: charging for a method the
// country cannot use is a correctness bug, not a missing-data situation.
// Zero weight is rejected too; it means upstream never populated it.
func computeShippingCost(t *Tables, methodID, countryCode string, weightKg float64) (ShippingCost, error) {
	if weightKg <= 0 || math.IsInf(weightKg, 0) || math.IsNaN(weightKg) {
		return ShippingCost{}, fmt.Errorf("%w: weight %v kg", ErrInvalidAmount, weightKg)
	}

	code := normalizeCode(countryCode)
	zone := resolveZone(t, code)

	for _, m := range t.shipping {
		if m.ID != methodID {
			continue
		}
		if !m.visibleFor(zone, code) {
			break
		}
		return ShippingCost{
			MethodID: m.ID,
			Cost:     m.BaseRate + weightKg*m.PerKgRate,
			ETALabel: m.ETALabel,
			Carrier:  m.Carrier,
			Tracking: m.Tracking,
			Insured:  m.Insured,
		}, nil
	}

	return ShippingCost{}, fmt.Errorf("%w: shipping method %s for country %s", ErrMethodNotAvailable, methodID, countryCode)
}
