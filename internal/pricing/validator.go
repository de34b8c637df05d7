package pricing

import (
	"math"
	"sort"
	"strings"
)

// validateDocument checks the parsed tables for the inconsistencies that
// would make money calculations wrong: non-positive rates, a missing or
// duplicated base currency, commission tier gaps or overlaps, and dangling
// references between tables.
func validateDocument(doc *TableDocument) error {
	currencies, err := validateCurrencies(doc.Currencies)
	if err != nil {
		return err
	}
	countries, err := validateCountries(doc.Countries, currencies)
	if err != nil {
		return err
	}
	if err := validateTiers(doc.Tiers); err != nil {
		return err
	}
	if err := validateShipping(doc.Shipping, countries); err != nil {
		return err
	}
	return validatePayments(doc.Payments, currencies, countries)
}

func validateCurrencies(configs []CurrencyConfig) (map[string]bool, error) {
	if len(configs) == 0 {
		return nil, configErrorf("currency", "at least one currency is required")
	}

	codes := make(map[string]bool, len(configs))
	baseCount := 0
	for _, c := range configs {
		code := normalizeCode(c.Code)
		if code == "" {
			return nil, configErrorf("currency", "currency code is required")
		}
		if codes[code] {
			return nil, configErrorf("currency", "duplicate currency code %s", code)
		}
		codes[code] = true

		if c.RateToBase <= 0 || math.IsInf(c.RateToBase, 0) || math.IsNaN(c.RateToBase) {
			return nil, configErrorf("currency", "%s: rate must be a positive finite number", code)
		}
		if c.RateToBase == 1 {
			baseCount++
		}
		if c.MinorUnits < 0 {
			return nil, configErrorf("currency", "%s: minor units must be zero or positive", code)
		}
		if strings.TrimSpace(c.Symbol) == "" {
			return nil, configErrorf("currency", "%s: symbol is required", code)
		}
	}

	if baseCount != 1 {
		return nil, configErrorf("currency", "exactly one currency must have rate 1, found %d", baseCount)
	}

	return codes, nil
}

func validateCountries(configs []CountryConfig, currencies map[string]bool) (map[string]bool, error) {
	codes := make(map[string]bool, len(configs))
	for _, c := range configs {
		code := normalizeCode(c.Code)
		if code == "" {
			return nil, configErrorf("country", "country code is required")
		}
		if codes[code] {
			return nil, configErrorf("country", "duplicate country code %s", code)
		}
		codes[code] = true

		if _, err := ParseZone(c.Zone); err != nil {
			return nil, configErrorf("country", "%s: %v", code, err)
		}
		if !currencies[normalizeCode(c.DefaultCurrency)] {
			return nil, configErrorf("country", "%s: default currency %s is not in the currency table", code, c.DefaultCurrency)
		}
	}
	return codes, nil
}

// validateTiers requires the commission tiers to be contiguous,
// non-overlapping, and exhaustive over [0, +inf).
func validateTiers(configs []CommissionTierConfig) error {
	if len(configs) == 0 {
		return configErrorf("commission", "at least one tier is required")
	}

	tiers := make([]CommissionTierConfig, len(configs))
	copy(tiers, configs)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinPrice < tiers[j].MinPrice })

	if tiers[0].MinPrice != 0 {
		return configErrorf("commission", "tiers must start at 0, first tier starts at %g", tiers[0].MinPrice)
	}

	for i, tier := range tiers {
		if tier.Rate < 0 || math.IsInf(tier.Rate, 0) || math.IsNaN(tier.Rate) {
			return configErrorf("commission", "tier starting at %g has invalid rate", tier.MinPrice)
		}

		last := i == len(tiers)-1
		if last {
			if tier.MaxPrice != nil {
				return configErrorf("commission", "last tier must be unbounded, found max %g", *tier.MaxPrice)
			}
			continue
		}

		if tier.MaxPrice == nil {
			return configErrorf("commission", "only the last tier may be unbounded")
		}
		if *tier.MaxPrice <= tier.MinPrice {
			return configErrorf("commission", "tier starting at %g has max %g below its min", tier.MinPrice, *tier.MaxPrice)
		}
		next := tiers[i+1]
		if *tier.MaxPrice != next.MinPrice {
			if *tier.MaxPrice < next.MinPrice {
				return configErrorf("commission", "gap between %g and %g", *tier.MaxPrice, next.MinPrice)
			}
			return configErrorf("commission", "overlap between tiers at %g", next.MinPrice)
		}
	}

	return nil
}

func validateShipping(configs []ShippingMethodConfig, countries map[string]bool) error {
	ids := make(map[string]bool, len(configs))
	for _, m := range configs {
		if strings.TrimSpace(m.ID) == "" {
			return configErrorf("shipping", "method id is required")
		}
		if ids[m.ID] {
			return configErrorf("shipping", "duplicate method id %s", m.ID)
		}
		ids[m.ID] = true

		if _, err := ParseZone(m.Zone); err != nil {
			return configErrorf("shipping", "%s: %v", m.ID, err)
		}
		if m.BaseRate < 0 || math.IsInf(m.BaseRate, 0) || math.IsNaN(m.BaseRate) {
			return configErrorf("shipping", "%s: base rate must be zero or positive", m.ID)
		}
		if m.PerKgRate < 0 || math.IsInf(m.PerKgRate, 0) || math.IsNaN(m.PerKgRate) {
			return configErrorf("shipping", "%s: per-kg rate must be zero or positive", m.ID)
		}
		if strings.TrimSpace(m.Carrier) == "" {
			return configErrorf("shipping", "%s: carrier is required", m.ID)
		}
		if override := normalizeCode(m.CountryOverride); override != "" && !countries[override] {
			return configErrorf("shipping", "%s: country override %s is not in the country table", m.ID, override)
		}
	}
	return nil
}

func validatePayments(configs []PaymentMethodConfig, currencies, countries map[string]bool) error {
	ids := make(map[string]bool, len(configs))
	for _, m := range configs {
		if strings.TrimSpace(m.ID) == "" {
			return configErrorf("payment", "method id is required")
		}
		if ids[m.ID] {
			return configErrorf("payment", "duplicate method id %s", m.ID)
		}
		ids[m.ID] = true

		if m.FeePercent < 0 || math.IsInf(m.FeePercent, 0) || math.IsNaN(m.FeePercent) {
			return configErrorf("payment", "%s: fee percent must be zero or positive", m.ID)
		}
		if len(m.SupportedCurrencies) == 0 {
			return configErrorf("payment", "%s: at least one supported currency is required", m.ID)
		}
		for _, code := range m.SupportedCurrencies {
			if !currencies[normalizeCode(code)] {
				return configErrorf("payment", "%s: supported currency %s is not in the currency table", m.ID, code)
			}
		}
		if len(m.Zones) == 0 && len(m.Countries) == 0 {
			return configErrorf("payment", "%s: a zone list or country list is required", m.ID)
		}
		for _, z := range m.Zones {
			if _, err := ParseZone(z); err != nil {
				return configErrorf("payment", "%s: %v", m.ID, err)
			}
		}
		for _, code := range m.Countries {
			if !countries[normalizeCode(code)] {
				return configErrorf("payment", "%s: country %s is not in the country table", m.ID, code)
			}
		}
	}
	return nil
}
