package pricing

// Package pricing implements the Tradepost pricing & fulfillment rules
// engine: zone resolution, commission tiering, shipping rate computation,
// payment method eligibility, and currency conversion/formatting. All rule
// tables are loaded once and treated as immutable snapshots.

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// TableDocument is the YAML schema for the five rule tables.
type TableDocument struct {
	Currencies []CurrencyConfig      `yaml:"currencies"`
	Countries  []CountryConfig       `yaml:"countries"`
	Tiers      []CommissionTierConfig `yaml:"commission_tiers"`
	Shipping   []ShippingMethodConfig `yaml:"shipping_methods"`
	Payments   []PaymentMethodConfig  `yaml:"payment_methods"`
}

type CurrencyConfig struct {
	Code         string  `yaml:"code"`
	Symbol       string  `yaml:"symbol"`
	RateToBase   float64 `yaml:"rate_to_base"`
	MinorUnits   int     `yaml:"minor_units"`
	ThousandsSep string  `yaml:"thousands_sep"`
	DecimalSep   string  `yaml:"decimal_sep"`
	SymbolAfter  bool    `yaml:"symbol_after"`
}

type CountryConfig struct {
	Code            string `yaml:"code"`
	Name            string `yaml:"name"`
	DefaultCurrency string `yaml:"default_currency"`
	Zone            string `yaml:"zone"`
}

type CommissionTierConfig struct {
	MinPrice float64  `yaml:"min_price"`
	MaxPrice *float64 `yaml:"max_price"`
	Rate     float64  `yaml:"rate"`
}

type ShippingMethodConfig struct {
	ID              string  `yaml:"id"`
	Zone            string  `yaml:"zone"`
	CountryOverride string  `yaml:"country_override"`
	BaseRate        float64 `yaml:"base_rate"`
	PerKgRate       float64 `yaml:"per_kg_rate"`
	ETALabel        string  `yaml:"eta_label"`
	Tracking        bool    `yaml:"tracking"`
	Insured         bool    `yaml:"insured"`
	Carrier         string  `yaml:"carrier"`
}

type PaymentMethodConfig struct {
	ID                  string   `yaml:"id"`
	Name                string   `yaml:"name"`
	FeePercent          float64  `yaml:"fee_percent"`
	SupportedCurrencies []string `yaml:"supported_currencies"`
	Zones               []string `yaml:"zones"`
	Countries           []string `yaml:"countries"`
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(content []byte) (*TableDocument, error) {
	var doc TableDocument
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse tables YAML: %w", err)
	}

	return &doc, nil
}

func (p *Parser) ParseFromString(content string) (*TableDocument, error) {
	return p.Parse([]byte(content))
}

// Tables is one immutable, validated snapshot of all rule tables. A Tables
// value is never mutated after construction; reloads build a fresh snapshot
// and swap it in whole.
type Tables struct {
	version    string
	base       Currency
	currencies map[string]Currency
	countries  map[string]Country
	tiers      []CommissionTier
	shipping   []ShippingMethod
	payments   []PaymentMethod
}

// NewTables validates a parsed document and builds a snapshot. Any
// inconsistency is a *ConfigurationError; a snapshot that fails validation
// is never returned.
func NewTables(doc *TableDocument) (*Tables, error) {
	if doc == nil {
		return nil, configErrorf("tables", "document is nil")
	}

	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	t := &Tables{
		version:    uuid.NewString(),
		currencies: make(map[string]Currency, len(doc.Currencies)),
		countries:  make(map[string]Country, len(doc.Countries)),
	}

	for _, c := range doc.Currencies {
		currency := Currency{
			Code:         normalizeCode(c.Code),
			Symbol:       c.Symbol,
			RateToBase:   c.RateToBase,
			MinorUnits:   c.MinorUnits,
			ThousandsSep: c.ThousandsSep,
			DecimalSep:   c.DecimalSep,
			SymbolAfter:  c.SymbolAfter,
		}
		if currency.ThousandsSep == "" {
			currency.ThousandsSep = ","
		}
		if currency.DecimalSep == "" {
			currency.DecimalSep = "."
		}
		t.currencies[currency.Code] = currency
		if currency.RateToBase == 1 {
			t.base = currency
		}
	}

	for _, c := range doc.Countries {
		zone, err := ParseZone(c.Zone)
		if err != nil {
			// validateDocument already checked zones; keep the guard anyway.
			return nil, configErrorf("country", "%s: %v", c.Code, err)
		}
		code := normalizeCode(c.Code)
		t.countries[code] = Country{
			Code:            code,
			Name:            c.Name,
			DefaultCurrency: normalizeCode(c.DefaultCurrency),
			Zone:            zone,
		}
	}

	t.tiers = make([]CommissionTier, 0, len(doc.Tiers))
	for _, tier := range doc.Tiers {
		t.tiers = append(t.tiers, CommissionTier{
			MinPrice: tier.MinPrice,
			MaxPrice: tier.MaxPrice,
			Rate:     tier.Rate,
		})
	}
	sort.Slice(t.tiers, func(i, j int) bool {
		return t.tiers[i].MinPrice < t.tiers[j].MinPrice
	})

	t.shipping = make([]ShippingMethod, 0, len(doc.Shipping))
	for _, m := range doc.Shipping {
		zone, _ := ParseZone(m.Zone)
		t.shipping = append(t.shipping, ShippingMethod{
			ID:              m.ID,
			Zone:            zone,
			CountryOverride: normalizeCode(m.CountryOverride),
			BaseRate:        m.BaseRate,
			PerKgRate:       m.PerKgRate,
			ETALabel:        m.ETALabel,
			Tracking:        m.Tracking,
			Insured:         m.Insured,
			Carrier:         m.Carrier,
		})
	}

	t.payments = make([]PaymentMethod, 0, len(doc.Payments))
	for _, m := range doc.Payments {
		method := PaymentMethod{
			ID:         m.ID,
			Name:       m.Name,
			FeePercent: m.FeePercent,
		}
		for _, code := range m.SupportedCurrencies {
			method.SupportedCurrencies = append(method.SupportedCurrencies, normalizeCode(code))
		}
		for _, z := range m.Zones {
			zone, _ := ParseZone(z)
			method.Zones = append(method.Zones, zone)
		}
		for _, code := range m.Countries {
			method.Countries = append(method.Countries, normalizeCode(code))
		}
		t.payments = append(t.payments, method)
	}

	return t, nil
}

// Version identifies this snapshot; it changes on every load.
func (t *Tables) Version() string {
	return t.version
}

// BaseCurrency returns the currency all rates are anchored to.
func (t *Tables) BaseCurrency() Currency {
	return t.base
}
