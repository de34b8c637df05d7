package pricing

import (
	"errors"
	"strings"
	"testing"
)

func TestNewTablesRejectsInvalidDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mutate     func(doc *TableDocument)
		wantReason string
	}{
		{
			name: "no currencies",
			mutate: func(doc *TableDocument) {
				doc.Currencies = nil
			},
			wantReason: "at least one currency",
		},
		{
			name: "no base currency",
			mutate: func(doc *TableDocument) {
				doc.Currencies[0].RateToBase = 0.5
			},
			wantReason: "exactly one currency must have rate 1",
		},
		{
			name: "two base currencies",
			mutate: func(doc *TableDocument) {
				doc.Currencies[1].RateToBase = 1
			},
			wantReason: "exactly one currency must have rate 1",
		},
		{
			name: "zero rate",
			mutate: func(doc *TableDocument) {
				doc.Currencies[1].RateToBase = 0
			},
			wantReason: "positive finite",
		},
		{
			name: "negative rate",
			mutate: func(doc *TableDocument) {
				doc.Currencies[1].RateToBase = -0.5
			},
			wantReason: "positive finite",
		},
		{
			name: "duplicate currency code",
			mutate: func(doc *TableDocument) {
				doc.Currencies[1].Code = "krw"
			},
			wantReason: "duplicate currency code",
		},
		{
			name: "country with unknown zone",
			mutate: func(doc *TableDocument) {
				doc.Countries[0].Zone = "domestic"
			},
			wantReason: "unknown zone",
		},
		{
			name: "country with unknown default currency",
			mutate: func(doc *TableDocument) {
				doc.Countries[0].DefaultCurrency = "XTS"
			},
			wantReason: "not in the currency table",
		},
		{
			name: "tiers do not start at zero",
			mutate: func(doc *TableDocument) {
				doc.Tiers[0].MinPrice = 1
			},
			wantReason: "must start at 0",
		},
		{
			name: "gap between tiers",
			mutate: func(doc *TableDocument) {
				doc.Tiers[0].MaxPrice = floatPtr(9000)
			},
			wantReason: "gap",
		},
		{
			name: "overlapping tiers",
			mutate: func(doc *TableDocument) {
				doc.Tiers[0].MaxPrice = floatPtr(15000)
			},
			wantReason: "overlap",
		},
		{
			name: "bounded last tier leaves high prices uncovered",
			mutate: func(doc *TableDocument) {
				doc.Tiers[2].MaxPrice = floatPtr(100000)
			},
			wantReason: "last tier must be unbounded",
		},
		{
			name: "interior unbounded tier",
			mutate: func(doc *TableDocument) {
				doc.Tiers[1].MaxPrice = nil
			},
			wantReason: "only the last tier may be unbounded",
		},
		{
			name: "shipping method with dangling override",
			mutate: func(doc *TableDocument) {
				doc.Shipping[0].CountryOverride = "ZZ"
			},
			wantReason: "not in the country table",
		},
		{
			name: "shipping method with negative base rate",
			mutate: func(doc *TableDocument) {
				doc.Shipping[0].BaseRate = -1
			},
			wantReason: "base rate",
		},
		{
			name: "payment method without eligibility",
			mutate: func(doc *TableDocument) {
				doc.Payments[0].Zones = nil
			},
			wantReason: "zone list or country list",
		},
		{
			name: "payment method with unknown supported currency",
			mutate: func(doc *TableDocument) {
				doc.Payments[0].SupportedCurrencies = []string{"XTS"}
			},
			wantReason: "not in the currency table",
		},
		{
			name: "duplicate payment method id",
			mutate: func(doc *TableDocument) {
				doc.Payments[1].ID = doc.Payments[0].ID
			},
			wantReason: "duplicate method id",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			doc := testDocument()
			tc.mutate(doc)

			_, err := NewTables(doc)
			if err == nil {
				t.Fatal("expected a configuration error")
			}

			var configErr *ConfigurationError
			if !errors.As(err, &configErr) {
				t.Fatalf("error = %v, want *ConfigurationError", err)
			}
			if !strings.Contains(configErr.Reason, tc.wantReason) {
				t.Fatalf("reason = %q, want substring %q", configErr.Reason, tc.wantReason)
			}
		})
	}
}

func TestNewTablesAcceptsValidDocument(t *testing.T) {
	t.Parallel()

	if _, err := NewTables(testDocument()); err != nil {
		t.Fatalf("NewTables() failed on a valid document: %v", err)
	}
}
