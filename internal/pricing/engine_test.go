package pricing

import (
	"errors"
	"math"
	"testing"
)

func TestComputeBreakdownLocalOrderInBaseCurrency(t *testing.T) {
	t.Parallel()

	engine := mustEngine(t)

	breakdown, err := engine.ComputeBreakdown(BreakdownInput{
		CountryCode:        "KR",
		CurrencyCode:       "KRW",
		WeightKg:           0.8,
		LineItemBasePrices: []float64{45000},
	})
	if err != nil {
		t.Fatalf("ComputeBreakdown() unexpected error: %v", err)
	}

	if breakdown.Zone != ZoneLocal {
		t.Errorf("Zone = %s, want local", breakdown.Zone)
	}
	if breakdown.Currency != "KRW" {
		t.Errorf("Currency = %s, want KRW", breakdown.Currency)
	}

	if len(breakdown.LineItems) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(breakdown.LineItems))
	}
	line := breakdown.LineItems[0]
	if line.CommissionRate != 0.06 {
		t.Errorf("CommissionRate = %g, want 0.06", line.CommissionRate)
	}
	if math.Abs(line.CommissionAmount-2700) > 1e-9 {
		t.Errorf("CommissionAmount = %g, want 2700", line.CommissionAmount)
	}
	if math.Abs(line.LineTotal-47700) > 1e-9 {
		t.Errorf("LineTotal = %g, want 47700", line.LineTotal)
	}

	if len(breakdown.ShippingOptions) == 0 {
		t.Fatal("expected at least one local shipping option")
	}
	cheapest := breakdown.ShippingOptions[0]
	if cheapest.Method.ID != "local_standard" {
		t.Errorf("default shipping option = %s, want local_standard", cheapest.Method.ID)
	}

	// Total is the final line price plus the default (cheapest) shipping.
	if want := line.LineTotal + cheapest.Cost; math.Abs(breakdown.Total-want) > 1e-9 {
		t.Errorf("Total = %g, want %g", breakdown.Total, want)
	}
	if breakdown.FormattedTotal != "₩51,100" {
		t.Errorf("FormattedTotal = %q, want ₩51,100", breakdown.FormattedTotal)
	}
}

func TestComputeBreakdownConvertsEveryMonetaryFigure(t *testing.T) {
	t.Parallel()

	engine := mustEngine(t)

	input := BreakdownInput{
		CountryCode:        "KR",
		WeightKg:           0.8,
		LineItemBasePrices: []float64{45000},
	}

	base, err := engine.ComputeBreakdown(input)
	if err != nil {
		t.Fatalf("ComputeBreakdown(base) unexpected error: %v", err)
	}

	input.CurrencyCode = "USD"
	converted, err := engine.ComputeBreakdown(input)
	if err != nil {
		t.Fatalf("ComputeBreakdown(USD) unexpected error: %v", err)
	}

	mustConvert := func(amount float64) float64 {
		t.Helper()
		v, err := engine.ConvertCurrency(amount, "KRW", "USD")
		if err != nil {
			t.Fatalf("ConvertCurrency() unexpected error: %v", err)
		}
		return v
	}

	if want := mustConvert(base.LineItems[0].LineTotal); math.Abs(converted.LineItems[0].LineTotal-want) > 1e-9 {
		t.Errorf("LineTotal = %g, want %g", converted.LineItems[0].LineTotal, want)
	}
	if want := mustConvert(base.ShippingOptions[0].Cost); math.Abs(converted.ShippingOptions[0].Cost-want) > 1e-9 {
		t.Errorf("shipping cost = %g, want %g", converted.ShippingOptions[0].Cost, want)
	}
	if want := mustConvert(base.Total); math.Abs(converted.Total-want) > 1e-9 {
		t.Errorf("Total = %g, want %g", converted.Total, want)
	}

	// Two decimal places with the dollar symbol in front.
	if converted.FormattedTotal != "$40.88" {
		t.Errorf("FormattedTotal = %q, want $40.88", converted.FormattedTotal)
	}

	// Commission rates are ratios, not money; they never change.
	if converted.LineItems[0].CommissionRate != base.LineItems[0].CommissionRate {
		t.Errorf("CommissionRate changed across currencies")
	}
}

func TestComputeBreakdownDefaultsToCountryCurrency(t *testing.T) {
	t.Parallel()

	engine := mustEngine(t)

	breakdown, err := engine.ComputeBreakdown(BreakdownInput{
		CountryCode:        "JP",
		WeightKg:           1.2,
		LineItemBasePrices: []float64{5000},
	})
	if err != nil {
		t.Fatalf("ComputeBreakdown() unexpected error: %v", err)
	}
	if breakdown.Currency != "JPY" {
		t.Errorf("Currency = %s, want country default JPY", breakdown.Currency)
	}

	unknown, err := engine.ComputeBreakdown(BreakdownInput{
		CountryCode:        "ZZ",
		WeightKg:           1.2,
		LineItemBasePrices: []float64{5000},
	})
	if err != nil {
		t.Fatalf("ComputeBreakdown(unknown country) unexpected error: %v", err)
	}
	if unknown.Currency != "KRW" {
		t.Errorf("Currency = %s, want base KRW for unknown country", unknown.Currency)
	}
	if unknown.Zone != ZoneInternational {
		t.Errorf("Zone = %s, want international for unknown country", unknown.Zone)
	}
}

func TestComputeBreakdownPaymentOptionsMatchEligibility(t *testing.T) {
	t.Parallel()

	engine := mustEngine(t)

	breakdown, err := engine.ComputeBreakdown(BreakdownInput{
		CountryCode:        "KR",
		CurrencyCode:       "KRW",
		WeightKg:           2,
		LineItemBasePrices: []float64{12000, 800},
	})
	if err != nil {
		t.Fatalf("ComputeBreakdown() unexpected error: %v", err)
	}

	want, err := engine.ListPaymentMethods("KR", "KRW")
	if err != nil {
		t.Fatalf("ListPaymentMethods() unexpected error: %v", err)
	}
	if len(breakdown.PaymentOptions) != len(want) {
		t.Fatalf("payment options = %d, want %d", len(breakdown.PaymentOptions), len(want))
	}
	for i := range want {
		if breakdown.PaymentOptions[i].ID != want[i].ID {
			t.Errorf("payment option %d = %s, want %s", i, breakdown.PaymentOptions[i].ID, want[i].ID)
		}
	}
}

func TestComputeBreakdownAbortsOnBadInput(t *testing.T) {
	t.Parallel()

	engine := mustEngine(t)

	tests := []struct {
		name    string
		input   BreakdownInput
		wantErr error
	}{
		{
			name: "no line items",
			input: BreakdownInput{
				CountryCode: "KR",
				WeightKg:    1,
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "zero weight",
			input: BreakdownInput{
				CountryCode:        "KR",
				WeightKg:           0,
				LineItemBasePrices: []float64{1000},
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "negative line item",
			input: BreakdownInput{
				CountryCode:        "KR",
				WeightKg:           1,
				LineItemBasePrices: []float64{1000, -5},
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "unsupported currency",
			input: BreakdownInput{
				CountryCode:        "KR",
				CurrencyCode:       "XTS",
				WeightKg:           1,
				LineItemBasePrices: []float64{1000},
			},
			wantErr: ErrUnsupportedCurrency,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			breakdown, err := engine.ComputeBreakdown(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
			if breakdown != nil {
				t.Fatal("a failed computation must not return a partial breakdown")
			}
		})
	}
}

func TestEngineReloadSwapsSnapshot(t *testing.T) {
	t.Parallel()

	engine := mustEngine(t)
	before := engine.Version()

	doc := testDocument()
	doc.Tiers = []CommissionTierConfig{{MinPrice: 0, Rate: 0.05}}
	tables, err := NewTables(doc)
	if err != nil {
		t.Fatalf("NewTables() failed: %v", err)
	}
	if err := engine.Reload(tables); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}

	if engine.Version() == before {
		t.Error("Version() unchanged after reload")
	}

	got, err := engine.ComputeCommission(45000)
	if err != nil {
		t.Fatalf("ComputeCommission() unexpected error: %v", err)
	}
	if got.Rate != 0.05 {
		t.Errorf("Rate = %g after reload, want 0.05", got.Rate)
	}
}

func TestEngineReloadRejectsNilTables(t *testing.T) {
	t.Parallel()

	if err := mustEngine(t).Reload(nil); err == nil {
		t.Fatal("expected error for nil tables")
	}
}
