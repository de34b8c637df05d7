package pricing

import (
	"errors"
	"math"
	"testing"
)

func TestListShippingMethodsVisibility(t *testing.T) {
	t.Parallel()

	engine := mustEngine(t)

	tests := []struct {
		name    string
		country string
		wantIDs []string
	}{
		{
			name:    "local country gets local methods cheapest first",
			country: "KR",
			wantIDs: []string{"local_standard", "local_express"},
		},
		{
			name:    "regional country",
			country: "JP",
			wantIDs: []string{"regional_air"},
		},
		{
			name:    "override country gets zone methods plus its own",
			country: "US",
			wantIDs: []string{"intl_standard", "us_priority"},
		},
		{
			name:    "non-override country in same zone does not see the override method",
			country: "DE",
			wantIDs: []string{"intl_standard"},
		},
		{
			name:    "unknown country gets international methods",
			country: "ZZ",
			wantIDs: []string{"intl_standard"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			methods := engine.ListShippingMethods(tc.country)
			if len(methods) != len(tc.wantIDs) {
				t.Fatalf("ListShippingMethods(%s) returned %d methods, want %d", tc.country, len(methods), len(tc.wantIDs))
			}
			for i, want := range tc.wantIDs {
				if methods[i].ID != want {
					t.Errorf("method %d = %s, want %s", i, methods[i].ID, want)
				}
			}
		})
	}
}

func TestComputeShippingCost(t *testing.T) {
	t.Parallel()

	engine := mustEngine(t)

	got, err := engine.ComputeShippingCost("local_standard", "KR", 0.8)
	if err != nil {
		t.Fatalf("ComputeShippingCost() unexpected error: %v", err)
	}

	if want := 3000 + 0.8*500; math.Abs(got.Cost-want) > 1e-9 {
		t.Errorf("Cost = %g, want %g", got.Cost, want)
	}
	if got.Carrier != "CJ Logistics" {
		t.Errorf("Carrier = %q, want CJ Logistics", got.Carrier)
	}
	if got.ETALabel != "1-2 days" {
		t.Errorf("ETALabel = %q, want 1-2 days", got.ETALabel)
	}
	if !got.Tracking || got.Insured {
		t.Errorf("capability flags = tracking %v insured %v, want tracking only", got.Tracking, got.Insured)
	}
}

func TestComputeShippingCostRejectsInvalidWeight(t *testing.T) {
	t.Parallel()

	engine := mustEngine(t)

	// Zero weight is rejected on purpose: a shippable order always weighs
	// something, so zero means upstream never populated the field.
	for _, weight := range []float64{0, -1, math.Inf(1), math.NaN()} {
		if _, err := engine.ComputeShippingCost("local_standard", "KR", weight); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ComputeShippingCost(weight=%v) error = %v, want ErrInvalidAmount", weight, err)
		}
	}
}

func TestComputeShippingCostInvisibleMethodIsHardError(t *testing.T) {
	t.Parallel()

	engine := mustEngine(t)

	tests := []struct {
		name    string
		method  string
		country string
	}{
		{
			name:    "method from another zone",
			method:  "local_standard",
			country: "US",
		},
		{
			name:    "override method from another country",
			method:  "us_priority",
			country: "DE",
		},
		{
			name:    "unknown method id",
			method:  "drone_drop",
			country: "KR",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := engine.ComputeShippingCost(tc.method, tc.country, 1); !errors.Is(err, ErrMethodNotAvailable) {
				t.Fatalf("ComputeShippingCost(%s, %s) error = %v, want ErrMethodNotAvailable", tc.method, tc.country, err)
			}
		})
	}
}

func TestComputeShippingCostMonotonicInWeight(t *testing.T) {
	t.Parallel()

	engine := mustEngine(t)

	weights := []float64{0.1, 0.5, 1, 2.5, 10, 30}
	var previous float64
	for i, w := range weights {
		got, err := engine.ComputeShippingCost("intl_standard", "US", w)
		if err != nil {
			t.Fatalf("ComputeShippingCost(weight=%g) unexpected error: %v", w, err)
		}
		if i > 0 && got.Cost < previous {
			t.Fatalf("cost decreased from %g to %g as weight grew to %g", previous, got.Cost, w)
		}
		previous = got.Cost
	}
}
