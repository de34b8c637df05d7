package pricing

import (
	"fmt"
	"math"
)

// CommissionTier is a contiguous price range with a commission rate. MinPrice
// is inclusive; MaxPrice is exclusive, or nil for the unbounded last tier.
type CommissionTier struct {
	MinPrice float64
	MaxPrice *float64
	Rate     float64
}

// contains reports whether price falls in this tier. A price exactly at a
// boundary belongs to the tier that starts there, so 10000 lands in the tier
// beginning at 10000, not the one ending there.
func (tier CommissionTier) contains(price float64) bool {
	if price < tier.MinPrice {
		return false
	}
	return tier.MaxPrice == nil || price < *tier.MaxPrice
}

// CommissionResult is the marketplace commission for one base price.
type CommissionResult struct {
	Rate       float64 `json:"rate"`
	Amount     float64 `json:"amount"`
	FinalPrice float64 `json:"finalPrice"`
}

func computeCommission(t *Tables, basePrice float64) (CommissionResult, error) {
	if basePrice < 0 || math.IsInf(basePrice, 0) || math.IsNaN(basePrice) {
		return CommissionResult{}, fmt.Errorf("%w: base price %v", ErrInvalidAmount, basePrice)
	}

	for _, tier := range t.tiers {
		if !tier.contains(basePrice) {
			continue
		}
		amount := basePrice * tier.Rate
		return CommissionResult{
			Rate:       tier.Rate,
			Amount:     amount,
			FinalPrice: basePrice + amount,
		}, nil
	}

	// Unreachable with a validated table: tiers are exhaustive over [0, +inf).
	return CommissionResult{}, configErrorf("commission", "no tier matches price %g", basePrice)
}
