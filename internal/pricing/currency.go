package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Currency is one row of the currency table. RateToBase is the value of one
// unit of the base currency expressed in this currency; the base currency
// itself carries rate 1. The formatting fields make rendering a pure
// function of (amount, currency) with no ambient locale state.
type Currency struct {
	Code         string  `json:"code"`
	Symbol       string  `json:"symbol"`
	RateToBase   float64 `json:"rateToBase"`
	MinorUnits   int     `json:"minorUnits"`
	ThousandsSep string  `json:"-"`
	DecimalSep   string  `json:"-"`
	SymbolAfter  bool    `json:"-"`
}

// convertCurrency converts via the base currency: amount/rate(from) hops to
// base, *rate(to) hops to the target. The two-hop path keeps the rate table
// linear in the number of currencies, and A->B->A round-trips to identity up
// to floating-point rounding.
func convertCurrency(t *Tables, amount float64, fromCode, toCode string) (float64, error) {
	if amount < 0 || math.IsInf(amount, 0) || math.IsNaN(amount) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	from, ok := t.currencies[normalizeCode(fromCode)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, fromCode)
	}
	to, ok := t.currencies[normalizeCode(toCode)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, toCode)
	}

	return amount / from.RateToBase * to.RateToBase, nil
}

func formatMoney(t *Tables, amount float64, currencyCode string) (string, error) {
	if amount < 0 || math.IsInf(amount, 0) || math.IsNaN(amount) {
		return "", fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	currency, ok := t.currencies[normalizeCode(currencyCode)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCurrency, currencyCode)
	}

	return currency.format(amount), nil
}

func (c Currency) format(amount float64) string {
	scale := math.Pow(10, float64(c.MinorUnits))
	rounded := math.Round(amount*scale) / scale

	digits := strconv.FormatFloat(rounded, 'f', c.MinorUnits, 64)
	whole, frac, _ := strings.Cut(digits, ".")

	var b strings.Builder
	if !c.SymbolAfter {
		b.WriteString(c.Symbol)
	}
	b.WriteString(groupDigits(whole, c.ThousandsSep))
	if frac != "" {
		b.WriteString(c.DecimalSep)
		b.WriteString(frac)
	}
	if c.SymbolAfter {
		b.WriteString(" ")
		b.WriteString(c.Symbol)
	}
	return b.String()
}

func groupDigits(whole, sep string) string {
	if len(whole) <= 3 {
		return whole
	}

	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(whole[i : i+3])
	}
	return b.String()
}
