package pricing

import (
	"fmt"
	"strings"
)

// Zone is the coarse shipping/commerce classification of a country. It drives
// which shipping and payment methods are offered; ordering is not meaningful.
type Zone string

const (
	ZoneLocal         Zone = "local"
	ZoneRegional      Zone = "regional"
	ZoneInternational Zone = "international"
)

// ParseZone converts a table value into a Zone. Unknown values are rejected
// at the table boundary so they cannot propagate into rule evaluation.
func ParseZone(value string) (Zone, error) {
	switch Zone(strings.ToLower(strings.TrimSpace(value))) {
	case ZoneLocal:
		return ZoneLocal, nil
	case ZoneRegional:
		return ZoneRegional, nil
	case ZoneInternational:
		return ZoneInternational, nil
	default:
		return "", fmt.Errorf("unknown zone %q", value)
	}
}

// Country is one row of the country table.
type Country struct {
	Code            string
	Name            string
	DefaultCurrency string
	Zone            Zone
}

// resolveZone maps a country code to its zone. Codes absent from the table
// fall back to the international zone, the most conservative choice: a
// lookup miss must never under-charge shipping.
func resolveZone(t *Tables, countryCode string) Zone {
	if country, ok := t.countries[normalizeCode(countryCode)]; ok {
		return country.Zone
	}
	return ZoneInternational
}

func lookupCountry(t *Tables, countryCode string) (Country, error) {
	country, ok := t.countries[normalizeCode(countryCode)]
	if !ok {
		return Country{}, fmt.Errorf("%w: %s", ErrUnknownCountry, countryCode)
	}
	return country, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
