package einvoice

import "strings"

// DefaultCountryCode is assumed when a country name cannot be mapped.
const DefaultCountryCode = "DE"

// countryCodes maps the country names operators actually type into the
// address fields onto ISO 3166-1 alpha-2 codes. German, Austrian, Swiss and
// French spellings cover the practical customer base; anything else falls
// back to Germany.
var countryCodes = map[string]string{
	"deutschland": "DE",
	"germany":     "DE",
	"österreich":  "AT",
	"oesterreich": "AT",
	"austria":     "AT",
	"schweiz":     "CH",
	"switzerland": "CH",
	"suisse":      "CH",
	"frankreich":  "FR",
	"france":      "FR",
}

// CountryCode resolves a free-text country name to its ISO 3166-1 alpha-2
// code. Inputs that already look like a two-letter code pass through
// uppercased.
func CountryCode(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return DefaultCountryCode
	}
	if len(trimmed) == 2 && trimmed == strings.ToUpper(trimmed) {
		return trimmed
	}
	if code, ok := countryCodes[strings.ToLower(trimmed)]; ok {
		return code
	}
	return DefaultCountryCode
}
