package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// measureUnits lists mass and volume spellings, longest alternatives first so
// "grams" is preferred over "g".
const measureUnits = `kilograms?|kgs?|grams?|gr|g|pounds?|lbs?|ounces?|oz|` +
	`millilitres?|milliliters?|ml|litres?|liters?|l`

// numberPrefix keeps a match from starting inside a larger number, a dollar
// amount ("$3.99 lb" is a price, not a weight) or a negative number.
const numberPrefix = `(?:^|[^$\d.\-])`

// multipackRegex matches "<count> x <size><unit>".
// Examples: "4 x 200ml", "12x355 ml", "2 × 1.89 l".
var multipackRegex = regexp.MustCompile(
	numberPrefix + `(\d+)\s*[x×]\s*(\d+(?:\.\d+)?)\s*(` + measureUnits + `)\b`,
)

// magnitudeRegex matches a single "<size><unit>".
// Examples: "500 g", "4l", "1.5 kg", "680 grams".
var magnitudeRegex = regexp.MustCompile(
	numberPrefix + `(\d+(?:\.\d+)?)\s*(` + measureUnits + `)\b`,
)

// countRegex matches "<count> pack|pk|count|ct|ea|each".
var countRegex = regexp.MustCompile(
	numberPrefix + `(\d+)\s*-?\s*(pack|pk|count|ct|each|ea)\b`,
)

// packOfRegex matches "pack of <count>".
var packOfRegex = regexp.MustCompile(`\bpack\s+of\s+(\d+)\b`)

var spaceRegex = regexp.MustCompile(`\s+`)

// outcome is the result of applying one cascade rule to a text.
type outcome int

const (
	noMatch outcome = iota
	matched
	// malformed means the rule's pattern matched but a number in it was zero
	// or otherwise unusable. The quantity is then absent and lower rules are
	// not tried.
	malformed
)

// matcher is one rule of the quantity cascade.
type matcher struct {
	name  string
	match func(text string) (domain.Measure, outcome)
}

// cascade is evaluated in order; the first rule that matches wins.
var cascade = []matcher{
	{name: "multipack", match: matchMultipack},
	{name: "magnitude", match: matchMagnitude},
	{name: "count", match: matchCount},
}

// ParseQuantity extracts a quantity and unit from free-form flyer text.
// Each text is tried in turn (typically description, product name, then sale
// story) and the first text yielding a match wins. Returns (measure, true) on
// match, (zero, false) when no rule matches any text.
func ParseQuantity(texts ...string) (domain.Measure, bool) {
	m, _, ok := parseQuantity(texts...)
	return m, ok
}

// ParseQuantityRule is ParseQuantity but also reports which rule matched.
func ParseQuantityRule(texts ...string) (domain.Measure, string, bool) {
	return parseQuantity(texts...)
}

func parseQuantity(texts ...string) (domain.Measure, string, bool) {
	for _, text := range texts {
		normalized := normalizeText(text)
		if normalized == "" {
			continue
		}
		for _, rule := range cascade {
			switch m, res := rule.match(normalized); res {
			case matched:
				return m, rule.name, true
			case malformed:
				return domain.Measure{}, "", false
			case noMatch:
			}
		}
	}
	return domain.Measure{}, "", false
}

func normalizeText(s string) string {
	return strings.TrimSpace(spaceRegex.ReplaceAllString(strings.ToLower(s), " "))
}

func matchMultipack(text string) (domain.Measure, outcome) {
	match := multipackRegex.FindStringSubmatch(text)
	if len(match) < 4 {
		return domain.Measure{}, noMatch
	}

	count, ok := positiveDecimal(match[1])
	if !ok {
		return domain.Measure{}, malformed
	}
	size, ok := positiveDecimal(match[2])
	if !ok {
		return domain.Measure{}, malformed
	}

	unit := NormalizeUnit(match[3])
	if unit == domain.UnitNone {
		return domain.Measure{}, malformed
	}
	return domain.Measure{Quantity: count.Mul(size), Unit: unit}, matched
}

func matchMagnitude(text string) (domain.Measure, outcome) {
	match := magnitudeRegex.FindStringSubmatch(text)
	if len(match) < 3 {
		return domain.Measure{}, noMatch
	}

	size, ok := positiveDecimal(match[1])
	if !ok {
		return domain.Measure{}, malformed
	}

	unit := NormalizeUnit(match[2])
	if unit == domain.UnitNone {
		return domain.Measure{}, malformed
	}
	return domain.Measure{Quantity: size, Unit: unit}, matched
}

func matchCount(text string) (domain.Measure, outcome) {
	if match := countRegex.FindStringSubmatch(text); len(match) > 2 {
		n, ok := positiveDecimal(match[1])
		if !ok {
			return domain.Measure{}, malformed
		}
		return domain.Measure{Quantity: n, Unit: NormalizeUnit(match[2])}, matched
	}

	if match := packOfRegex.FindStringSubmatch(text); len(match) > 1 {
		n, ok := positiveDecimal(match[1])
		if !ok {
			return domain.Measure{}, malformed
		}
		return domain.Measure{Quantity: n, Unit: domain.UnitPack}, matched
	}

	return domain.Measure{}, noMatch
}

// positiveDecimal parses s and rejects zero or negative values.
func positiveDecimal(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, false
	}
	return d, true
}

// priceBasisRegex matches per-weight pricing suffixes such as "/lb",
// "lb", "per kg" or "/100 g".
var priceBasisRegex = regexp.MustCompile(`^(?:/|per\b)?\s*(\d+(?:\.\d+)?)?\s*(kg|lbs?|g)\b`)

// ParsePriceBasis reports the measure a per-weight price is quoted for, based
// on the post-price text (e.g. "/lb" yields 1 lb, "/100 g" yields 100 g).
// Returns (zero, false) when the price is not quoted per weight.
func ParsePriceBasis(postPriceText string) (domain.Measure, bool) {
	match := priceBasisRegex.FindStringSubmatch(normalizeText(postPriceText))
	if len(match) < 3 {
		return domain.Measure{}, false
	}

	qty := decimal.NewFromInt(1)
	if match[1] != "" {
		n, ok := positiveDecimal(match[1])
		if !ok {
			return domain.Measure{}, false
		}
		qty = n
	}
	return domain.Measure{Quantity: qty, Unit: NormalizeUnit(match[2])}, true
}
