package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNoPrice is returned when no price can be parsed from the listing text.
var ErrNoPrice = errors.New("no parseable price")

// amountRegex matches a dollar amount with optional "$" and up to two
// decimal places. Captures the numeric portion (group 1).
// Examples: "$4.99", "4.99", "$5".
var amountRegex = regexp.MustCompile(`\$?\s*(\d+(?:\.\d{1,2})?)`)

// centsRegex matches a cents-only price. Examples: "99¢", "79 c".
var centsRegex = regexp.MustCompile(`^(\d{1,2})\s*(?:¢|c)$`)

// multiBuyRegex matches "<n> for $<total>" or "<n>/$<total>" in a price.
// The count may not continue a dollar amount or a decimal ("$1.99/100g" is
// a per-weight price). Group 3 captures a unit after the total; a match with
// a unit is a weight basis, not a multi-buy.
// Examples: "2 for $5", "3/$10.00".
var multiBuyRegex = regexp.MustCompile(
	`(?i)(?:^|[^$\d.])(\d+)\s*(?:for|/)\s*\$?\s*(\d+(?:\.\d{1,2})?)(?:\s*(` + measureUnits + `)\b)?`,
)

// multiBuyPrefixRegex matches pre-price text announcing a multi-buy.
// Examples: "2/", "2 for", "3 FOR".
var multiBuyPrefixRegex = regexp.MustCompile(`(?i)^\s*(\d+)\s*(?:for|/)\s*$`)

// discountOnlyRegex flags text that describes a saving rather than a price.
var discountOnlyRegex = regexp.MustCompile(`(?i)\b(save|off)\b`)

// Price is the result of parsing a listing's price text.
type Price struct {
	// Amount is the effective price of a single unit, rounded to cents.
	Amount decimal.Decimal
	// MultiBuy is the number of units the listed price covers (1 when the
	// listing is not a multi-buy promotion).
	MultiBuy int64
}

// ParsePrice extracts the effective single-unit price from a listing's price
// text and pre-price text. Multi-buy promotions ("2 for $5", or pre-price
// "2/" with price "5.00") are divided down to one unit. Returns ErrNoPrice
// when nothing parseable is present.
func ParsePrice(priceText, prePriceText string) (Price, error) {
	text := strings.TrimSpace(priceText)
	if text == "" {
		return Price{}, ErrNoPrice
	}

	if match := multiBuyRegex.FindStringSubmatch(text); len(match) > 3 && match[3] == "" {
		return divide(match[2], match[1])
	}

	if discountOnlyRegex.MatchString(text) {
		return Price{}, fmt.Errorf("%w: %q describes a discount", ErrNoPrice, text)
	}

	if match := centsRegex.FindStringSubmatch(strings.ToLower(text)); len(match) > 1 {
		cents, err := decimal.NewFromString(match[1])
		if err != nil {
			return Price{}, fmt.Errorf("%w: %v", ErrNoPrice, err)
		}
		return Price{Amount: cents.Shift(-2), MultiBuy: 1}, nil
	}

	match := amountRegex.FindStringSubmatch(text)
	if len(match) < 2 {
		return Price{}, fmt.Errorf("%w: %q", ErrNoPrice, text)
	}

	if prefix := multiBuyPrefixRegex.FindStringSubmatch(prePriceText); len(prefix) > 1 {
		return divide(match[1], prefix[1])
	}

	amount, err := decimal.NewFromString(match[1])
	if err != nil {
		return Price{}, fmt.Errorf("%w: %v", ErrNoPrice, err)
	}
	return Price{Amount: RoundHalfUp(amount), MultiBuy: 1}, nil
}

func divide(total, count string) (Price, error) {
	t, err := decimal.NewFromString(total)
	if err != nil {
		return Price{}, fmt.Errorf("%w: %v", ErrNoPrice, err)
	}
	n, err := decimal.NewFromString(count)
	if err != nil || !n.IsPositive() {
		return Price{}, fmt.Errorf("%w: invalid multi-buy count %q", ErrNoPrice, count)
	}
	return Price{Amount: RoundHalfUp(t.Div(n)), MultiBuy: n.IntPart()}, nil
}

// RoundHalfUp rounds a non-negative amount to two decimal places, with ties
// rounding away from zero.
func RoundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
