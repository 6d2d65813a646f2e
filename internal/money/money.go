// Package money represents monetary values as integer minor units paired
// with a currency code. Decimal display values are always derived from
// cents, never stored alongside them, so the two representations cannot
// drift apart.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimalCurrencies have no minor unit: 1 JPY = 1 "cent".
var zeroDecimalCurrencies = map[string]bool{
	"JPY": true, "KRW": true, "VND": true, "CLP": true,
}

// MinorUnitDigits returns the number of decimal places for a currency.
func MinorUnitDigits(currency string) int32 {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return 0
	}
	return 2
}

// Amount is a monetary value in a single currency.
// Cents is the source of truth for all arithmetic.
type Amount struct {
	Cents    int64  `json:"amount_cents"`
	Currency string `json:"currency"`
}

// FromCents builds an Amount from integer minor units.
func FromCents(cents int64, currency string) Amount {
	return Amount{Cents: cents, Currency: strings.ToUpper(currency)}
}

// FromDecimal converts a decimal major-unit value to an Amount.
// Returns an error when the value has more precision than the currency's
// minor unit allows (e.g. USD 10.005).
func FromDecimal(d decimal.Decimal, currency string) (Amount, error) {
	digits := MinorUnitDigits(currency)
	scaled := d.Shift(digits)
	if !scaled.IsInteger() {
		return Amount{}, fmt.Errorf("amount %s has sub-minor-unit precision for %s", d, currency)
	}
	return Amount{Cents: scaled.IntPart(), Currency: strings.ToUpper(currency)}, nil
}

// Decimal returns the derived major-unit representation.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.Cents, -MinorUnitDigits(a.Currency))
}

// String formats the amount for display, e.g. "25.00 USD".
func (a Amount) String() string {
	return a.Decimal().StringFixed(MinorUnitDigits(a.Currency)) + " " + a.Currency
}

// Add returns the sum of two amounts. Currencies must match.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("currency mismatch: %s vs %s", a.Currency, b.Currency)
	}
	return Amount{Cents: a.Cents + b.Cents, Currency: a.Currency}, nil
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool {
	return a.Cents < 0
}

// Consistent checks that a decimal display value agrees with the cents
// value under the currency's minor-unit convention. Used when validating
// payloads that carry both representations.
func Consistent(cents int64, d decimal.Decimal, currency string) bool {
	got, err := FromDecimal(d, currency)
	if err != nil {
		return false
	}
	return got.Cents == cents
}
