package core

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const minorUnitPlaces int32 = 2 // pence

// maxPence bounds the magnitude of every parsed or computed amount, leaving
// headroom in int64 for a sum of two amounts or a doubling.
const maxPence int64 = 100_000_000_000_000_000

var (
	hundred         = decimal.NewFromInt(100)
	maxPenceDecimal = decimal.NewFromInt(maxPence)
)

// Money is an immutable amount of currency held as a whole number of pence.
// Every constructor and arithmetic operation rounds half away from zero to the
// nearest penny, so no sub-penny drift survives a single operation.
type Money struct {
	pence int64
}

// Zero is the zero amount.
var Zero = Money{}

// ParseMoney parses a decimal string such as "12.34" or "300" and rounds it
// to the nearest penny. Amounts beyond the supported range fail with
// ErrAmountOutOfRange.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	m, err := fromDecimal(d)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return m, nil
}

// MustParseMoney is like ParseMoney but panics on malformed input.
// Intended for constants and tests.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromPence builds a Money from a count of minor units.
func MoneyFromPence(pence int64) Money {
	return Money{pence: pence}
}

func fromDecimal(d decimal.Decimal) (Money, error) {
	pence := d.Round(minorUnitPlaces).Shift(minorUnitPlaces)
	if pence.Abs().GreaterThan(maxPenceDecimal) {
		return Money{}, ErrAmountOutOfRange
	}
	return Money{pence: pence.IntPart()}, nil
}

// Pence returns the amount in minor units.
func (m Money) Pence() int64 { return m.pence }

// Decimal returns the amount as a decimal number of pounds.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.pence, -minorUnitPlaces)
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{pence: m.pence + other.pence}
}

// Subtract returns m - other.
func (m Money) Subtract(other Money) Money {
	return Money{pence: m.pence - other.pence}
}

// AddPercent returns m * (1 + percent/100), rounded to the nearest penny.
// A negative percent reduces the amount.
func (m Money) AddPercent(percent float64) (Money, error) {
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		return Money{}, fmt.Errorf("add percent: invalid percent %v", percent)
	}
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(percent).Div(hundred))
	result, err := fromDecimal(m.Decimal().Mul(factor))
	if err != nil {
		return Money{}, fmt.Errorf("add %v%% to %s: %w", percent, m, err)
	}
	return result, nil
}

// Compare returns -1, 0 or 1 as m is less than, equal to, or greater than other.
func (m Money) Compare(other Money) int {
	switch {
	case m.pence < other.pence:
		return -1
	case m.pence > other.pence:
		return 1
	default:
		return 0
	}
}

// Equal reports whether m and other hold the same number of pence.
func (m Money) Equal(other Money) bool {
	return m.pence == other.pence
}

// LessOrEqual reports whether m <= other.
func (m Money) LessOrEqual(other Money) bool {
	return m.pence <= other.pence
}

// String formats the amount with exactly two fractional digits, e.g. "13.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(minorUnitPlaces)
}

// MarshalJSON encodes the amount as a decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a decimal string or a JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("money must be a string or number: %w", err)
		}
		s = n.String()
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
