package valueobject

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	INR Currency = "INR"
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = INR

// Money is an immutable monetary amount
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyINR creates Money in rupees
func NewMoneyINR(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: INR}
}

// ZeroINR returns zero rupees
func ZeroINR() Money {
	return Money{amount: decimal.Zero, currency: INR}
}

// DecimalFromFloat converts a float to a decimal. NaN and infinities become zero.
func DecimalFromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// DecimalFromFloatPtr is DecimalFromFloat for optional values; nil becomes zero
func DecimalFromFloatPtr(f *float64) decimal.Decimal {
	if f == nil {
		return decimal.Zero
	}
	return DecimalFromFloat(*f)
}

// AmountFloat rounds to paise and converts for JSON responses
func AmountFloat(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

// Add returns the sum; currencies must match
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, errors.New("cannot add money with different currencies")
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns the difference; currencies must match
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, errors.New("cannot subtract money with different currencies")
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Round rounds half away from zero
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places), currency: m.currency}
}

// String formats to 2 places with the currency code, e.g. "1234.50 INR"
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + string(m.currency)
}

// Format renders the amount with Indian digit grouping, e.g. "-12,34,567.80".
func (m Money) Format() string {
	return FormatIndian(m.amount)
}

// FormatIndian renders d at 2 places with lakh/crore grouping
func FormatIndian(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if d.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	if len(intPart) <= 3 {
		b.WriteString(intPart)
	} else {
		head := intPart[:len(intPart)-3]
		tail := intPart[len(intPart)-3:]
		// leading group may be one or two digits, the rest are pairs
		if len(head)%2 == 1 {
			b.WriteString(head[:1])
			b.WriteByte(',')
			head = head[1:]
		}
		for i := 0; i < len(head); i += 2 {
			b.WriteString(head[i : i+2])
			b.WriteByte(',')
		}
		b.WriteString(tail)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
