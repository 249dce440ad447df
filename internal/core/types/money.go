// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors; every monetary
// computation rounds to 2 decimal places at the point of calculation.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Round2 rounds to 2 decimal places (half away from zero).
// All line totals, invoice totals and installment amounts pass through
// this at computation time, never at display time.
func Round2(m Money) Money {
	return m.Round(2)
}

// LineTotal computes quantity × unit price, rounded to 2 places.
func LineTotal(quantity int, unitPrice Money) Money {
	return Round2(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

// SumMoney adds values and rounds the result to 2 places.
func SumMoney(values ...Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return Round2(total)
}
