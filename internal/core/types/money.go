// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NullMoney is a Money that distinguishes "unknown" from zero.
// An article whose cost has never been established carries an invalid
// NullMoney, never a zero - uncosted reporting depends on this.
type NullMoney = decimal.NullDecimal

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
// Use only for constants and tests.
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

// SomeMoney wraps a Money into a valid NullMoney.
func SomeMoney(m Money) NullMoney {
	return decimal.NullDecimal{Decimal: m, Valid: true}
}

// NoMoney returns the "unknown" NullMoney.
func NoMoney() NullMoney {
	return decimal.NullDecimal{}
}

// Round2 rounds to 2 decimal places using half-up rounding.
// Unit costs are rounded once, at the end of a computation, never at
// intermediate sums.
func Round2(m Money) Money {
	return m.Round(2)
}
