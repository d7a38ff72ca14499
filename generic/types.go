/*
Package generic provides the domain-agnostic building blocks of the PTO tracker.

PURPOSE:
  Quantities, dates, periods and error sentinels that the pto domain, the
  storage layer and the HTTP layer all share. Nothing in here knows what a
  policy or a request is.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 6.67 hours, 2 days)
  - Unit:   Hours for every PTO quantity

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
     (6.67 hours x 12 months is exactly 80.04, never 80.03999999)
  2. Immutability: Every Amount operation returns a new value

USAGE:
  accrual := generic.NewAmount(6.67, generic.UnitHours)
  total := accrual.Mul(decimal.NewFromInt(12))

SEE ALSO:
  - time.go: TimePoint and date parsing
  - period.go: Calendar-year periods
  - errors.go: Sentinel errors
*/
package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const UnitHours Unit = "hours"

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromDecimal(value decimal.Decimal, unit Unit) Amount {
	return Amount{Value: value, Unit: unit}
}

// Hours is shorthand for the unit every PTO quantity is stored in.
func Hours(value float64) Amount { return NewAmount(value, UnitHours) }

// ZeroHours returns an empty hour amount.
func ZeroHours() Amount { return Amount{Value: decimal.Zero, Unit: UnitHours} }

// ParseAmount parses a decimal string as stored in the database.
func ParseAmount(s string, unit Unit) (Amount, error) {
	if s == "" {
		return Amount{Value: decimal.Zero, Unit: unit}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Amount{Value: d, Unit: unit}, nil
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }

func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Float64 returns the value for JSON responses. Precision loss only matters
// for arithmetic, which never goes through this path.
func (a Amount) Float64() float64 { return a.Value.InexactFloat64() }

// String renders the amount for the database (no unit suffix).
func (a Amount) String() string { return a.Value.String() }
