/*
balance.go - PTO balance calculation

PURPOSE:
  Answers "how many hours can this employee still take in a given year?"
  from the policy, the employee's start date, last year's stored balance and
  this year's approved requests.

FORMULA:
  accrualMonths    = 12, or 12 - startMonth (0-indexed) when employment
                     started during the target year
  totalAccrual     = accrualHrsPerMonth x accrualMonths
  carryover        = min(priorAccrued - priorUsed, carryoverMax)
                     (0 when there is no prior-year balance)
  totalUsed        = sum of approved request hours in the year
  availableBalance = totalAccrual + carryover - totalUsed

EXAMPLE:
  6.67 h/month, 40 h cap, started 2024-03-01, 2024 balance 40 accrued / 8 used,
  8 h approved in 2025:

    accrualMonths = 12, totalAccrual = 80.04, carryover = min(32, 40) = 32,
    totalUsed = 8, availableBalance = 104.04

NEGATIVE CARRYOVER:
  When last year's usage exceeded its accrual, accrued - used is negative and
  the cap doesn't touch it, so the carryover reduces this year's balance.
  That is the default. Calculator.FloorCarryover clamps it at zero instead.

The calculation is pure: no I/O, no clock, no shared state. Loading the
inputs is the caller's job (see api/balances.go).
*/
package pto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/pto-tracker/generic"
)

// UsageEntry is one approved request as the calculator sees it.
type UsageEntry struct {
	StartDate time.Time
	Hours     generic.Amount
}

// PriorYearBalance is the stored balance for year - 1.
type PriorYearBalance struct {
	Accrued generic.Amount
	Used    generic.Amount
}

// BalanceInput bundles everything the calculation reads. Approved must
// already be restricted to APPROVED requests starting in Year.
type BalanceInput struct {
	Policy      Policy
	TenureStart *time.Time
	Approved    []UsageEntry
	PriorYear   *PriorYearBalance
	Year        int
}

// BalanceResult is the computed balance. It is never stored as-is; callers
// may snapshot it into a Balance record.
type BalanceResult struct {
	Year          int
	AccrualMonths int
	TotalAccrual  generic.Amount
	Carryover     generic.Amount
	TotalUsed     generic.Amount
	Available     generic.Amount
}

// Calculator computes balances. The zero value keeps negative carryover.
type Calculator struct {
	FloorCarryover bool
}

// Compute runs the formula above.
func (c Calculator) Compute(in BalanceInput) BalanceResult {
	months := AccrualMonths(in.TenureStart, in.Year)
	accrual := in.Policy.AccrualPerMonth.Mul(decimal.NewFromInt(int64(months)))
	accrual.Unit = generic.UnitHours

	carryover := c.carryover(in.PriorYear, in.Policy.CarryoverMax)

	used := generic.ZeroHours()
	for _, e := range in.Approved {
		used = used.Add(e.Hours)
	}

	return BalanceResult{
		Year:          in.Year,
		AccrualMonths: months,
		TotalAccrual:  accrual,
		Carryover:     carryover,
		TotalUsed:     used,
		Available:     accrual.Add(carryover).Sub(used),
	}
}

func (c Calculator) carryover(prior *PriorYearBalance, limit generic.Amount) generic.Amount {
	if prior == nil {
		return generic.ZeroHours()
	}
	carry := prior.Accrued.Sub(prior.Used).Min(limit)
	carry.Unit = generic.UnitHours
	if c.FloorCarryover {
		carry = carry.Max(generic.ZeroHours())
	}
	return carry
}

// ComputeBalance runs the default Calculator.
func ComputeBalance(in BalanceInput) BalanceResult {
	return Calculator{}.Compute(in)
}

// AccrualMonths returns how many months of the year accrue: 12 unless the
// employee started during year, in which case the months from the start
// month through December.
func AccrualMonths(tenureStart *time.Time, year int) int {
	if tenureStart == nil {
		return 12
	}
	start := generic.TimePoint{Time: tenureStart.UTC()}
	if start.Year() != year {
		return 12
	}
	return generic.MonthsRemaining(start)
}

// UsageFrom converts stored requests into calculator entries.
func UsageFrom(requests []Request) []UsageEntry {
	entries := make([]UsageEntry, 0, len(requests))
	for _, r := range requests {
		entries = append(entries, UsageEntry{StartDate: r.StartDate, Hours: r.Hours})
	}
	return entries
}

// Snapshot turns a result into a Balance record for persistence.
func (r BalanceResult) Snapshot(employeeID, policyID string) Balance {
	return Balance{
		EmployeeID: employeeID,
		Year:       r.Year,
		PolicyID:   policyID,
		Accrued:    r.TotalAccrual,
		Used:       r.TotalUsed,
		Carryover:  r.Carryover,
	}
}
