// Package pto implements the PTO tracking domain: users, employee profiles,
// teams, policies, balances and requests, plus the balance calculation that
// ties them together. It uses the generic package for quantities and dates.
package pto

import (
	"time"

	"github.com/warp/pto-tracker/generic"
)

// =============================================================================
// PEOPLE
// =============================================================================

// User is an account that can sign in. Password hashes never leave the store
// layer through the API.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSummary is the slice of a user embedded in other records.
type UserSummary struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// Summary returns the embeddable view of u.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Employee is the employment profile attached to a user. StartDate is the
// tenure start used for proration; it is optional.
type Employee struct {
	ID         string
	UserID     string
	Title      string
	Department string
	StartDate  *time.Time
	ManagerID  *string // user id
	TeamID     *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Populated by reads
	User    *UserSummary
	Manager *UserSummary
	Team    *TeamSummary
}

// Team groups employees under a manager.
type Team struct {
	ID          string
	Name        string
	Description string
	ManagerID   *string // user id
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Populated by reads
	Manager *UserSummary
	Members []TeamMember
}

type TeamSummary struct {
	ID          string
	Name        string
	Description string
}

type TeamMember struct {
	EmployeeID string
	Title      string
	User       UserSummary
}

// =============================================================================
// POLICIES AND BALANCES
// =============================================================================

// Policy is a named accrual configuration.
type Policy struct {
	ID              string
	Name            string
	AccrualPerMonth generic.Amount // hours per month
	CarryoverMax    generic.Amount // hours
	EffectiveOn     time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks the non-negativity rules shared by create and update.
func (p Policy) Validate() error {
	if p.Name == "" {
		return generic.NewValidationError("name", "is required")
	}
	if p.AccrualPerMonth.IsNegative() {
		return generic.NewValidationError("accrualHrsMo", "must be non-negative")
	}
	if p.CarryoverMax.IsNegative() {
		return generic.NewValidationError("carryoverMax", "must be non-negative")
	}
	return nil
}

// Balance is a stored per-year balance record. It is a snapshot: the live
// figure is always recomputed by the Calculator.
type Balance struct {
	ID         string
	EmployeeID string
	Year       int
	PolicyID   string
	Accrued    generic.Amount
	Used       generic.Amount
	Carryover  generic.Amount
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Populated by reads
	PolicyName   string
	EmployeeName string
}

const (
	MinBalanceYear = 2000
	MaxBalanceYear = 3000
)

// Validate checks year range and non-negative hours.
func (b Balance) Validate() error {
	if b.Year < MinBalanceYear || b.Year > MaxBalanceYear {
		return generic.NewValidationError("year", "must be between 2000 and 3000")
	}
	if b.Accrued.IsNegative() {
		return generic.NewValidationError("accrued", "must be non-negative")
	}
	if b.Used.IsNegative() {
		return generic.NewValidationError("used", "must be non-negative")
	}
	if b.Carryover.IsNegative() {
		return generic.NewValidationError("carryover", "must be non-negative")
	}
	return nil
}

// ValidateUpdate is Validate for an edit of before. A negative carryover
// written by a snapshot passes as long as the edit leaves it unchanged.
func (b Balance) ValidateUpdate(before Balance) error {
	if b.Carryover.IsNegative() && b.Carryover.Equal(before.Carryover) {
		b.Carryover = b.Carryover.Zero()
	}
	return b.Validate()
}

// =============================================================================
// DASHBOARD AGGREGATES
// =============================================================================

type DashboardCounts struct {
	Users     int
	Employees int
	Teams     int
	Policies  int
	Requests  int // requests starting in the year
	Pending   int
	Approved  int
	Rejected  int
}

type StatusCount struct {
	Status RequestStatus
	Count  int
}

type MonthCount struct {
	Month string // "01".."12"
	Count int
}
