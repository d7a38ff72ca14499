/*
store.go - Data-access interface for the PTO domain

PURPOSE:
  One interface between the domain/HTTP layers and the database. The process
  builds a single implementation at startup (store/sqlite) and injects it
  into the API handler; nothing else opens connections.

CONVENTIONS:
  - Create* assigns ID (UUID) and timestamps when they are empty, and writes
    them back into the passed record.
  - Get* returns generic.ErrNotFound for a missing row.
  - Unique violations surface as generic.ErrConflict, foreign key violations
    as generic.ErrInvalidReference.
  - Update* replaces the mutable columns of an existing row
    (generic.ErrNotFound if absent).

SEE ALSO:
  - store/sqlite: Implementation
  - generic/errors.go: Sentinels
*/
package pto

import "context"

type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id string) error
}

type EmployeeStore interface {
	CreateEmployee(ctx context.Context, e *Employee) error
	GetEmployee(ctx context.Context, id string) (*Employee, error)
	GetEmployeeByUser(ctx context.Context, userID string) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	UpdateEmployee(ctx context.Context, e *Employee) error
	DeleteEmployee(ctx context.Context, id string) error
}

type TeamStore interface {
	CreateTeam(ctx context.Context, t *Team) error
	GetTeam(ctx context.Context, id string) (*Team, error)
	ListTeams(ctx context.Context) ([]Team, error)
	UpdateTeam(ctx context.Context, t *Team) error
	DeleteTeam(ctx context.Context, id string) error
}

type PolicyStore interface {
	CreatePolicy(ctx context.Context, p *Policy) error
	GetPolicy(ctx context.Context, id string) (*Policy, error)
	ListPolicies(ctx context.Context) ([]Policy, error)
	UpdatePolicy(ctx context.Context, p *Policy) error
	DeletePolicy(ctx context.Context, id string) error
}

type BalanceStore interface {
	CreateBalance(ctx context.Context, b *Balance) error
	GetBalance(ctx context.Context, id string) (*Balance, error)
	// GetBalanceForYear looks up the (employee, year) record.
	GetBalanceForYear(ctx context.Context, employeeID string, year int) (*Balance, error)
	ListBalances(ctx context.Context, f BalanceFilter) ([]Balance, error)
	UpdateBalance(ctx context.Context, b *Balance) error
	// UpsertBalance creates or overwrites the (employee, year) record.
	UpsertBalance(ctx context.Context, b *Balance) error
	DeleteBalance(ctx context.Context, id string) error
}

type RequestStore interface {
	CreateRequest(ctx context.Context, r *Request) error
	GetRequest(ctx context.Context, id string) (*Request, error)
	ListRequests(ctx context.Context, f RequestFilter) ([]Request, error)
	UpdateRequest(ctx context.Context, r *Request) error
	DeleteRequest(ctx context.Context, id string) error
	// ApprovedRequestsInYear returns APPROVED requests of the employee whose
	// start date falls in [Jan 1 year, Jan 1 year+1), ordered by start date.
	ApprovedRequestsInYear(ctx context.Context, employeeID string, year int) ([]Request, error)
}

type DashboardStore interface {
	DashboardCounts(ctx context.Context, year int) (DashboardCounts, error)
	RecentRequests(ctx context.Context, limit int) ([]Request, error)
	RequestsByStatus(ctx context.Context, year int) ([]StatusCount, error)
	MonthlyRequests(ctx context.Context, year int) ([]MonthCount, error)
}

// Store is everything the API needs from persistence.
type Store interface {
	UserStore
	EmployeeStore
	TeamStore
	PolicyStore
	BalanceStore
	RequestStore
	DashboardStore

	// Reset deletes every row. Used by demo scenarios.
	Reset(ctx context.Context) error
}
