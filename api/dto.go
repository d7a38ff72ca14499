/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model from the wire contract: hour quantities go out as JSON
  numbers, dates as RFC 3339 strings, and password hashes never go out.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - to*DTO: Domain -> DTO converters

VALIDATION:
  Request types carry validator tags for presence and format (see
  validate.go). Domain rules such as non-negative hours or start-before-end
  are checked by the pto types themselves so every entry point shares them.

  Update requests use pointer fields: a missing field is left unchanged. An
  empty string clears an optional reference (managerId, teamId, startDate).

SEE ALSO:
  - handlers.go: Envelope and helpers
  - pto/types.go: Domain types
*/
package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/pto-tracker/generic"
	"github.com/warp/pto-tracker/pto"
)

// =============================================================================
// USERS
// =============================================================================

type UserDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      pto.Role  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserSummaryDTO struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  pto.Role `json:"role,omitempty"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=EMPLOYEE MANAGER ADMIN"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=1"`
	Role     *string `json:"role" validate:"omitempty,oneof=EMPLOYEE MANAGER ADMIN"`
}

func toUserDTO(u pto.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserSummaryDTO(s *pto.UserSummary) *UserSummaryDTO {
	if s == nil {
		return nil
	}
	return &UserSummaryDTO{ID: s.ID, Name: s.Name, Email: s.Email, Role: s.Role}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	Title      string          `json:"title"`
	Department string          `json:"department"`
	StartDate  *string         `json:"startDate"`
	ManagerID  *string         `json:"managerId"`
	TeamID     *string         `json:"teamId"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	User       *UserSummaryDTO `json:"user,omitempty"`
	Manager    *UserSummaryDTO `json:"manager"`
	Team       *TeamSummaryDTO `json:"team"`
}

type CreateEmployeeRequest struct {
	UserID     string  `json:"userId" validate:"required"`
	Title      string  `json:"title"`
	Department string  `json:"department"`
	StartDate  *string `json:"startDate" validate:"omitempty,date"`
	ManagerID  *string `json:"managerId"`
	TeamID     *string `json:"teamId"`
}

type UpdateEmployeeRequest struct {
	Title      *string `json:"title"`
	Department *string `json:"department"`
	StartDate  *string `json:"startDate" validate:"omitempty,date"`
	ManagerID  *string `json:"managerId"`
	TeamID     *string `json:"teamId"`
}

func toEmployeeDTO(e pto.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:         e.ID,
		UserID:     e.UserID,
		Title:      e.Title,
		Department: e.Department,
		StartDate:  generic.FormatTimePtr(e.StartDate),
		ManagerID:  e.ManagerID,
		TeamID:     e.TeamID,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
		User:       toUserSummaryDTO(e.User),
		Manager:    toUserSummaryDTO(e.Manager),
	}
	if e.Team != nil {
		dto.Team = &TeamSummaryDTO{ID: e.Team.ID, Name: e.Team.Name, Description: e.Team.Description}
	}
	return dto
}

// =============================================================================
// TEAMS
// =============================================================================

type TeamDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ManagerID   *string         `json:"managerId"`
	Manager     *UserSummaryDTO `json:"manager"`
	Members     []TeamMemberDTO `json:"members"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type TeamSummaryDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type TeamMemberDTO struct {
	ID    string         `json:"id"` // employee id
	Title string         `json:"title"`
	User  UserSummaryDTO `json:"user"`
}

type CreateTeamRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	ManagerID   *string `json:"managerId"`
}

type UpdateTeamRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	ManagerID   *string `json:"managerId"`
}

func toTeamDTO(t pto.Team) TeamDTO {
	members := make([]TeamMemberDTO, 0, len(t.Members))
	for _, m := range t.Members {
		members = append(members, TeamMemberDTO{
			ID:    m.EmployeeID,
			Title: m.Title,
			User:  *toUserSummaryDTO(&m.User),
		})
	}
	return TeamDTO{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		ManagerID:   t.ManagerID,
		Manager:     toUserSummaryDTO(t.Manager),
		Members:     members,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// =============================================================================
// POLICIES
// =============================================================================

type PolicyDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	AccrualHrsMo float64   `json:"accrualHrsMo"`
	CarryoverMax float64   `json:"carryoverMax"`
	EffectiveOn  string    `json:"effectiveOn"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreatePolicyRequest struct {
	Name         string           `json:"name" validate:"required"`
	AccrualHrsMo *decimal.Decimal `json:"accrualHrsMo" validate:"required"`
	CarryoverMax *decimal.Decimal `json:"carryoverMax" validate:"required"`
	EffectiveOn  string           `json:"effectiveOn" validate:"required,date"`
}

type UpdatePolicyRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1"`
	AccrualHrsMo *decimal.Decimal `json:"accrualHrsMo"`
	CarryoverMax *decimal.Decimal `json:"carryoverMax"`
	EffectiveOn  *string          `json:"effectiveOn" validate:"omitempty,date"`
}

func toPolicyDTO(p pto.Policy) PolicyDTO {
	return PolicyDTO{
		ID:           p.ID,
		Name:         p.Name,
		AccrualHrsMo: p.AccrualPerMonth.Float64(),
		CarryoverMax: p.CarryoverMax.Float64(),
		EffectiveOn:  generic.FormatTime(p.EffectiveOn),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// =============================================================================
// BALANCES
// =============================================================================

type BalanceDTO struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	Year         int       `json:"year"`
	PolicyID     string    `json:"policyId"`
	Accrued      float64   `json:"accrued"`
	Used         float64   `json:"used"`
	Carryover    float64   `json:"carryover"`
	PolicyName   string    `json:"policyName,omitempty"`
	EmployeeName string    `json:"employeeName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateBalanceRequest struct {
	EmployeeID string           `json:"employeeId" validate:"required"`
	Year       yearField        `json:"year" validate:"required"`
	PolicyID   string           `json:"policyId" validate:"required"`
	Accrued    *decimal.Decimal `json:"accrued"`
	Used       *decimal.Decimal `json:"used"`
	Carryover  *decimal.Decimal `json:"carryover"`
}

type UpdateBalanceRequest struct {
	Year      *yearField       `json:"year"`
	PolicyID  *string          `json:"policyId" validate:"omitempty,min=1"`
	Accrued   *decimal.Decimal `json:"accrued"`
	Used      *decimal.Decimal `json:"used"`
	Carryover *decimal.Decimal `json:"carryover"`
}

// CalculateBalanceRequest year bounds match pto.MinBalanceYear and
// pto.MaxBalanceYear, since a saved result becomes a balance record.
type CalculateBalanceRequest struct {
	EmployeeID string    `json:"employeeId" validate:"required"`
	Year       yearField `json:"year" validate:"required,min=2000,max=3000"`
	PolicyID   string    `json:"policyId" validate:"required"`
	Save       bool      `json:"save"`
}

// CalculationDTO is the live balance for one employee, policy and year.
type CalculationDTO struct {
	Employee        CalcEmployeeDTO `json:"employee"`
	Policy          CalcPolicyDTO   `json:"policy"`
	Year            int             `json:"year"`
	Calculation     CalcResultDTO   `json:"calculation"`
	ExistingBalance *CalcStoredDTO  `json:"existingBalance"`
	Saved           bool            `json:"saved"`
}

type CalcEmployeeDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	StartDate *string `json:"startDate"`
}

type CalcPolicyDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	AccrualHrsMo float64 `json:"accrualHrsMo"`
	CarryoverMax float64 `json:"carryoverMax"`
}

type CalcResultDTO struct {
	AccrualMonths         int     `json:"accrualMonths"`
	TotalAccrual          float64 `json:"totalAccrual"`
	Carryover             float64 `json:"carryover"`
	TotalUsed             float64 `json:"totalUsed"`
	AvailableBalance      float64 `json:"availableBalance"`
	ApprovedRequestsCount int     `json:"approvedRequestsCount"`
}

type CalcStoredDTO struct {
	ID        string  `json:"id"`
	Accrued   float64 `json:"accrued"`
	Used      float64 `json:"used"`
	Carryover float64 `json:"carryover"`
}

func toBalanceDTO(b pto.Balance) BalanceDTO {
	return BalanceDTO{
		ID:           b.ID,
		EmployeeID:   b.EmployeeID,
		Year:         b.Year,
		PolicyID:     b.PolicyID,
		Accrued:      b.Accrued.Float64(),
		Used:         b.Used.Float64(),
		Carryover:    b.Carryover.Float64(),
		PolicyName:   b.PolicyName,
		EmployeeName: b.EmployeeName,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func toCalcStoredDTO(b *pto.Balance) *CalcStoredDTO {
	if b == nil {
		return nil
	}
	return &CalcStoredDTO{
		ID:        b.ID,
		Accrued:   b.Accrued.Float64(),
		Used:      b.Used.Float64(),
		Carryover: b.Carryover.Float64(),
	}
}

// =============================================================================
// REQUESTS
// =============================================================================

type RequestDTO struct {
	ID           string            `json:"id"`
	EmployeeID   string            `json:"employeeId"`
	EmployeeName string            `json:"employeeName,omitempty"`
	StartDate    string            `json:"startDate"`
	EndDate      string            `json:"endDate"`
	Hours        float64           `json:"hours"`
	Status       pto.RequestStatus `json:"status"`
	ApproverID   *string           `json:"approverId"`
	Approver     *UserSummaryDTO   `json:"approver"`
	Note         string            `json:"note"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

type CreateRequestRequest struct {
	EmployeeID string           `json:"employeeId" validate:"required"`
	StartDate  string           `json:"startDate" validate:"required,date"`
	EndDate    string           `json:"endDate" validate:"required,date"`
	Hours      *decimal.Decimal `json:"hours" validate:"required"`
	Status     string           `json:"status"`
	Note       string           `json:"note"`
}

type UpdateRequestRequest struct {
	StartDate *string          `json:"startDate" validate:"omitempty,date"`
	EndDate   *string          `json:"endDate" validate:"omitempty,date"`
	Hours     *decimal.Decimal `json:"hours"`
	Status    *string          `json:"status"`
	Note      *string          `json:"note"`
}

// DecisionRequest is the body of approve and reject.
type DecisionRequest struct {
	ApproverID string `json:"approverId" validate:"required"`
	Note       string `json:"note"`
}

func toRequestDTO(r pto.Request) RequestDTO {
	return RequestDTO{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		StartDate:    generic.FormatTime(r.StartDate),
		EndDate:      generic.FormatTime(r.EndDate),
		Hours:        r.Hours.Float64(),
		Status:       r.Status,
		ApproverID:   r.ApproverID,
		Approver:     toUserSummaryDTO(r.Approver),
		Note:         r.Note,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toRequestDTOs(rs []pto.Request) []RequestDTO {
	out := make([]RequestDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRequestDTO(r))
	}
	return out
}

// =============================================================================
// DASHBOARD
// =============================================================================

type DashboardDTO struct {
	Overview         OverviewDTO       `json:"overview"`
	RecentRequests   []RequestDTO      `json:"recentRequests"`
	RequestsByStatus []StatusCountDTO  `json:"requestsByStatus"`
	MonthlyRequests  []MonthCountDTO   `json:"monthlyRequests"`
	UserData         *DashboardUserDTO `json:"userData"`
	Year             int               `json:"year"`
}

type OverviewDTO struct {
	TotalUsers       int `json:"totalUsers"`
	TotalEmployees   int `json:"totalEmployees"`
	TotalTeams       int `json:"totalTeams"`
	TotalPolicies    int `json:"totalPolicies"`
	TotalRequests    int `json:"totalRequests"`
	PendingRequests  int `json:"pendingRequests"`
	ApprovedRequests int `json:"approvedRequests"`
	RejectedRequests int `json:"rejectedRequests"`
}

type StatusCountDTO struct {
	Status pto.RequestStatus `json:"status"`
	Count  int               `json:"count"`
}

type MonthCountDTO struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type DashboardUserDTO struct {
	User            UserDTO             `json:"user"`
	EmployeeProfile *EmployeeProfileDTO `json:"employeeProfile"`
}

// EmployeeProfileDTO is an employee with the dashboard year's records.
type EmployeeProfileDTO struct {
	EmployeeDTO
	Balances []BalanceDTO `json:"balances"`
	Requests []RequestDTO `json:"requests"`
}

// =============================================================================
// ENUMERATIONS AND SCENARIOS
// =============================================================================

type RoleDTO struct {
	Role         pto.Role         `json:"role"`
	Capabilities []pto.Capability `json:"capabilities"`
}

// ScenarioDTO describes a loadable demo dataset.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func hoursOf(d *decimal.Decimal) generic.Amount {
	if d == nil {
		return generic.ZeroHours()
	}
	return generic.NewAmountFromDecimal(*d, generic.UnitHours)
}

// yearField is a year that decodes from a JSON number or a numeric string
// ("2025"), since form inputs send the latter.
type yearField int

func (y *yearField) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("year must be a whole number, got %s", data)
	}
	*y = yearField(n)
	return nil
}

// parseOptionalDate maps "" to nil.
func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := generic.ParseTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// optionalRef maps "" to nil.
func optionalRef(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
