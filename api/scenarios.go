/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for demos. Each scenario creates users, employee profiles, a team,
	the US-Standard policy, balance records and requests that exercise a
	specific part of the balance calculation.

AVAILABLE SCENARIOS:

	standard:       Admin, manager and employee with a 2025 balance record
	carryover:      Full-year employee carrying hours over from 2024
	mid-year-hire:  Employee starting in September, accrual prorated
	overdrawn:      2024 overdrawn, negative carryover into 2025

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create users (passwords hashed with bcrypt)
 3. Create team and employee profiles
 4. Create the policy
 5. Add balance records and requests

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "carryover"}

USAGE VIA CLI:

	pto-tracker seed --scenario carryover

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add it to the 'loaders' map

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler
  - pto/balance.go: The calculation the scenarios demonstrate
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/pto-tracker/generic"
	"github.com/warp/pto-tracker/pto"
	"go.uber.org/zap"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "standard",
		Name:        "Standard",
		Description: "Admin, manager and employee on US-Standard with a 2025 balance record",
	},
	{
		ID:          "carryover",
		Name:        "Carryover",
		Description: "Full-year employee carrying 32 hours over from 2024, one approved request",
	},
	{
		ID:          "mid-year-hire",
		Name:        "Mid-Year Hire",
		Description: "Employee starting September 2025, accrual prorated to 4 months",
	},
	{
		ID:          "overdrawn",
		Name:        "Overdrawn",
		Description: "Employee who used more than accrued in 2024, negative carryover",
	},
}

func (h *Handler) loaders() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		"standard":      h.loadStandardScenario,
		"carryover":     h.loadCarryoverScenario,
		"mid-year-hire": h.loadMidYearHireScenario,
		"overdrawn":     h.loadOverdrawnScenario,
	}
}

// Scenarios returns the loadable scenarios.
func Scenarios() []ScenarioDTO {
	return scenarios
}

// Seed resets the store and loads the named scenario.
func (h *Handler) Seed(ctx context.Context, scenarioID string) error {
	load, ok := h.loaders()[scenarioID]
	if !ok {
		return generic.NewValidationError("scenario_id", fmt.Sprintf("unknown scenario %q", scenarioID))
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	h.currentScenario = ""

	if err := load(ctx); err != nil {
		return fmt.Errorf("load scenario %s: %w", scenarioID, err)
	}
	h.currentScenario = scenarioID
	h.Log.Info("scenario loaded", zap.String("scenario", scenarioID))
	return nil
}

// =============================================================================
// SCENARIO ENDPOINTS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeList(w, scenarios, "")
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	if current == "" {
		writeJSON(w, http.StatusOK, Envelope{Success: true, Data: nil})
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeData(w, http.StatusOK, s, "")
			return
		}
	}
	writeData(w, http.StatusOK, ScenarioDTO{ID: current, Name: current}, "")
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.Seed(r.Context(), req.ScenarioID); err != nil {
		if generic.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Unknown scenario", err)
			return
		}
		h.fail(w, r, err, "Failed to load scenario")
		return
	}
	writeMessage(w, fmt.Sprintf("Scenario %s loaded", req.ScenarioID))
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(w, r, err, "Failed to reset database")
		return
	}
	h.currentScenario = ""
	writeMessage(w, "Database reset")
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

const scenarioYear = 2025

// loadStandardScenario is the baseline demo organisation.
func (h *Handler) loadStandardScenario(ctx context.Context) error {
	org, err := h.seedOrganisation(ctx)
	if err != nil {
		return err
	}

	employee, err := h.seedEmployee(ctx, org, "Eden Employee", "employee@example.com", "Frontend Dev", nil)
	if err != nil {
		return err
	}

	return h.seedBalance(ctx, employee, org.policy, scenarioYear, "40", "8", "12")
}

// loadCarryoverScenario: 80.04 accrued and 48.04 used in 2024 leaves 32
// hours to carry (under the 40 hour cap). With 8 approved hours in 2025 the
// live balance is 80.04 + 32 - 8 = 104.04. The submitted and rejected
// requests do not count.
func (h *Handler) loadCarryoverScenario(ctx context.Context) error {
	org, err := h.seedOrganisation(ctx)
	if err != nil {
		return err
	}

	start := date(2022, time.March, 14)
	employee, err := h.seedEmployee(ctx, org, "Casey Carryover", "casey@example.com", "Backend Dev", &start)
	if err != nil {
		return err
	}
	if err := h.seedBalance(ctx, employee, org.policy, scenarioYear-1, "80.04", "48.04", "0"); err != nil {
		return err
	}

	requests := []struct {
		start, end time.Time
		hours      string
		status     pto.RequestStatus
		note       string
	}{
		{date(2025, time.February, 14), date(2025, time.February, 15), "8", pto.StatusApproved, "Long weekend"},
		{date(2025, time.July, 1), date(2025, time.July, 4), "24", pto.StatusSubmitted, "Summer trip"},
		{date(2025, time.May, 5), date(2025, time.May, 6), "8", pto.StatusRejected, "Release week"},
	}
	for _, r := range requests {
		if err := h.seedRequest(ctx, employee, org.manager, r.start, r.end, r.hours, r.status, r.note); err != nil {
			return err
		}
	}
	return nil
}

// loadMidYearHireScenario: a September start accrues September through
// December, 4 x 6.67 = 26.68 hours, with nothing carried or used.
func (h *Handler) loadMidYearHireScenario(ctx context.Context) error {
	org, err := h.seedOrganisation(ctx)
	if err != nil {
		return err
	}

	start := date(2025, time.September, 1)
	employee, err := h.seedEmployee(ctx, org, "Morgan Newhire", "morgan@example.com", "Support Engineer", &start)
	if err != nil {
		return err
	}

	return h.seedRequest(ctx, employee, org.manager,
		date(2025, time.December, 22), date(2025, time.December, 23), "8", pto.StatusSubmitted, "Holidays")
}

// loadOverdrawnScenario: 40 accrued and 46 used in 2024 carries -6 hours
// into 2025, so the live balance is 80.04 - 6 = 74.04.
func (h *Handler) loadOverdrawnScenario(ctx context.Context) error {
	org, err := h.seedOrganisation(ctx)
	if err != nil {
		return err
	}

	start := date(2021, time.June, 1)
	employee, err := h.seedEmployee(ctx, org, "Owen Overdrawn", "owen@example.com", "Designer", &start)
	if err != nil {
		return err
	}

	return h.seedBalance(ctx, employee, org.policy, scenarioYear-1, "40", "46", "0")
}

// =============================================================================
// SEED HELPERS
// =============================================================================

type organisation struct {
	manager *pto.User
	team    *pto.Team
	policy  *pto.Policy
}

// seedOrganisation creates the admin, the manager with a profile, the
// Engineering team and the US-Standard policy.
func (h *Handler) seedOrganisation(ctx context.Context) (*organisation, error) {
	if _, err := h.seedUser(ctx, "Admin", "admin@example.com", pto.RoleAdmin, "admin123"); err != nil {
		return nil, err
	}
	manager, err := h.seedUser(ctx, "Manny Manager", "manager@example.com", pto.RoleManager, "manager123")
	if err != nil {
		return nil, err
	}
	if err := h.Store.CreateEmployee(ctx, &pto.Employee{
		UserID:     manager.ID,
		Title:      "Engineering Manager",
		Department: "Engineering",
	}); err != nil {
		return nil, fmt.Errorf("create manager profile: %w", err)
	}

	managerID := manager.ID
	team := &pto.Team{Name: "Engineering", Description: "Builds product", ManagerID: &managerID}
	if err := h.Store.CreateTeam(ctx, team); err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}

	policy := &pto.Policy{
		Name:            "US-Standard",
		AccrualPerMonth: generic.Hours(6.67),
		CarryoverMax:    generic.Hours(40),
		EffectiveOn:     date(2025, time.January, 1),
	}
	if err := h.Store.CreatePolicy(ctx, policy); err != nil {
		return nil, fmt.Errorf("create policy: %w", err)
	}

	return &organisation{manager: manager, team: team, policy: policy}, nil
}

func (h *Handler) seedUser(ctx context.Context, name, email string, role pto.Role, password string) (*pto.User, error) {
	hash, err := h.hashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &pto.User{Name: name, Email: email, Role: role, PasswordHash: hash}
	if err := h.Store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user %s: %w", email, err)
	}
	return u, nil
}

// seedEmployee creates an EMPLOYEE user with a profile on the team,
// reporting to the team manager.
func (h *Handler) seedEmployee(ctx context.Context, org *organisation, name, email, title string, start *time.Time) (*pto.Employee, error) {
	u, err := h.seedUser(ctx, name, email, pto.RoleEmployee, "employee123")
	if err != nil {
		return nil, err
	}

	managerID, teamID := org.manager.ID, org.team.ID
	e := &pto.Employee{
		UserID:     u.ID,
		Title:      title,
		Department: "Engineering",
		StartDate:  start,
		ManagerID:  &managerID,
		TeamID:     &teamID,
	}
	if err := h.Store.CreateEmployee(ctx, e); err != nil {
		return nil, fmt.Errorf("create profile for %s: %w", email, err)
	}
	return e, nil
}

func (h *Handler) seedBalance(ctx context.Context, e *pto.Employee, p *pto.Policy, year int, accrued, used, carryover string) error {
	b := &pto.Balance{EmployeeID: e.ID, Year: year, PolicyID: p.ID}
	var err error
	if b.Accrued, err = generic.ParseAmount(accrued, generic.UnitHours); err != nil {
		return err
	}
	if b.Used, err = generic.ParseAmount(used, generic.UnitHours); err != nil {
		return err
	}
	if b.Carryover, err = generic.ParseAmount(carryover, generic.UnitHours); err != nil {
		return err
	}
	if err := h.Store.CreateBalance(ctx, b); err != nil {
		return fmt.Errorf("create %d balance: %w", year, err)
	}
	return nil
}

// seedRequest stores a request in its final status. Decided requests go
// through Decide with the manager as approver.
func (h *Handler) seedRequest(ctx context.Context, e *pto.Employee, approver *pto.User, start, end time.Time, hours string, status pto.RequestStatus, note string) error {
	amount, err := generic.ParseAmount(hours, generic.UnitHours)
	if err != nil {
		return err
	}

	r := &pto.Request{
		EmployeeID: e.ID,
		StartDate:  start,
		EndDate:    end,
		Hours:      amount,
		Status:     pto.StatusSubmitted,
		Note:       note,
	}
	switch status {
	case pto.StatusApproved:
		err = pto.Decide(r, approver, pto.DecisionApprove, "")
	case pto.StatusRejected:
		err = pto.Decide(r, approver, pto.DecisionReject, "")
	default:
		err = r.SetStatus(status)
	}
	if err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}
	if err := h.Store.CreateRequest(ctx, r); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
