package api

import (
	"context"
	"net/http"
	"time"

	"github.com/warp/pto-tracker/generic"
	"github.com/warp/pto-tracker/pto"
)

// recentRequestsLimit is how many requests the dashboard lists.
const recentRequestsLimit = 10

// =============================================================================
// DASHBOARD
// =============================================================================

// GetDashboard returns organisation-wide aggregates for a year, and, when
// userId is given, that user's profile with the year's balances and
// requests. year defaults to the current year.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r, "year", time.Now().UTC().Year())
	if err != nil {
		h.fail(w, r, err, "Failed to fetch dashboard data")
		return
	}

	ctx := r.Context()
	counts, err := h.Store.DashboardCounts(ctx, year)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch dashboard data")
		return
	}
	recent, err := h.Store.RecentRequests(ctx, recentRequestsLimit)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch dashboard data")
		return
	}
	byStatus, err := h.Store.RequestsByStatus(ctx, year)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch dashboard data")
		return
	}
	monthly, err := h.Store.MonthlyRequests(ctx, year)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch dashboard data")
		return
	}

	resp := DashboardDTO{
		Overview: OverviewDTO{
			TotalUsers:       counts.Users,
			TotalEmployees:   counts.Employees,
			TotalTeams:       counts.Teams,
			TotalPolicies:    counts.Policies,
			TotalRequests:    counts.Requests,
			PendingRequests:  counts.Pending,
			ApprovedRequests: counts.Approved,
			RejectedRequests: counts.Rejected,
		},
		RecentRequests:   toRequestDTOs(recent),
		RequestsByStatus: make([]StatusCountDTO, 0, len(byStatus)),
		MonthlyRequests:  make([]MonthCountDTO, 0, len(monthly)),
		Year:             year,
	}
	for _, s := range byStatus {
		resp.RequestsByStatus = append(resp.RequestsByStatus, StatusCountDTO{Status: s.Status, Count: s.Count})
	}
	for _, m := range monthly {
		resp.MonthlyRequests = append(resp.MonthlyRequests, MonthCountDTO{Month: m.Month, Count: m.Count})
	}

	if userID := r.URL.Query().Get("userId"); userID != "" {
		resp.UserData, err = h.dashboardUser(ctx, userID, year)
		if err != nil {
			h.fail(w, r, err, "Failed to fetch dashboard data")
			return
		}
	}

	writeData(w, http.StatusOK, resp, "")
}

// dashboardUser returns nil for an unknown user. A user without an employee
// profile gets a nil EmployeeProfile.
func (h *Handler) dashboardUser(ctx context.Context, userID string, year int) (*DashboardUserDTO, error) {
	u, err := h.Store.GetUser(ctx, userID)
	if generic.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	data := &DashboardUserDTO{User: toUserDTO(*u)}

	e, err := h.Store.GetEmployeeByUser(ctx, userID)
	if generic.IsNotFound(err) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}

	balances, err := h.Store.ListBalances(ctx, pto.BalanceFilter{EmployeeID: e.ID, Year: year})
	if err != nil {
		return nil, err
	}
	requests, err := h.Store.ListRequests(ctx, pto.RequestFilter{EmployeeID: e.ID, Year: year})
	if err != nil {
		return nil, err
	}

	profile := &EmployeeProfileDTO{
		EmployeeDTO: toEmployeeDTO(*e),
		Balances:    make([]BalanceDTO, 0, len(balances)),
		Requests:    toRequestDTOs(requests),
	}
	for _, b := range balances {
		profile.Balances = append(profile.Balances, toBalanceDTO(b))
	}
	data.EmployeeProfile = profile
	return data, nil
}

// =============================================================================
// ENUMERATIONS
// =============================================================================

// ListRoles returns every role with its capabilities.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles := make([]RoleDTO, 0, len(pto.Roles))
	for _, role := range pto.Roles {
		roles = append(roles, RoleDTO{Role: role, Capabilities: pto.CapabilitiesOf(role)})
	}
	writeList(w, roles, "Roles retrieved successfully")
}

// ListStatuses returns every request status in lifecycle order.
func (h *Handler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	writeList(w, pto.Statuses, "Statuses retrieved successfully")
}

// =============================================================================
// HEALTH
// =============================================================================

type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the store answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
