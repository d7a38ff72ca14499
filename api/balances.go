/*
balances.go - Balance records and the live balance calculation

PURPOSE:
  CRUD over stored per-year balance records, plus POST /calculate, which
  loads the calculator's inputs from the store and returns the live figure.

CALCULATION INPUTS:
  1. Policy:    accrual rate and carryover cap
  2. Employee:  start date for proration (optional)
  3. Approved:  APPROVED requests starting in the year
  4. Prior:     the stored balance record for year - 1 (optional)

  Stored records are snapshots. The calculation never reads the current
  year's record; it only reports it as existingBalance so the UI can show
  drift. With "save": true the result is upserted as the year's record.

SEE ALSO:
  - pto/balance.go: The calculation itself
*/
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/warp/pto-tracker/generic"
	"github.com/warp/pto-tracker/pto"
	"go.uber.org/zap"
)

// =============================================================================
// BALANCE RECORD ENDPOINTS
// =============================================================================

// ListBalances returns stored records, optionally filtered by employeeId,
// year and policyId query parameters.
func (h *Handler) ListBalances(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, err := queryYear(r, "year", 0)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch balances")
		return
	}

	balances, err := h.Store.ListBalances(r.Context(), pto.BalanceFilter{
		EmployeeID: q.Get("employeeId"),
		Year:       year,
		PolicyID:   q.Get("policyId"),
	})
	if err != nil {
		h.fail(w, r, err, "Failed to fetch balances")
		return
	}

	dtos := make([]BalanceDTO, 0, len(balances))
	for _, b := range balances {
		dtos = append(dtos, toBalanceDTO(b))
	}
	writeList(w, dtos, "")
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	b, err := h.Store.GetBalance(r.Context(), pathID(r))
	if err != nil {
		h.notFoundOr(w, r, err, "Balance not found", "Failed to fetch balance")
		return
	}
	writeData(w, http.StatusOK, toBalanceDTO(*b), "")
}

// CreateBalance stores a record by hand. One record per employee and year.
func (h *Handler) CreateBalance(w http.ResponseWriter, r *http.Request) {
	var req CreateBalanceRequest
	if !decode(w, r, &req) {
		return
	}

	b := pto.Balance{
		EmployeeID: req.EmployeeID,
		Year:       int(req.Year),
		PolicyID:   req.PolicyID,
		Accrued:    hoursOf(req.Accrued),
		Used:       hoursOf(req.Used),
		Carryover:  hoursOf(req.Carryover),
	}
	if err := b.Validate(); err != nil {
		h.fail(w, r, err, "Failed to create balance")
		return
	}

	ctx := r.Context()
	if err := h.Store.CreateBalance(ctx, &b); err != nil {
		h.fail(w, r, err, "Failed to create balance")
		return
	}

	created, err := h.Store.GetBalance(ctx, b.ID)
	if err != nil {
		h.fail(w, r, err, "Failed to create balance")
		return
	}
	writeData(w, http.StatusCreated, toBalanceDTO(*created), "Balance created successfully")
}

func (h *Handler) UpdateBalance(w http.ResponseWriter, r *http.Request) {
	var req UpdateBalanceRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	b, err := h.Store.GetBalance(ctx, pathID(r))
	if err != nil {
		h.notFoundOr(w, r, err, "Balance not found", "Failed to update balance")
		return
	}
	before := *b

	if req.Year != nil {
		b.Year = int(*req.Year)
	}
	if req.PolicyID != nil {
		b.PolicyID = *req.PolicyID
	}
	if req.Accrued != nil {
		b.Accrued = hoursOf(req.Accrued)
	}
	if req.Used != nil {
		b.Used = hoursOf(req.Used)
	}
	if req.Carryover != nil {
		b.Carryover = hoursOf(req.Carryover)
	}
	if err := b.ValidateUpdate(before); err != nil {
		h.fail(w, r, err, "Failed to update balance")
		return
	}

	if err := h.Store.UpdateBalance(ctx, b); err != nil {
		h.fail(w, r, err, "Failed to update balance")
		return
	}

	updated, err := h.Store.GetBalance(ctx, b.ID)
	if err != nil {
		h.fail(w, r, err, "Failed to update balance")
		return
	}
	writeData(w, http.StatusOK, toBalanceDTO(*updated), "Balance updated successfully")
}

func (h *Handler) DeleteBalance(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteBalance(r.Context(), pathID(r)); err != nil {
		h.notFoundOr(w, r, err, "Balance not found", "Failed to delete balance")
		return
	}
	writeMessage(w, "Balance deleted successfully")
}

// =============================================================================
// CALCULATION
// =============================================================================

var (
	errPolicyNotFound   = errors.New("no policy found with the provided ID")
	errEmployeeNotFound = errors.New("no employee found with the provided ID")
)

// CalculateBalance computes the live balance for an employee, policy and
// year. See the file header for the inputs.
func (h *Handler) CalculateBalance(w http.ResponseWriter, r *http.Request) {
	var req CalculateBalanceRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	year := int(req.Year)
	policy, err := h.Store.GetPolicy(ctx, req.PolicyID)
	if err != nil {
		if generic.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Policy not found", errPolicyNotFound)
			return
		}
		h.fail(w, r, err, "Failed to calculate PTO balance")
		return
	}
	employee, err := h.Store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		if generic.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Employee not found", errEmployeeNotFound)
			return
		}
		h.fail(w, r, err, "Failed to calculate PTO balance")
		return
	}

	result, approved, err := h.calculate(ctx, employee, policy, year)
	if err != nil {
		h.fail(w, r, err, "Failed to calculate PTO balance")
		return
	}

	existing, err := h.balanceForYear(ctx, employee.ID, year)
	if err != nil {
		h.fail(w, r, err, "Failed to calculate PTO balance")
		return
	}

	message := "PTO balance calculated successfully"
	if req.Save {
		snap := result.Snapshot(employee.ID, policy.ID)
		if err := h.Store.UpsertBalance(ctx, &snap); err != nil {
			h.fail(w, r, err, "Failed to save PTO balance")
			return
		}
		existing = &snap
		message = "PTO balance calculated and saved successfully"
		h.Log.Info("balance snapshot saved",
			zap.String("employee_id", employee.ID),
			zap.Int("year", year),
			zap.String("available", result.Available.String()),
		)
	}

	resp := CalculationDTO{
		Employee: CalcEmployeeDTO{ID: employee.ID, StartDate: generic.FormatTimePtr(employee.StartDate)},
		Policy: CalcPolicyDTO{
			ID:           policy.ID,
			Name:         policy.Name,
			AccrualHrsMo: policy.AccrualPerMonth.Float64(),
			CarryoverMax: policy.CarryoverMax.Float64(),
		},
		Year: year,
		Calculation: CalcResultDTO{
			AccrualMonths:         result.AccrualMonths,
			TotalAccrual:          result.TotalAccrual.Float64(),
			Carryover:             result.Carryover.Float64(),
			TotalUsed:             result.TotalUsed.Float64(),
			AvailableBalance:      result.Available.Float64(),
			ApprovedRequestsCount: approved,
		},
		ExistingBalance: toCalcStoredDTO(existing),
		Saved:           req.Save,
	}
	if employee.User != nil {
		resp.Employee.Name = employee.User.Name
		resp.Employee.Email = employee.User.Email
	}
	writeData(w, http.StatusOK, resp, message)
}

// calculate loads the inputs for one employee-year and runs the calculator.
// It also returns how many approved requests were counted.
func (h *Handler) calculate(ctx context.Context, e *pto.Employee, p *pto.Policy, year int) (pto.BalanceResult, int, error) {
	approved, err := h.Store.ApprovedRequestsInYear(ctx, e.ID, year)
	if err != nil {
		return pto.BalanceResult{}, 0, err
	}

	var prior *pto.PriorYearBalance
	prev, err := h.balanceForYear(ctx, e.ID, year-1)
	if err != nil {
		return pto.BalanceResult{}, 0, err
	}
	if prev != nil {
		prior = &pto.PriorYearBalance{Accrued: prev.Accrued, Used: prev.Used}
	}

	result := h.Calc.Compute(pto.BalanceInput{
		Policy:      *p,
		TenureStart: e.StartDate,
		Approved:    pto.UsageFrom(approved),
		PriorYear:   prior,
		Year:        year,
	})
	return result, len(approved), nil
}

// balanceForYear returns the stored record or nil when there is none.
func (h *Handler) balanceForYear(ctx context.Context, employeeID string, year int) (*pto.Balance, error) {
	b, err := h.Store.GetBalanceForYear(ctx, employeeID, year)
	if generic.IsNotFound(err) {
		return nil, nil
	}
	return b, err
}
