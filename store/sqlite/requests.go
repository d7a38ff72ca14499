package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/warp/pto-tracker/generic"
	"github.com/warp/pto-tracker/pto"
)

// =============================================================================
// REQUEST STORE
// =============================================================================

const requestSelect = `
	SELECT r.id, r.employee_id, r.start_date, r.end_date, r.hours, r.status, r.approver_id, r.note,
	       r.created_at, r.updated_at,
	       eu.name,
	       a.name, a.email, a.role
	FROM requests r
	JOIN employees e ON e.id = r.employee_id
	JOIN users eu ON eu.id = e.user_id
	LEFT JOIN users a ON a.id = r.approver_id`

func scanRequest(row scanner) (pto.Request, error) {
	var (
		r                                         pto.Request
		startDate, endDate, hours                 string
		status                                    string
		approverID                                sql.NullString
		createdAt, updatedAt                      string
		approverName, approverEmail, approverRole sql.NullString
	)
	err := row.Scan(&r.ID, &r.EmployeeID, &startDate, &endDate, &hours, &status, &approverID, &r.Note,
		&createdAt, &updatedAt, &r.EmployeeName, &approverName, &approverEmail, &approverRole)
	if err != nil {
		return r, err
	}

	if r.Hours, err = generic.ParseAmount(hours, generic.UnitHours); err != nil {
		return r, fmt.Errorf("request %s: %w", r.ID, err)
	}
	r.StartDate = parseDate(startDate)
	r.EndDate = parseDate(endDate)
	r.Status = pto.RequestStatus(status)
	r.ApproverID = stringPtr(approverID)
	r.CreatedAt = parseStamp(createdAt)
	r.UpdatedAt = parseStamp(updatedAt)
	r.Approver = userSummary(approverID, approverName, approverEmail, approverRole)
	return r, nil
}

// CreateRequest inserts a request. Status defaults to DRAFT.
func (s *Store) CreateRequest(ctx context.Context, r *pto.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if r.Status == "" {
		r.Status = pto.StatusDraft
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (id, employee_id, start_date, end_date, hours, status, approver_id, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.EmployeeID, formatDate(r.StartDate), formatDate(r.EndDate), r.Hours.String(),
		string(r.Status), nullString(r.ApproverID), r.Note,
		formatStamp(r.CreatedAt), formatStamp(r.UpdatedAt),
	)
	return mapError(err, "create request")
}

// GetRequest retrieves a request by ID.
func (s *Store) GetRequest(ctx context.Context, id string) (*pto.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := scanRequest(s.db.QueryRowContext(ctx, requestSelect+" WHERE r.id = ?", id))
	if err != nil {
		return nil, mapError(err, "get request")
	}
	return &r, nil
}

// ListRequests returns requests matching f, newest first and then by start
// date.
func (s *Store) ListRequests(ctx context.Context, f pto.RequestFilter) ([]pto.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		where []string
		args  []any
	)
	if f.EmployeeID != "" {
		where = append(where, "r.employee_id = ?")
		args = append(args, f.EmployeeID)
	}
	if f.Status != "" {
		where = append(where, "r.status = ?")
		args = append(args, string(f.Status))
	}
	if f.ApproverID != "" {
		where = append(where, "r.approver_id = ?")
		args = append(args, f.ApproverID)
	}
	if f.Year != 0 {
		from, to := yearBounds(f.Year)
		where = append(where, "r.start_date >= ? AND r.start_date < ?")
		args = append(args, from, to)
	}

	query := requestSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY r.created_at DESC, r.start_date ASC"

	return s.queryRequests(ctx, "list requests", query, args...)
}

// ApprovedRequestsInYear returns the employee's APPROVED requests starting in
// [Jan 1 year, Jan 1 year+1), by start date. This is the calculator's usage
// input.
func (s *Store) ApprovedRequestsInYear(ctx context.Context, employeeID string, year int) ([]pto.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := yearBounds(year)
	return s.queryRequests(ctx, "approved requests", requestSelect+`
		WHERE r.employee_id = ? AND r.status = ? AND r.start_date >= ? AND r.start_date < ?
		ORDER BY r.start_date ASC`,
		employeeID, string(pto.StatusApproved), from, to)
}

func (s *Store) queryRequests(ctx context.Context, op, query string, args ...any) ([]pto.Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, op)
	}
	defer rows.Close()

	requests := []pto.Request{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, mapError(err, "scan request")
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// UpdateRequest replaces dates, hours, status, approver and note.
func (s *Store) UpdateRequest(ctx context.Context, r *pto.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.UpdatedAt = now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE requests
		SET start_date = ?, end_date = ?, hours = ?, status = ?, approver_id = ?, note = ?, updated_at = ?
		WHERE id = ?`,
		formatDate(r.StartDate), formatDate(r.EndDate), r.Hours.String(), string(r.Status),
		nullString(r.ApproverID), r.Note, formatStamp(r.UpdatedAt), r.ID,
	)
	if err != nil {
		return mapError(err, "update request")
	}
	return requireAffected(res, "update request")
}

// DeleteRequest removes a request.
func (s *Store) DeleteRequest(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM requests WHERE id = ?", id)
	if err != nil {
		return mapDeleteError(err, "delete request")
	}
	return requireAffected(res, "delete request")
}
