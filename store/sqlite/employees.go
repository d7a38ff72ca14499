package sqlite

import (
	"context"
	"database/sql"

	"github.com/warp/pto-tracker/pto"
)

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// employeeSelect joins the user, manager and team so one query returns a
// fully populated profile.
const employeeSelect = `
	SELECT e.id, e.user_id, e.title, e.department, e.start_date, e.manager_id, e.team_id,
	       e.created_at, e.updated_at,
	       u.name, u.email, u.role,
	       m.name, m.email, m.role,
	       t.name, t.description
	FROM employees e
	JOIN users u ON u.id = e.user_id
	LEFT JOIN users m ON m.id = e.manager_id
	LEFT JOIN teams t ON t.id = e.team_id`

func scanEmployee(row scanner) (pto.Employee, error) {
	var (
		e                             pto.Employee
		startDate, managerID, teamID  sql.NullString
		createdAt, updatedAt          string
		userName, userEmail, userRole string
		mgrName, mgrEmail, mgrRole    sql.NullString
		teamName, teamDescription     sql.NullString
	)
	err := row.Scan(
		&e.ID, &e.UserID, &e.Title, &e.Department, &startDate, &managerID, &teamID,
		&createdAt, &updatedAt,
		&userName, &userEmail, &userRole,
		&mgrName, &mgrEmail, &mgrRole,
		&teamName, &teamDescription,
	)
	if err != nil {
		return e, err
	}

	e.StartDate = datePtr(startDate)
	e.ManagerID = stringPtr(managerID)
	e.TeamID = stringPtr(teamID)
	e.CreatedAt = parseStamp(createdAt)
	e.UpdatedAt = parseStamp(updatedAt)
	e.User = &pto.UserSummary{ID: e.UserID, Name: userName, Email: userEmail, Role: pto.Role(userRole)}
	e.Manager = userSummary(managerID, mgrName, mgrEmail, mgrRole)
	if teamID.Valid {
		e.Team = &pto.TeamSummary{ID: teamID.String, Name: teamName.String, Description: teamDescription.String}
	}
	return e, nil
}

// CreateEmployee inserts a profile. A second profile for the same user
// returns ErrConflict; an unknown user, manager or team returns
// ErrInvalidReference.
func (s *Store) CreateEmployee(ctx context.Context, e *pto.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&e.ID, &e.CreatedAt, &e.UpdatedAt)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, user_id, title, department, start_date, manager_id, team_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Title, e.Department, nullDate(e.StartDate),
		nullString(e.ManagerID), nullString(e.TeamID),
		formatStamp(e.CreatedAt), formatStamp(e.UpdatedAt),
	)
	return mapError(err, "create employee")
}

// GetEmployee retrieves a profile by ID.
func (s *Store) GetEmployee(ctx context.Context, id string) (*pto.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := scanEmployee(s.db.QueryRowContext(ctx, employeeSelect+" WHERE e.id = ?", id))
	if err != nil {
		return nil, mapError(err, "get employee")
	}
	return &e, nil
}

// GetEmployeeByUser retrieves the profile belonging to a user.
func (s *Store) GetEmployeeByUser(ctx context.Context, userID string) (*pto.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := scanEmployee(s.db.QueryRowContext(ctx, employeeSelect+" WHERE e.user_id = ?", userID))
	if err != nil {
		return nil, mapError(err, "get employee by user")
	}
	return &e, nil
}

// ListEmployees returns all profiles ordered by the user's name.
func (s *Store) ListEmployees(ctx context.Context) ([]pto.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, employeeSelect+" ORDER BY u.name ASC, e.created_at ASC")
	if err != nil {
		return nil, mapError(err, "list employees")
	}
	defer rows.Close()

	employees := []pto.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, mapError(err, "scan employee")
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// UpdateEmployee replaces the mutable profile columns. The owning user
// cannot change.
func (s *Store) UpdateEmployee(ctx context.Context, e *pto.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.UpdatedAt = now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE employees
		SET title = ?, department = ?, start_date = ?, manager_id = ?, team_id = ?, updated_at = ?
		WHERE id = ?`,
		e.Title, e.Department, nullDate(e.StartDate),
		nullString(e.ManagerID), nullString(e.TeamID), formatStamp(e.UpdatedAt), e.ID,
	)
	if err != nil {
		return mapError(err, "update employee")
	}
	return requireAffected(res, "update employee")
}

// DeleteEmployee removes a profile together with its balances and requests.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return mapDeleteError(err, "delete employee")
	}
	return requireAffected(res, "delete employee")
}
