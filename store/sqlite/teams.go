package sqlite

import (
	"context"
	"database/sql"

	"github.com/warp/pto-tracker/pto"
)

// =============================================================================
// TEAM STORE
// =============================================================================

const teamSelect = `
	SELECT t.id, t.name, t.description, t.manager_id, t.created_at, t.updated_at,
	       m.name, m.email, m.role
	FROM teams t
	LEFT JOIN users m ON m.id = t.manager_id`

const memberSelect = `
	SELECT e.team_id, e.id, e.title, u.id, u.name, u.email, u.role
	FROM employees e
	JOIN users u ON u.id = e.user_id`

func scanTeam(row scanner) (pto.Team, error) {
	var (
		t                          pto.Team
		managerID                  sql.NullString
		createdAt, updatedAt       string
		mgrName, mgrEmail, mgrRole sql.NullString
	)
	err := row.Scan(&t.ID, &t.Name, &t.Description, &managerID, &createdAt, &updatedAt,
		&mgrName, &mgrEmail, &mgrRole)
	if err != nil {
		return t, err
	}
	t.ManagerID = stringPtr(managerID)
	t.CreatedAt = parseStamp(createdAt)
	t.UpdatedAt = parseStamp(updatedAt)
	t.Manager = userSummary(managerID, mgrName, mgrEmail, mgrRole)
	t.Members = []pto.TeamMember{}
	return t, nil
}

// CreateTeam inserts a team. Duplicate names return ErrConflict.
func (s *Store) CreateTeam(ctx context.Context, t *pto.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (id, name, description, manager_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, nullString(t.ManagerID),
		formatStamp(t.CreatedAt), formatStamp(t.UpdatedAt),
	)
	return mapError(err, "create team")
}

// GetTeam retrieves a team with its manager and members.
func (s *Store) GetTeam(ctx context.Context, id string) (*pto.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := scanTeam(s.db.QueryRowContext(ctx, teamSelect+" WHERE t.id = ?", id))
	if err != nil {
		return nil, mapError(err, "get team")
	}

	teams := []pto.Team{t}
	if err := s.attachMembers(ctx, teams, memberSelect+" WHERE e.team_id = ? ORDER BY u.name", id); err != nil {
		return nil, err
	}
	return &teams[0], nil
}

// ListTeams returns all teams by name, each with manager and members.
func (s *Store) ListTeams(ctx context.Context) ([]pto.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams, err := s.queryTeams(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.attachMembers(ctx, teams, memberSelect+" WHERE e.team_id IS NOT NULL ORDER BY u.name"); err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *Store) queryTeams(ctx context.Context) ([]pto.Team, error) {
	rows, err := s.db.QueryContext(ctx, teamSelect+" ORDER BY t.name")
	if err != nil {
		return nil, mapError(err, "list teams")
	}
	defer rows.Close()

	teams := []pto.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, mapError(err, "scan team")
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// attachMembers runs a member query and distributes the rows onto teams.
// It must run after the team result set is closed.
func (s *Store) attachMembers(ctx context.Context, teams []pto.Team, query string, args ...any) error {
	index := make(map[string]int, len(teams))
	for i := range teams {
		index[teams[i].ID] = i
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return mapError(err, "list team members")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			teamID string
			m      pto.TeamMember
			role   string
		)
		if err := rows.Scan(&teamID, &m.EmployeeID, &m.Title, &m.User.ID, &m.User.Name, &m.User.Email, &role); err != nil {
			return mapError(err, "scan team member")
		}
		m.User.Role = pto.Role(role)
		if i, ok := index[teamID]; ok {
			teams[i].Members = append(teams[i].Members, m)
		}
	}
	return rows.Err()
}

// UpdateTeam replaces name, description and manager.
func (s *Store) UpdateTeam(ctx context.Context, t *pto.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.UpdatedAt = now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE teams SET name = ?, description = ?, manager_id = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, t.Description, nullString(t.ManagerID), formatStamp(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return mapError(err, "update team")
	}
	return requireAffected(res, "update team")
}

// DeleteTeam removes a team. Its members stay, without a team.
func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM teams WHERE id = ?", id)
	if err != nil {
		return mapDeleteError(err, "delete team")
	}
	return requireAffected(res, "delete team")
}
