package sqlite

import (
	"context"

	"github.com/warp/pto-tracker/pto"
)

// =============================================================================
// USER STORE
// =============================================================================

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

func scanUser(row scanner) (pto.User, error) {
	var (
		u                    pto.User
		role                 string
		createdAt, updatedAt string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &createdAt, &updatedAt); err != nil {
		return u, err
	}
	u.Role = pto.Role(role)
	u.CreatedAt = parseStamp(createdAt)
	u.UpdatedAt = parseStamp(updatedAt)
	return u, nil
}

// CreateUser inserts a user. Duplicate emails return ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *pto.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if u.Role == "" {
		u.Role = pto.RoleEmployee
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role),
		formatStamp(u.CreatedAt), formatStamp(u.UpdatedAt),
	)
	return mapError(err, "create user")
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*pto.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		return nil, mapError(err, "get user")
	}
	return &u, nil
}

// ListUsers returns all users, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]pto.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, mapError(err, "list users")
	}
	defer rows.Close()

	users := []pto.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err, "scan user")
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser replaces name, email, password hash and role.
func (s *Store) UpdateUser(ctx context.Context, u *pto.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.UpdatedAt = now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET name = ?, email = ?, password_hash = ?, role = ?, updated_at = ?
		WHERE id = ?`,
		u.Name, u.Email, u.PasswordHash, string(u.Role), formatStamp(u.UpdatedAt), u.ID,
	)
	if err != nil {
		return mapError(err, "update user")
	}
	return requireAffected(res, "update user")
}

// DeleteUser removes a user. Their employee profile goes with them; teams
// and employees they managed lose their manager.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return mapDeleteError(err, "delete user")
	}
	return requireAffected(res, "delete user")
}
