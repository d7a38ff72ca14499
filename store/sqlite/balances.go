package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/warp/pto-tracker/generic"
	"github.com/warp/pto-tracker/pto"
)

// =============================================================================
// BALANCE STORE
// =============================================================================

const balanceSelect = `
	SELECT b.id, b.employee_id, b.year, b.policy_id, b.accrued, b.used, b.carryover,
	       b.created_at, b.updated_at,
	       p.name, u.name
	FROM balances b
	JOIN policies p ON p.id = b.policy_id
	JOIN employees e ON e.id = b.employee_id
	JOIN users u ON u.id = e.user_id`

func scanBalance(row scanner) (pto.Balance, error) {
	var (
		b                        pto.Balance
		accrued, used, carryover string
		createdAt, updatedAt     string
	)
	err := row.Scan(&b.ID, &b.EmployeeID, &b.Year, &b.PolicyID, &accrued, &used, &carryover,
		&createdAt, &updatedAt, &b.PolicyName, &b.EmployeeName)
	if err != nil {
		return b, err
	}

	for _, f := range []struct {
		dst *generic.Amount
		src string
	}{{&b.Accrued, accrued}, {&b.Used, used}, {&b.Carryover, carryover}} {
		if *f.dst, err = generic.ParseAmount(f.src, generic.UnitHours); err != nil {
			return b, fmt.Errorf("balance %s: %w", b.ID, err)
		}
	}
	b.CreatedAt = parseStamp(createdAt)
	b.UpdatedAt = parseStamp(updatedAt)
	return b, nil
}

// CreateBalance inserts a balance. A second record for the same employee and
// year returns ErrConflict.
func (s *Store) CreateBalance(ctx context.Context, b *pto.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&b.ID, &b.CreatedAt, &b.UpdatedAt)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO balances (id, employee_id, year, policy_id, accrued, used, carryover, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.EmployeeID, b.Year, b.PolicyID,
		b.Accrued.String(), b.Used.String(), b.Carryover.String(),
		formatStamp(b.CreatedAt), formatStamp(b.UpdatedAt),
	)
	return mapError(err, "create balance")
}

// GetBalance retrieves a balance by ID.
func (s *Store) GetBalance(ctx context.Context, id string) (*pto.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := scanBalance(s.db.QueryRowContext(ctx, balanceSelect+" WHERE b.id = ?", id))
	if err != nil {
		return nil, mapError(err, "get balance")
	}
	return &b, nil
}

// GetBalanceForYear retrieves the balance an employee holds for a year.
func (s *Store) GetBalanceForYear(ctx context.Context, employeeID string, year int) (*pto.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := scanBalance(s.db.QueryRowContext(ctx,
		balanceSelect+" WHERE b.employee_id = ? AND b.year = ?", employeeID, year))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("get %d balance", year))
	}
	return &b, nil
}

// ListBalances returns balances matching f, latest year first.
func (s *Store) ListBalances(ctx context.Context, f pto.BalanceFilter) ([]pto.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		where []string
		args  []any
	)
	if f.EmployeeID != "" {
		where = append(where, "b.employee_id = ?")
		args = append(args, f.EmployeeID)
	}
	if f.Year != 0 {
		where = append(where, "b.year = ?")
		args = append(args, f.Year)
	}
	if f.PolicyID != "" {
		where = append(where, "b.policy_id = ?")
		args = append(args, f.PolicyID)
	}

	query := balanceSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY b.year DESC, u.name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list balances")
	}
	defer rows.Close()

	balances := []pto.Balance{}
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, mapError(err, "scan balance")
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// UpdateBalance replaces every column except the ID.
func (s *Store) UpdateBalance(ctx context.Context, b *pto.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.UpdatedAt = now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE balances
		SET employee_id = ?, year = ?, policy_id = ?, accrued = ?, used = ?, carryover = ?, updated_at = ?
		WHERE id = ?`,
		b.EmployeeID, b.Year, b.PolicyID,
		b.Accrued.String(), b.Used.String(), b.Carryover.String(),
		formatStamp(b.UpdatedAt), b.ID,
	)
	if err != nil {
		return mapError(err, "update balance")
	}
	return requireAffected(res, "update balance")
}

// UpsertBalance writes the (employee, year) record, creating it if needed.
// The stored ID and created_at are written back into b.
func (s *Store) UpsertBalance(ctx context.Context, b *pto.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&b.ID, &b.CreatedAt, &b.UpdatedAt)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO balances (id, employee_id, year, policy_id, accrued, used, carryover, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, year) DO UPDATE SET
			policy_id = excluded.policy_id,
			accrued = excluded.accrued,
			used = excluded.used,
			carryover = excluded.carryover,
			updated_at = excluded.updated_at`,
		b.ID, b.EmployeeID, b.Year, b.PolicyID,
		b.Accrued.String(), b.Used.String(), b.Carryover.String(),
		formatStamp(b.CreatedAt), formatStamp(b.UpdatedAt),
	)
	if err != nil {
		return mapError(err, "upsert balance")
	}

	var createdAt string
	err = tx.QueryRowContext(ctx,
		"SELECT id, created_at FROM balances WHERE employee_id = ? AND year = ?",
		b.EmployeeID, b.Year,
	).Scan(&b.ID, &createdAt)
	if err != nil {
		return mapError(err, "upsert balance")
	}
	b.CreatedAt = parseStamp(createdAt)

	return tx.Commit()
}

// DeleteBalance removes a balance.
func (s *Store) DeleteBalance(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM balances WHERE id = ?", id)
	if err != nil {
		return mapDeleteError(err, "delete balance")
	}
	return requireAffected(res, "delete balance")
}
