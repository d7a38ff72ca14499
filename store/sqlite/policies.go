package sqlite

import (
	"context"
	"fmt"

	"github.com/warp/pto-tracker/generic"
	"github.com/warp/pto-tracker/pto"
)

// =============================================================================
// POLICY STORE
// =============================================================================

const policyColumns = `id, name, accrual_hrs_mo, carryover_max, effective_on, created_at, updated_at`

func scanPolicy(row scanner) (pto.Policy, error) {
	var (
		p                    pto.Policy
		accrual, carryover   string
		effectiveOn          string
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.Name, &accrual, &carryover, &effectiveOn, &createdAt, &updatedAt); err != nil {
		return p, err
	}

	var err error
	if p.AccrualPerMonth, err = generic.ParseAmount(accrual, generic.UnitHours); err != nil {
		return p, fmt.Errorf("policy %s: %w", p.ID, err)
	}
	if p.CarryoverMax, err = generic.ParseAmount(carryover, generic.UnitHours); err != nil {
		return p, fmt.Errorf("policy %s: %w", p.ID, err)
	}
	p.EffectiveOn = parseDate(effectiveOn)
	p.CreatedAt = parseStamp(createdAt)
	p.UpdatedAt = parseStamp(updatedAt)
	return p, nil
}

// CreatePolicy inserts a policy. Duplicate names return ErrConflict.
func (s *Store) CreatePolicy(ctx context.Context, p *pto.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO policies (id, name, accrual_hrs_mo, carryover_max, effective_on, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.AccrualPerMonth.String(), p.CarryoverMax.String(),
		formatDate(p.EffectiveOn), formatStamp(p.CreatedAt), formatStamp(p.UpdatedAt),
	)
	return mapError(err, "create policy")
}

// GetPolicy retrieves a policy by ID.
func (s *Store) GetPolicy(ctx context.Context, id string) (*pto.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanPolicy(s.db.QueryRowContext(ctx,
		"SELECT "+policyColumns+" FROM policies WHERE id = ?", id))
	if err != nil {
		return nil, mapError(err, "get policy")
	}
	return &p, nil
}

// ListPolicies returns all policies, most recently effective first.
func (s *Store) ListPolicies(ctx context.Context) ([]pto.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+policyColumns+" FROM policies ORDER BY effective_on DESC, name ASC")
	if err != nil {
		return nil, mapError(err, "list policies")
	}
	defer rows.Close()

	policies := []pto.Policy{}
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, mapError(err, "scan policy")
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

// UpdatePolicy replaces every policy column except the ID.
func (s *Store) UpdatePolicy(ctx context.Context, p *pto.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.UpdatedAt = now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE policies
		SET name = ?, accrual_hrs_mo = ?, carryover_max = ?, effective_on = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.AccrualPerMonth.String(), p.CarryoverMax.String(),
		formatDate(p.EffectiveOn), formatStamp(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return mapError(err, "update policy")
	}
	return requireAffected(res, "update policy")
}

// DeletePolicy removes a policy. Policies with stored balances return
// ErrConflict.
func (s *Store) DeletePolicy(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM policies WHERE id = ?", id)
	if err != nil {
		return mapDeleteError(err, "delete policy")
	}
	return requireAffected(res, "delete policy")
}
