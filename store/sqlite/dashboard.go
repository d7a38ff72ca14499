package sqlite

import (
	"context"

	"github.com/warp/pto-tracker/pto"
)

// =============================================================================
// DASHBOARD STORE - Aggregates for the overview page
// =============================================================================

// DashboardCounts returns directory totals and the year's request counts.
// Request counts cover requests starting in the year.
func (s *Store) DashboardCounts(ctx context.Context, year int) (pto.DashboardCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := yearBounds(year)
	var c pto.DashboardCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM employees),
			(SELECT COUNT(*) FROM teams),
			(SELECT COUNT(*) FROM policies),
			COUNT(*),
			COALESCE(SUM(status = 'SUBMITTED'), 0),
			COALESCE(SUM(status = 'APPROVED'), 0),
			COALESCE(SUM(status = 'REJECTED'), 0)
		FROM requests
		WHERE start_date >= ? AND start_date < ?`,
		from, to,
	).Scan(&c.Users, &c.Employees, &c.Teams, &c.Policies,
		&c.Requests, &c.Pending, &c.Approved, &c.Rejected)
	if err != nil {
		return c, mapError(err, "dashboard counts")
	}
	return c, nil
}

// RecentRequests returns the most recently created requests of any year.
func (s *Store) RecentRequests(ctx context.Context, limit int) ([]pto.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRequests(ctx, "recent requests",
		requestSelect+" ORDER BY r.created_at DESC LIMIT ?", limit)
}

// RequestsByStatus counts the year's requests per status. Statuses with no
// requests are omitted.
func (s *Store) RequestsByStatus(ctx context.Context, year int) ([]pto.StatusCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := yearBounds(year)
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM requests
		WHERE start_date >= ? AND start_date < ?
		GROUP BY status
		ORDER BY status`,
		from, to,
	)
	if err != nil {
		return nil, mapError(err, "requests by status")
	}
	defer rows.Close()

	counts := []pto.StatusCount{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, mapError(err, "scan status count")
		}
		counts = append(counts, pto.StatusCount{Status: pto.RequestStatus(status), Count: n})
	}
	return counts, rows.Err()
}

// MonthlyRequests counts the year's requests per start month ("01".."12").
// Months with no requests are omitted.
func (s *Store) MonthlyRequests(ctx context.Context, year int) ([]pto.MonthCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := yearBounds(year)
	rows, err := s.db.QueryContext(ctx, `
		SELECT strftime('%m', start_date) AS month, COUNT(*)
		FROM requests
		WHERE start_date >= ? AND start_date < ?
		GROUP BY month
		ORDER BY month`,
		from, to,
	)
	if err != nil {
		return nil, mapError(err, "monthly requests")
	}
	defer rows.Close()

	counts := []pto.MonthCount{}
	for rows.Next() {
		var m pto.MonthCount
		if err := rows.Scan(&m.Month, &m.Count); err != nil {
			return nil, mapError(err, "scan month count")
		}
		counts = append(counts, m)
	}
	return counts, rows.Err()
}
