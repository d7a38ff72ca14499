/*
scheduler.go - Automated balance snapshot scheduler

PURPOSE:
  Periodically recomputes every employee's balance for the current year and
  saves it as the year's balance record, so stored snapshots track approved
  requests without anyone pressing "save" on the calculate endpoint.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - The policy comes from the employee's most recent balance record;
    employees without any record are skipped
  - On the first run of a new year the snapshot is created from the prior
    year's record, which is how carryover reaches the new year
  - Failures for one employee are logged and do not stop the run

CONFIGURATION:
  - balance.snapshot_interval: How often to run (0 disables)

USAGE:
  scheduler := NewSnapshotScheduler(handler, time.Hour)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - balances.go: CalculateBalance (the same calculation, on demand)
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/warp/pto-tracker/pto"
	"go.uber.org/zap"
)

// SnapshotScheduler saves current-year balance snapshots on a timer.
type SnapshotScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration

	// Now returns the current time; it decides the snapshot year.
	Now func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	log    *zap.Logger
}

// SnapshotRun summarises one pass over the employees.
type SnapshotRun struct {
	Year    int
	Saved   int
	Skipped int
	Failed  int
}

// NewSnapshotScheduler creates a scheduler. It does nothing until Start.
func NewSnapshotScheduler(h *Handler, interval time.Duration) *SnapshotScheduler {
	return &SnapshotScheduler{
		Handler:       h,
		CheckInterval: interval,
		Now:           time.Now,
		log:           h.Log.Named("scheduler"),
	}
}

// Start runs one pass immediately, then one per interval. A non-positive
// interval leaves the scheduler disabled.
func (s *SnapshotScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CheckInterval <= 0 {
		s.log.Info("snapshot scheduler disabled")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.run(s.ticker, s.stop)

	s.log.Info("snapshot scheduler started", zap.Duration("interval", s.CheckInterval))
}

// Stop halts the scheduler and waits for an in-flight pass to finish.
func (s *SnapshotScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.wg.Wait()
	s.ticker = nil
	s.log.Info("snapshot scheduler stopped")
}

func (s *SnapshotScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.RunOnce(ctx)
	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-stop:
			return
		}
	}
}

// RunOnce snapshots every employee with a known policy for the current year.
func (s *SnapshotScheduler) RunOnce(ctx context.Context) SnapshotRun {
	h := s.Handler
	run := SnapshotRun{Year: s.Now().UTC().Year()}

	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		s.log.Error("list employees", zap.Error(err))
		return run
	}

	for i := range employees {
		if ctx.Err() != nil {
			break
		}
		e := &employees[i]

		policy, err := s.policyFor(ctx, e.ID)
		if err != nil {
			s.log.Warn("resolve policy", zap.String("employee_id", e.ID), zap.Error(err))
			run.Failed++
			continue
		}
		if policy == nil {
			run.Skipped++
			continue
		}

		result, _, err := h.calculate(ctx, e, policy, run.Year)
		if err != nil {
			s.log.Warn("calculate balance", zap.String("employee_id", e.ID), zap.Error(err))
			run.Failed++
			continue
		}
		snap := result.Snapshot(e.ID, policy.ID)
		if err := h.Store.UpsertBalance(ctx, &snap); err != nil {
			s.log.Warn("save snapshot", zap.String("employee_id", e.ID), zap.Error(err))
			run.Failed++
			continue
		}
		run.Saved++
	}

	s.log.Info("snapshot run finished",
		zap.Int("year", run.Year),
		zap.Int("saved", run.Saved),
		zap.Int("skipped", run.Skipped),
		zap.Int("failed", run.Failed),
	)
	return run
}

// policyFor returns the policy of the employee's latest balance record, or
// nil if there is none.
func (s *SnapshotScheduler) policyFor(ctx context.Context, employeeID string) (*pto.Policy, error) {
	balances, err := s.Handler.Store.ListBalances(ctx, pto.BalanceFilter{EmployeeID: employeeID})
	if err != nil {
		return nil, err
	}
	if len(balances) == 0 {
		return nil, nil
	}
	return s.Handler.Store.GetPolicy(ctx, balances[0].PolicyID)
}
