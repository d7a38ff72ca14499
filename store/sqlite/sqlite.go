/*
Package sqlite provides the SQLite-backed implementation of pto.Store.

PURPOSE:
  All persistence for the PTO tracker: users, employee profiles, teams,
  policies, stored balances and requests, plus the aggregate queries behind
  the dashboard. The process builds one Store at startup and hands it to the
  HTTP layer.

KEY TABLES:
  users:      Accounts (email unique, role enumerated)
  employees:  Employment profile, one per user (start_date drives proration)
  teams:      Named groups with an optional manager
  policies:   Accrual rate and carryover cap (decimal strings)
  balances:   Stored per-year snapshot, unique on (employee_id, year)
  requests:   Time-off requests with status and approver

STORAGE FORMATS:
  - Hour quantities are decimal strings, never REAL, so 6.67 x 12 stays 80.04
  - Calendar dates are RFC 3339 in UTC, which sort lexicographically
  - created_at/updated_at use a fixed-width nanosecond layout so that
    ORDER BY created_at is stable for rows written in the same second

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Methods never call each other while
  holding the lock, and never issue a query while another result set is
  open, so a single-connection in-memory database works.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) and foreign keys on:
  - Multiple readers don't block
  - Single writer at a time
  - ON DELETE rules in the schema are enforced

MIGRATION:
  The schema lives in migrations/*.sql (embedded) and is applied with
  golang-migrate on New(). The migrate CLI command runs the same Migrator.

USAGE:
  store, err := sqlite.New("./data/pto.db", logger)
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - pto/store.go: Interface definition
  - migrate.go: Schema migrations
  - errors.go: Driver error mapping
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/pto-tracker/generic"
	"github.com/warp/pto-tracker/pto"
	"go.uber.org/zap"
)

// Store implements pto.Store using SQLite.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *zap.Logger
}

var _ pto.Store = (*Store)(nil)

// New opens the database at dbPath, applies pending migrations and returns
// the store. Use ":memory:" for an in-memory database.
func New(dbPath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}

	migrator, err := NewMigrator(db, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare migrations: %w", err)
	}
	if err := migrator.Up(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return NewWithDB(db, logger), nil
}

// Open opens the database with the connection settings the store relies on.
// It does not touch the schema.
func Open(dbPath string) (*sql.DB, error) {
	if !isMemory(dbPath) {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if isMemory(dbPath) {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// NewWithDB wraps an already-open, already-migrated database.
func NewWithDB(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger.Named("sqlite")}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection. Used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Reset clears all data (for demo scenarios). The schema and migration
// version are left alone.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Children before parents
	tables := []string{"requests", "balances", "employees", "teams", "policies", "users"}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Info("store reset")
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// stampLayout is fixed-width so that text comparison orders by time.
const stampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func now() time.Time { return time.Now().UTC() }

func formatStamp(t time.Time) string { return t.UTC().Format(stampLayout) }

func parseStamp(s string) time.Time {
	t, _ := time.Parse(stampLayout, s)
	return t
}

func formatDate(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func parseDate(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t.UTC()
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatDate(*t), Valid: true}
}

func datePtr(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseDate(ns.String)
	return &t
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// userSummary builds an embedded user from a LEFT JOIN. A NULL id means no row.
func userSummary(id, name, email, role sql.NullString) *pto.UserSummary {
	if !id.Valid {
		return nil
	}
	return &pto.UserSummary{ID: id.String, Name: name.String, Email: email.String, Role: pto.Role(role.String)}
}

// stamp fills ID and timestamps for a new row.
func stamp(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	t := now()
	if createdAt.IsZero() {
		*createdAt = t
	}
	*updatedAt = t
}

// yearBounds returns the RFC 3339 bounds of [Jan 1 year, Jan 1 year+1).
func yearBounds(year int) (string, string) {
	p := generic.CalendarYear(year)
	return formatDate(p.Start.Time), formatDate(p.End.Time)
}

func isMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
}
