package sqlite

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pto-tracker/generic"
	"github.com/warp/pto-tracker/pto"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db, nil), mock
}

func constraintError(code sqlite3.ErrNoExtended) error {
	return sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: code}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique", constraintError(sqlite3.ErrConstraintUnique), generic.ErrConflict},
		{"primary key", constraintError(sqlite3.ErrConstraintPrimaryKey), generic.ErrConflict},
		{"foreign key", constraintError(sqlite3.ErrConstraintForeignKey), generic.ErrInvalidReference},
		{"check", constraintError(sqlite3.ErrConstraintCheck), generic.ErrInvalidInput},
		{"not null", constraintError(sqlite3.ErrConstraintNotNull), generic.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err, "op"), tt.want)
		})
	}

	assert.NoError(t, mapError(nil, "op"))

	other := errors.New("disk on fire")
	err := mapError(other, "op")
	assert.ErrorIs(t, err, other)
	assert.False(t, generic.IsClientError(err))
}

func TestMapDeleteError_ForeignKeyIsConflict(t *testing.T) {
	err := mapDeleteError(constraintError(sqlite3.ErrConstraintForeignKey), "delete policy")
	assert.ErrorIs(t, err, generic.ErrConflict)
	assert.Contains(t, err.Error(), "still referenced")
}

func TestCreateUser_DriverUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(constraintError(sqlite3.ErrConstraintUnique))

	err := store.CreateUser(context.Background(), &pto.User{Name: "A", Email: "a@example.com"})

	assert.ErrorIs(t, err, generic.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPolicy_NoRowsIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM policies WHERE id = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetPolicy(context.Background(), "missing")

	assert.ErrorIs(t, err, generic.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTeam_ZeroRowsIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE teams SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdateTeam(context.Background(), &pto.Team{ID: "missing", Name: "Ghosts"})

	assert.ErrorIs(t, err, generic.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePolicy_StillReferenced(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM policies")).
		WithArgs("policy-1").
		WillReturnError(constraintError(sqlite3.ErrConstraintForeignKey))

	err := store.DeletePolicy(context.Background(), "policy-1")

	assert.ErrorIs(t, err, generic.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertBalance_RollsBackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO balances")).
		WillReturnError(constraintError(sqlite3.ErrConstraintForeignKey))
	mock.ExpectRollback()

	err := store.UpsertBalance(context.Background(), &pto.Balance{
		EmployeeID: "missing", Year: 2025, PolicyID: "policy-1",
		Accrued: generic.ZeroHours(), Used: generic.ZeroHours(), Carryover: generic.ZeroHours(),
	})

	assert.ErrorIs(t, err, generic.ErrInvalidReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}
