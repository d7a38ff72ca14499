package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/pto-tracker/generic"
)

// mapError translates driver errors into the generic sentinels and adds the
// operation as context.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, generic.ErrNotFound)
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%s: %w", op, generic.ErrConflict)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%s: %w", op, generic.ErrInvalidReference)
		case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
			return fmt.Errorf("%s: %w: %v", op, generic.ErrInvalidInput, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// mapDeleteError is mapError for DELETE, where a foreign key failure means
// other rows still point at the target.
func mapDeleteError(err error, op string) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return fmt.Errorf("%s: still referenced: %w", op, generic.ErrConflict)
	}
	return mapError(err, op)
}

// requireAffected turns a zero-row UPDATE or DELETE into ErrNotFound.
func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, generic.ErrNotFound)
	}
	return nil
}
