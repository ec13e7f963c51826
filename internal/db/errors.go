package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrNotFound is returned when a query matches no rows.
	ErrNotFound = errors.New("db: record not found")

	// ErrDuplicateKey is returned on unique constraint violations.
	ErrDuplicateKey = errors.New("db: duplicate key")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails.
	ErrForeignKeyViolation = errors.New("db: foreign key violation")

	// ErrCheckViolation is returned when a CHECK constraint fails.
	ErrCheckViolation = errors.New("db: check constraint violation")
)

func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsDuplicateKey(err error) bool { return errors.Is(err, ErrDuplicateKey) }

// Error wraps a sentinel with the original driver error so callers can use
// errors.Is for classification and still inspect the cause.
type Error struct {
	Sentinel error
	Cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (cause: %v)", e.Sentinel, e.Cause)
}

func (e *Error) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *Error) Unwrap() error        { return e.Cause }

// MapError translates raw driver errors into the package's sentinel errors.
// Covers database/sql, go-sql-driver/mysql, and mattn/go-sqlite3.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Sentinel: ErrNotFound, Cause: err}
	}

	// Already mapped.
	var mapped *Error
	if errors.As(err, &mapped) {
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062: // ER_DUP_ENTRY
			return &Error{Sentinel: ErrDuplicateKey, Cause: err}
		case 1216, 1217, 1452: // FK violations
			return &Error{Sentinel: ErrForeignKeyViolation, Cause: err}
		case 3819: // ER_CHECK_CONSTRAINT_VIOLATED
			return &Error{Sentinel: ErrCheckViolation, Cause: err}
		}
		return err
	}

	// go-sqlite3 does not export stable typed errors; match on message.
	s := err.Error()
	switch {
	case strings.Contains(s, "UNIQUE constraint failed"):
		return &Error{Sentinel: ErrDuplicateKey, Cause: err}
	case strings.Contains(s, "FOREIGN KEY constraint failed"):
		return &Error{Sentinel: ErrForeignKeyViolation, Cause: err}
	case strings.Contains(s, "CHECK constraint failed"):
		return &Error{Sentinel: ErrCheckViolation, Cause: err}
	}
	return err
}
