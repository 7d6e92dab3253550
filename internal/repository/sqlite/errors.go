package sqlite

import (
	"errors"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Constraint violations are the storage's last line of defence for the
// uniqueness and self-reference invariants. Services pre-check for friendlier
// messages, but two concurrent requests can both pass a pre-check; the
// helpers below let the repository turn the losing insert into a typed
// apperror instead of leaking a driver error.

func isUniqueViolation(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE constraint failed") ||
		isConstraint(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, "PRIMARY KEY constraint failed")
}

func isCheckViolation(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_CHECK, "CHECK constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY constraint failed")
}

// isConstraint matches the extended result code when the driver reports one,
// and falls back to the primary SQLITE_CONSTRAINT code plus the message
// SQLite attaches to each constraint kind.
func isConstraint(err error, extended int, marker string) bool {
	var sqlErr *moderncsqlite.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	code := sqlErr.Code()
	if code == extended {
		return true
	}
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqlErr.Error(), marker)
}

// violatedColumn reports whether a UNIQUE violation names table.column.
func violatedColumn(err error, tableColumn string) bool {
	return err != nil && strings.Contains(err.Error(), tableColumn)
}
