package persistence

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// uniqueViolationCode is the postgres error code for unique-constraint violations
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a unique-constraint violation.
// Document numbers rely on this: two concurrent writers deriving the same
// number race to the unique index and the loser surfaces as a conflict.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	// sqlite, used by in-memory tests
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
