package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the repositories care about
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
	CheckViolation      = "23514"
	InvalidTextRep      = "22P02"
)

func pgCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	return "", false
}

// IsDuplicateKeyError reports whether err is a unique_violation on any constraint.
func IsDuplicateKeyError(err error) bool {
	code, ok := pgCode(err)
	return ok && code == UniqueViolation
}

// IsForeignKeyError reports whether err is a foreign_key_violation.
func IsForeignKeyError(err error) bool {
	code, ok := pgCode(err)
	return ok && code == ForeignKeyViolation
}

// IsCheckViolation reports whether err is a check_violation.
func IsCheckViolation(err error) bool {
	code, ok := pgCode(err)
	return ok && code == CheckViolation
}
