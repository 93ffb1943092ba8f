package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"metron/internal/domain"
)

// SQLSTATE codes this driver distinguishes.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError checks if error is a foreign key violation
func IsPgForeignKeyError(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// IsPgCheckError checks if error is a check constraint violation
func IsPgCheckError(err error) bool {
	return pgCode(err) == codeCheckViolation
}

// mapError translates driver errors to domain errors.
func mapError(op string, err error) error {
	switch {
	case IsPgNoRowsError(err):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case IsPgDuplicateError(err), IsPgForeignKeyError(err):
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	case IsPgCheckError(err):
		return fmt.Errorf("%s: %w", op, domain.ErrValidation)
	default:
		return &domain.DatabaseError{Message: op, Err: err}
	}
}
