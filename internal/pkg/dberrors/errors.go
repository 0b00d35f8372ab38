package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mesconnect/backend/internal/pkg/apperrors"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation checks if the error is a PostgreSQL unique violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique
// violation for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == constraintName
}

// TranslateUniqueViolation maps a unique violation on a known constraint to a
// Conflict error naming the duplicated field, so raw storage error text never
// reaches callers. Unknown errors pass through unchanged.
func TranslateUniqueViolation(err error, constraintFields map[string]string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return err
	}
	if field, ok := constraintFields[pgErr.ConstraintName]; ok {
		return &apperrors.CustomError{
			Err:     apperrors.ErrConflict,
			Message: field + " already exists",
			Field:   field,
		}
	}
	return apperrors.NewConflictError("duplicate entry")
}
