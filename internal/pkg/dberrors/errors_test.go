package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesconnect/backend/internal/pkg/apperrors"
)

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(uniqueViolation("users_username_key")))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert failed: %w", uniqueViolation("users_username_key"))))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("plain error")))
}

func TestIsDuplicateConstraintError(t *testing.T) {
	err := uniqueViolation("connections_pair_idx")
	assert.True(t, IsDuplicateConstraintError(err, "connections_pair_idx"))
	assert.False(t, IsDuplicateConstraintError(err, "users_username_key"))
}

func TestTranslateUniqueViolation(t *testing.T) {
	fields := map[string]string{"connections_pair_idx": "connection"}

	t.Run("known constraint names the field", func(t *testing.T) {
		translated := TranslateUniqueViolation(uniqueViolation("connections_pair_idx"), fields)
		require.ErrorIs(t, translated, apperrors.ErrConflict)

		var custom *apperrors.CustomError
		require.True(t, errors.As(translated, &custom))
		assert.Equal(t, "connection", custom.Field)
	})

	t.Run("unknown constraint is still a conflict", func(t *testing.T) {
		translated := TranslateUniqueViolation(uniqueViolation("something_else"), fields)
		assert.ErrorIs(t, translated, apperrors.ErrConflict)
	})

	t.Run("non-unique errors pass through", func(t *testing.T) {
		original := errors.New("connection refused")
		assert.Equal(t, original, TranslateUniqueViolation(original, fields))
	})
}
