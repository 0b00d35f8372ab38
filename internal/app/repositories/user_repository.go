package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mesconnect/backend/internal/app/models"
	"github.com/mesconnect/backend/internal/db"
	"github.com/mesconnect/backend/internal/pkg/apperrors"
)

// summaryColumns projects the directory view of a user. Display name falls
// back to the username when no profile row exists.
const summaryColumns = `
	u.id,
	u.username,
	COALESCE(s.full_name, a.full_name, u.username) AS display_name,
	u.role,
	COALESCE(s.branch, a.branch) AS branch,
	u.is_active
`

const summaryJoins = `
	LEFT JOIN students s ON s.user_id = u.id
	LEFT JOIN alumni a ON a.user_id = u.id
`

// UserRepository handles database operations for the identity directory.
// Account provisioning is out of scope; this is a read contract plus the
// login bookkeeping needed by token issuance.
type UserRepository struct {
	db *db.PostgresDB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(database *db.PostgresDB) *UserRepository {
	return &UserRepository{db: database}
}

// GetByID retrieves a user row by id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, email, password, role, is_active, created_at, last_login_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return &user, nil
}

// GetByUsername retrieves a user row by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, email, password, role, is_active, created_at, last_login_at
		FROM users
		WHERE username = $1
	`

	var user models.User
	err := r.db.Pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return &user, nil
}

// GetSummary retrieves the directory view of a user
func (r *UserRepository) GetSummary(ctx context.Context, id int64) (*models.UserSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM users u ` + summaryJoins + ` WHERE u.id = $1`

	var summary models.UserSummary
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&summary.ID,
		&summary.Username,
		&summary.DisplayName,
		&summary.Role,
		&summary.Branch,
		&summary.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user summary: %w", err)
	}

	return &summary, nil
}

// UpdateLastLogin records a successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error updating last login: %w", err)
	}
	return nil
}
