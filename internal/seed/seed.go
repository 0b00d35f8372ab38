package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mesconnect/backend/internal/db"
	"github.com/mesconnect/backend/internal/pkg/auth"
)

// CreateDefaultData seeds the records the application expects to exist.
// Each seeding step is idempotent; failures are collected rather than aborting startup.
func CreateDefaultData(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger) error {
	var errs []error

	if err := createDefaultAdminUser(ctx, database, lgr); err != nil {
		errs = append(errs, fmt.Errorf("default admin user: %w", err))
	}

	if len(errs) > 0 {
		for _, err := range errs {
			lgr.Warn().Err(err).Msg("Seeding step failed")
		}
		return errors.Join(errs...)
	}

	return nil
}

// createDefaultAdminUser inserts the built-in admin account if it is missing.
func createDefaultAdminUser(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger) error {
	var exists bool
	err := database.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, "mesadmin").Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check admin user: %w", err)
	}
	if exists {
		lgr.Debug().Msg("Default admin user already exists, skipping")
		return nil
	}

	hashedPassword, err := auth.HashPassword("mesadmin123")
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	_, err = database.Pool.Exec(ctx,
		`INSERT INTO users (username, email, password, role, is_active)
		 VALUES ($1, $2, $3, 'admin', TRUE)
		 ON CONFLICT (username) DO NOTHING`,
		"mesadmin", "admin@mesconnect.com", hashedPassword)
	if err != nil {
		return fmt.Errorf("failed to insert admin user: %w", err)
	}

	lgr.Info().Str("username", "mesadmin").Msg("Default admin user created")
	return nil
}
