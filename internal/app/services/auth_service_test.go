package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesconnect/backend/internal/app/models"
	"github.com/mesconnect/backend/internal/app/models/dto"
	"github.com/mesconnect/backend/internal/pkg/apperrors"
	"github.com/mesconnect/backend/internal/pkg/auth"
)

// fakeCredentialStore backs login tests with a single known user
type fakeCredentialStore struct {
	user      *models.User
	lastLogin *int64
}

func (s *fakeCredentialStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, apperrors.ErrUserNotFound
	}
	return s.user, nil
}

func (s *fakeCredentialStore) GetSummary(_ context.Context, id int64) (*models.UserSummary, error) {
	if s.user == nil || s.user.ID != id {
		return nil, apperrors.ErrUserNotFound
	}
	return &models.UserSummary{
		ID:          s.user.ID,
		Username:    s.user.Username,
		DisplayName: s.user.Username,
		Role:        s.user.Role,
		IsActive:    s.user.IsActive,
	}, nil
}

func (s *fakeCredentialStore) UpdateLastLogin(_ context.Context, id int64) error {
	s.lastLogin = &id
	return nil
}

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "mesconnect.test",
	})
}

func TestAuthLogin(t *testing.T) {
	ctx := context.Background()

	hashed, err := auth.HashPassword("correct horse")
	require.NoError(t, err)

	newStore := func() *fakeCredentialStore {
		return &fakeCredentialStore{user: &models.User{
			ID:       1,
			Username: "alice",
			Password: hashed,
			Role:     models.RoleStudent,
			IsActive: true,
		}}
	}

	t.Run("unknown username", func(t *testing.T) {
		svc := NewAuthService(newStore(), testJWTService(), zerolog.Nop())

		_, err := svc.Login(ctx, &dto.LoginRequest{Username: "mallory", Password: "whatever"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := NewAuthService(newStore(), testJWTService(), zerolog.Nop())

		_, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "wrong"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		store := newStore()
		store.user.IsActive = false
		svc := NewAuthService(store, testJWTService(), zerolog.Nop())

		_, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "correct horse"})
		assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
	})

	t.Run("successful login issues a valid token", func(t *testing.T) {
		store := newStore()
		jwtService := testJWTService()
		svc := NewAuthService(store, jwtService, zerolog.Nop())

		resp, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "correct horse"})
		require.NoError(t, err)
		assert.Equal(t, "alice", resp.User.Username)

		claims, err := jwtService.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(1), claims.UserID)
		assert.Equal(t, "student", claims.Role)

		require.NotNil(t, store.lastLogin)
		assert.Equal(t, int64(1), *store.lastLogin)
	})
}
