package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesconnect/backend/internal/app/auth"
	"github.com/mesconnect/backend/internal/app/models"
	"github.com/mesconnect/backend/internal/app/models/dto"
	"github.com/mesconnect/backend/internal/pkg/apperrors"
)

// fakeUserDirectory backs the user existence and activity checks in tests
type fakeUserDirectory struct {
	users map[int64]*models.UserSummary
}

func newFakeUserDirectory(users ...*models.UserSummary) *fakeUserDirectory {
	d := &fakeUserDirectory{users: make(map[int64]*models.UserSummary)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeUserDirectory) GetSummary(_ context.Context, id int64) (*models.UserSummary, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func activeUser(id int64, username string) *models.UserSummary {
	return &models.UserSummary{
		ID:          id,
		Username:    username,
		DisplayName: username,
		Role:        models.RoleStudent,
		IsActive:    true,
	}
}

// fakeConnectionStore keeps at most one edge per unordered user pair
type fakeConnectionStore struct {
	nextID int64
	conns  map[[2]int64]*models.Connection
}

func newFakeConnectionStore() *fakeConnectionStore {
	return &fakeConnectionStore{nextID: 1, conns: make(map[[2]int64]*models.Connection)}
}

func pairKey(a, b int64) [2]int64 {
	if a > b {
		a, b = b, a
	}
	return [2]int64{a, b}
}

func (s *fakeConnectionStore) Create(_ context.Context, requesterID, recipientID int64) (*models.Connection, error) {
	key := pairKey(requesterID, recipientID)
	if _, ok := s.conns[key]; ok {
		return nil, apperrors.ErrConnectionExists
	}
	conn := &models.Connection{
		ID:              s.nextID,
		UserID:          requesterID,
		ConnectedUserID: recipientID,
		Status:          models.ConnectionPending,
		RequestedAt:     time.Now(),
	}
	s.nextID++
	s.conns[key] = conn
	return conn, nil
}

func (s *fakeConnectionStore) GetByPair(_ context.Context, userA, userB int64) (*models.Connection, error) {
	conn, ok := s.conns[pairKey(userA, userB)]
	if !ok {
		return nil, apperrors.ErrConnectionNotFound
	}
	return conn, nil
}

func (s *fakeConnectionStore) Accept(_ context.Context, requesterID, recipientID int64) error {
	conn, ok := s.conns[pairKey(requesterID, recipientID)]
	if !ok || conn.Status != models.ConnectionPending ||
		conn.UserID != requesterID || conn.ConnectedUserID != recipientID {
		return apperrors.ErrConnectionNotPending
	}
	now := time.Now()
	conn.Status = models.ConnectionAccepted
	conn.AcceptedAt = &now
	return nil
}

func (s *fakeConnectionStore) DeletePending(_ context.Context, requesterID, recipientID int64) error {
	key := pairKey(requesterID, recipientID)
	conn, ok := s.conns[key]
	if !ok || conn.Status != models.ConnectionPending ||
		conn.UserID != requesterID || conn.ConnectedUserID != recipientID {
		return apperrors.ErrConnectionNotPending
	}
	delete(s.conns, key)
	return nil
}

func (s *fakeConnectionStore) DeletePair(_ context.Context, userA, userB int64) error {
	key := pairKey(userA, userB)
	if _, ok := s.conns[key]; !ok {
		return apperrors.ErrConnectionNotFound
	}
	delete(s.conns, key)
	return nil
}

func (s *fakeConnectionStore) ListAccepted(_ context.Context, userID int64) ([]*models.Connection, error) {
	var out []*models.Connection
	for _, conn := range s.conns {
		if conn.Status == models.ConnectionAccepted &&
			(conn.UserID == userID || conn.ConnectedUserID == userID) {
			out = append(out, conn)
		}
	}
	return out, nil
}

func (s *fakeConnectionStore) ListPendingIncoming(_ context.Context, userID int64) ([]*models.Connection, error) {
	var out []*models.Connection
	for _, conn := range s.conns {
		if conn.Status == models.ConnectionPending && conn.ConnectedUserID == userID {
			out = append(out, conn)
		}
	}
	return out, nil
}

func (s *fakeConnectionStore) Counts(_ context.Context, userID int64) (*models.ConnectionCounts, error) {
	counts := &models.ConnectionCounts{}
	for _, conn := range s.conns {
		switch {
		case conn.Status == models.ConnectionAccepted &&
			(conn.UserID == userID || conn.ConnectedUserID == userID):
			counts.Accepted++
		case conn.Status == models.ConnectionPending && conn.ConnectedUserID == userID:
			counts.PendingIncoming++
		case conn.Status == models.ConnectionPending && conn.UserID == userID:
			counts.PendingOutgoing++
		}
	}
	return counts, nil
}

func (s *fakeConnectionStore) Suggestions(_ context.Context, _ int64, _, _ *string, limit int) ([]*models.UserSummary, error) {
	return nil, nil
}

func newConnectionServiceForTest(store *fakeConnectionStore, dir *fakeUserDirectory) ConnectionService {
	return NewConnectionService(store, dir, zerolog.Nop())
}

func TestConnectionRequest(t *testing.T) {
	ctx := context.Background()
	actor := auth.Actor{UserID: 1, Role: models.RoleStudent}

	t.Run("rejects self connection", func(t *testing.T) {
		svc := newConnectionServiceForTest(newFakeConnectionStore(), newFakeUserDirectory(activeUser(1, "alice")))

		_, err := svc.Request(ctx, actor, 1)
		assert.ErrorIs(t, err, apperrors.ErrSelfConnection)
	})

	t.Run("rejects unknown recipient", func(t *testing.T) {
		svc := newConnectionServiceForTest(newFakeConnectionStore(), newFakeUserDirectory(activeUser(1, "alice")))

		_, err := svc.Request(ctx, actor, 99)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("rejects inactive recipient", func(t *testing.T) {
		inactive := activeUser(2, "bob")
		inactive.IsActive = false
		svc := newConnectionServiceForTest(newFakeConnectionStore(), newFakeUserDirectory(activeUser(1, "alice"), inactive))

		_, err := svc.Request(ctx, actor, 2)
		assert.ErrorIs(t, err, apperrors.ErrUserInactive)
	})

	t.Run("creates a pending request", func(t *testing.T) {
		svc := newConnectionServiceForTest(newFakeConnectionStore(), newFakeUserDirectory(activeUser(1, "alice"), activeUser(2, "bob")))

		conn, err := svc.Request(ctx, actor, 2)
		require.NoError(t, err)
		assert.Equal(t, models.ConnectionPending, conn.Status)
		assert.Equal(t, int64(1), conn.UserID)
		assert.Equal(t, int64(2), conn.ConnectedUserID)
	})

	t.Run("rejects duplicate regardless of direction", func(t *testing.T) {
		store := newFakeConnectionStore()
		dir := newFakeUserDirectory(activeUser(1, "alice"), activeUser(2, "bob"))
		svc := newConnectionServiceForTest(store, dir)

		_, err := svc.Request(ctx, actor, 2)
		require.NoError(t, err)

		_, err = svc.Request(ctx, actor, 2)
		assert.ErrorIs(t, err, apperrors.ErrConnectionExists)

		// The recipient cannot open a reverse request either
		_, err = svc.Request(ctx, auth.Actor{UserID: 2, Role: models.RoleStudent}, 1)
		assert.ErrorIs(t, err, apperrors.ErrConnectionExists)
	})
}

func TestConnectionRespond(t *testing.T) {
	ctx := context.Background()
	requester := auth.Actor{UserID: 1, Role: models.RoleStudent}
	recipient := auth.Actor{UserID: 2, Role: models.RoleStudent}

	t.Run("accept marks the edge accepted", func(t *testing.T) {
		store := newFakeConnectionStore()
		svc := newConnectionServiceForTest(store, newFakeUserDirectory(activeUser(1, "alice"), activeUser(2, "bob")))

		_, err := svc.Request(ctx, requester, 2)
		require.NoError(t, err)

		require.NoError(t, svc.Respond(ctx, recipient, 1, true))

		conn, err := svc.StatusWith(ctx, recipient, 1)
		require.NoError(t, err)
		assert.Equal(t, models.ConnectionAccepted, conn.Status)
		assert.NotNil(t, conn.AcceptedAt)
	})

	t.Run("accept fails when nothing is pending", func(t *testing.T) {
		svc := newConnectionServiceForTest(newFakeConnectionStore(), newFakeUserDirectory(activeUser(1, "alice"), activeUser(2, "bob")))

		err := svc.Respond(ctx, recipient, 1, false)
		assert.ErrorIs(t, err, apperrors.ErrConnectionNotPending)
	})

	t.Run("reject deletes the row so a fresh request works", func(t *testing.T) {
		store := newFakeConnectionStore()
		svc := newConnectionServiceForTest(store, newFakeUserDirectory(activeUser(1, "alice"), activeUser(2, "bob")))

		_, err := svc.Request(ctx, requester, 2)
		require.NoError(t, err)

		require.NoError(t, svc.Respond(ctx, recipient, 1, false))

		_, err = svc.StatusWith(ctx, requester, 2)
		assert.ErrorIs(t, err, apperrors.ErrConnectionNotFound)

		_, err = svc.Request(ctx, requester, 2)
		assert.NoError(t, err)
	})

	t.Run("only the recipient can accept", func(t *testing.T) {
		store := newFakeConnectionStore()
		svc := newConnectionServiceForTest(store, newFakeUserDirectory(activeUser(1, "alice"), activeUser(2, "bob")))

		_, err := svc.Request(ctx, requester, 2)
		require.NoError(t, err)

		// The requester accepting their own request does not match a
		// pending row addressed to them
		err = svc.Respond(ctx, requester, 2, true)
		assert.ErrorIs(t, err, apperrors.ErrConnectionNotPending)
	})
}

func TestConnectionCounts(t *testing.T) {
	ctx := context.Background()
	store := newFakeConnectionStore()
	dir := newFakeUserDirectory(activeUser(1, "alice"), activeUser(2, "bob"), activeUser(3, "carol"), activeUser(4, "dave"))
	svc := newConnectionServiceForTest(store, dir)

	alice := auth.Actor{UserID: 1, Role: models.RoleStudent}

	_, err := svc.Request(ctx, alice, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Respond(ctx, auth.Actor{UserID: 2, Role: models.RoleStudent}, 1, true))

	_, err = svc.Request(ctx, alice, 3)
	require.NoError(t, err)

	_, err = svc.Request(ctx, auth.Actor{UserID: 4, Role: models.RoleStudent}, 1)
	require.NoError(t, err)

	counts, err := svc.Counts(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Accepted)
	assert.Equal(t, int64(1), counts.PendingIncoming)
	assert.Equal(t, int64(1), counts.PendingOutgoing)
}

func TestConnectionRemove(t *testing.T) {
	ctx := context.Background()
	store := newFakeConnectionStore()
	svc := newConnectionServiceForTest(store, newFakeUserDirectory(activeUser(1, "alice"), activeUser(2, "bob")))

	alice := auth.Actor{UserID: 1, Role: models.RoleStudent}
	_, err := svc.Request(ctx, alice, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Respond(ctx, auth.Actor{UserID: 2, Role: models.RoleStudent}, 1, true))

	require.NoError(t, svc.Remove(ctx, alice, 2))

	_, err = svc.StatusWith(ctx, alice, 2)
	assert.ErrorIs(t, err, apperrors.ErrConnectionNotFound)
}

func TestConnectionSuggestionsDefaultLimit(t *testing.T) {
	ctx := context.Background()
	svc := newConnectionServiceForTest(newFakeConnectionStore(), newFakeUserDirectory())

	responses, err := svc.Suggestions(ctx, auth.Actor{UserID: 1}, &dto.ConnectionSuggestionsRequest{})
	require.NoError(t, err)
	assert.Empty(t, responses)
}
