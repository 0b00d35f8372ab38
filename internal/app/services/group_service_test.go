package services

import (
	"context"
	"errors"
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

// fakeGroupStore mirrors the storage semantics: membership checks, capacity,
// the sole-admin policy and group deletion when the last member leaves.
type fakeGroupStore struct {
	nextID  int64
	groups  map[int64]*models.Group
	members map[int64]map[int64]*models.GroupMember

	// memberErr, when set, is returned by GetMember in place of a lookup
	memberErr error
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{
		nextID:  1,
		groups:  make(map[int64]*models.Group),
		members: make(map[int64]map[int64]*models.GroupMember),
	}
}

func (s *fakeGroupStore) Create(_ context.Context, group *models.Group) error {
	group.ID = s.nextID
	group.CreatedAt = time.Now()
	group.MemberCount = 1
	s.nextID++
	s.groups[group.ID] = group
	s.members[group.ID] = map[int64]*models.GroupMember{
		group.CreatorID: {
			GroupID:  group.ID,
			UserID:   group.CreatorID,
			Role:     models.GroupRoleAdmin,
			JoinedAt: time.Now(),
		},
	}
	return nil
}

func (s *fakeGroupStore) GetByID(_ context.Context, id int64) (*models.Group, error) {
	group, ok := s.groups[id]
	if !ok {
		return nil, apperrors.ErrGroupNotFound
	}
	group.MemberCount = int64(s.activeCount(id))
	return group, nil
}

func (s *fakeGroupStore) GetMember(_ context.Context, groupID, userID int64) (*models.GroupMember, error) {
	if s.memberErr != nil {
		return nil, s.memberErr
	}
	member, ok := s.members[groupID][userID]
	if !ok {
		return nil, apperrors.ErrNotMember
	}
	return member, nil
}

func (s *fakeGroupStore) activeCount(groupID int64) int {
	count := 0
	for _, member := range s.members[groupID] {
		if !member.IsBanned {
			count++
		}
	}
	return count
}

func (s *fakeGroupStore) Join(_ context.Context, groupID, userID int64) error {
	group, ok := s.groups[groupID]
	if !ok {
		return apperrors.ErrGroupNotFound
	}
	if member, ok := s.members[groupID][userID]; ok {
		if member.IsBanned {
			return apperrors.ErrMemberBanned
		}
		return apperrors.ErrAlreadyMember
	}
	if group.MaxMembers != nil && s.activeCount(groupID) >= *group.MaxMembers {
		return apperrors.ErrGroupFull
	}
	s.members[groupID][userID] = &models.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		Role:     models.GroupRoleMember,
		JoinedAt: time.Now(),
	}
	return nil
}

func (s *fakeGroupStore) Leave(_ context.Context, groupID, userID int64) error {
	if _, ok := s.groups[groupID]; !ok {
		return apperrors.ErrGroupNotFound
	}
	member, ok := s.members[groupID][userID]
	if !ok {
		return apperrors.ErrNotMember
	}

	total := len(s.members[groupID])
	admins := 0
	for _, m := range s.members[groupID] {
		if m.Role == models.GroupRoleAdmin {
			admins++
		}
	}

	if total == 1 {
		delete(s.groups, groupID)
		delete(s.members, groupID)
		return nil
	}
	if member.Role == models.GroupRoleAdmin && admins == 1 {
		return apperrors.ErrLastGroupAdmin
	}

	delete(s.members[groupID], userID)
	return nil
}

func (s *fakeGroupStore) SetRole(_ context.Context, groupID, userID int64, role models.GroupRole) error {
	member, ok := s.members[groupID][userID]
	if !ok {
		return apperrors.ErrNotMember
	}
	if member.Role == models.GroupRoleAdmin && role != models.GroupRoleAdmin {
		admins := 0
		for _, m := range s.members[groupID] {
			if m.Role == models.GroupRoleAdmin {
				admins++
			}
		}
		if admins == 1 {
			return apperrors.ErrLastGroupAdmin
		}
	}
	member.Role = role
	return nil
}

func (s *fakeGroupStore) SetBanned(_ context.Context, groupID, userID int64, banned bool) error {
	member, ok := s.members[groupID][userID]
	if !ok {
		return apperrors.ErrNotMember
	}
	member.IsBanned = banned
	return nil
}

func (s *fakeGroupStore) Discover(_ context.Context, userID int64, groupType *string, limit int) ([]*models.Group, error) {
	var out []*models.Group
	for id, group := range s.groups {
		if _, ok := s.members[id][userID]; ok {
			continue
		}
		if groupType != nil && string(group.GroupType) != *groupType {
			continue
		}
		out = append(out, group)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeGroupStore) ListByMember(_ context.Context, userID int64) ([]*models.Group, []models.GroupRole, error) {
	var groups []*models.Group
	var roles []models.GroupRole
	for id, members := range s.members {
		if member, ok := members[userID]; ok && !member.IsBanned {
			groups = append(groups, s.groups[id])
			roles = append(roles, member.Role)
		}
	}
	return groups, roles, nil
}

func (s *fakeGroupStore) Members(_ context.Context, groupID int64) ([]*models.GroupMember, error) {
	var out []*models.GroupMember
	for _, member := range s.members[groupID] {
		out = append(out, member)
	}
	return out, nil
}

func newGroupServiceForTest(store *fakeGroupStore) GroupService {
	return NewGroupService(store, zerolog.Nop())
}

func validGroupRequest() *dto.CreateGroupRequest {
	return &dto.CreateGroupRequest{
		Name:        "Algorithms Study Circle",
		Description: "Weekly problem solving sessions",
		GroupType:   "study",
	}
}

func TestGroupCreate(t *testing.T) {
	ctx := context.Background()
	creator := auth.Actor{UserID: 1, Role: models.RoleStudent}

	t.Run("rejects empty name", func(t *testing.T) {
		svc := newGroupServiceForTest(newFakeGroupStore())
		req := validGroupRequest()
		req.Name = "   "

		_, err := svc.Create(ctx, creator, req)
		require.ErrorIs(t, err, apperrors.ErrInvalidArgument)

		var custom *apperrors.CustomError
		require.True(t, errors.As(err, &custom))
		assert.Equal(t, "name", custom.Field)
	})

	t.Run("rejects unknown group type", func(t *testing.T) {
		svc := newGroupServiceForTest(newFakeGroupStore())
		req := validGroupRequest()
		req.GroupType = "secret_society"

		_, err := svc.Create(ctx, creator, req)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})

	t.Run("rejects a member limit below two", func(t *testing.T) {
		svc := newGroupServiceForTest(newFakeGroupStore())
		req := validGroupRequest()
		limit := 1
		req.MaxMembers = &limit

		_, err := svc.Create(ctx, creator, req)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})

	t.Run("the creator becomes the group admin", func(t *testing.T) {
		store := newFakeGroupStore()
		svc := newGroupServiceForTest(store)

		resp, err := svc.Create(ctx, creator, validGroupRequest())
		require.NoError(t, err)
		assert.Equal(t, string(models.GroupRoleAdmin), resp.MyRole)
		assert.True(t, resp.IsPublic)
		assert.Equal(t, int64(1), resp.MemberCount)

		member := store.members[resp.ID][creator.UserID]
		require.NotNil(t, member)
		assert.Equal(t, models.GroupRoleAdmin, member.Role)
	})
}

func TestGroupJoin(t *testing.T) {
	ctx := context.Background()
	creator := auth.Actor{UserID: 1, Role: models.RoleStudent}
	joiner := auth.Actor{UserID: 2, Role: models.RoleStudent}

	t.Run("private groups refuse self-service joins", func(t *testing.T) {
		store := newFakeGroupStore()
		svc := newGroupServiceForTest(store)

		req := validGroupRequest()
		private := false
		req.IsPublic = &private
		resp, err := svc.Create(ctx, creator, req)
		require.NoError(t, err)

		err = svc.Join(ctx, joiner, resp.ID)
		assert.ErrorIs(t, err, apperrors.ErrGroupPrivate)
	})

	t.Run("duplicate joins and capacity", func(t *testing.T) {
		store := newFakeGroupStore()
		svc := newGroupServiceForTest(store)

		req := validGroupRequest()
		limit := 2
		req.MaxMembers = &limit
		resp, err := svc.Create(ctx, creator, req)
		require.NoError(t, err)

		require.NoError(t, svc.Join(ctx, joiner, resp.ID))

		err = svc.Join(ctx, joiner, resp.ID)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyMember)

		err = svc.Join(ctx, auth.Actor{UserID: 3}, resp.ID)
		assert.ErrorIs(t, err, apperrors.ErrGroupFull)
	})

	t.Run("banned members cannot rejoin", func(t *testing.T) {
		store := newFakeGroupStore()
		svc := newGroupServiceForTest(store)

		resp, err := svc.Create(ctx, creator, validGroupRequest())
		require.NoError(t, err)
		require.NoError(t, svc.Join(ctx, joiner, resp.ID))

		require.NoError(t, svc.Ban(ctx, creator, resp.ID, &dto.BanMemberRequest{UserID: joiner.UserID, Banned: true}))

		err = svc.Join(ctx, joiner, resp.ID)
		assert.ErrorIs(t, err, apperrors.ErrMemberBanned)
	})
}

func TestGroupLeave(t *testing.T) {
	ctx := context.Background()
	creator := auth.Actor{UserID: 1, Role: models.RoleStudent}
	member := auth.Actor{UserID: 2, Role: models.RoleStudent}

	t.Run("the sole admin cannot abandon other members", func(t *testing.T) {
		store := newFakeGroupStore()
		svc := newGroupServiceForTest(store)

		resp, err := svc.Create(ctx, creator, validGroupRequest())
		require.NoError(t, err)
		require.NoError(t, svc.Join(ctx, member, resp.ID))

		err = svc.Leave(ctx, creator, resp.ID)
		assert.ErrorIs(t, err, apperrors.ErrLastGroupAdmin)

		// After promoting a successor the admin may leave
		require.NoError(t, svc.SetRole(ctx, creator, resp.ID, &dto.SetGroupRoleRequest{UserID: member.UserID, Role: "admin"}))
		assert.NoError(t, svc.Leave(ctx, creator, resp.ID))
	})

	t.Run("the last member leaving deletes the group", func(t *testing.T) {
		store := newFakeGroupStore()
		svc := newGroupServiceForTest(store)

		resp, err := svc.Create(ctx, creator, validGroupRequest())
		require.NoError(t, err)

		require.NoError(t, svc.Leave(ctx, creator, resp.ID))

		_, err = store.GetByID(ctx, resp.ID)
		assert.ErrorIs(t, err, apperrors.ErrGroupNotFound)
	})

	t.Run("non-members cannot leave", func(t *testing.T) {
		store := newFakeGroupStore()
		svc := newGroupServiceForTest(store)

		resp, err := svc.Create(ctx, creator, validGroupRequest())
		require.NoError(t, err)

		err = svc.Leave(ctx, member, resp.ID)
		assert.ErrorIs(t, err, apperrors.ErrNotMember)
	})
}

func TestGroupSetRole(t *testing.T) {
	ctx := context.Background()
	creator := auth.Actor{UserID: 1, Role: models.RoleStudent}
	member := auth.Actor{UserID: 2, Role: models.RoleStudent}
	moderator := auth.Actor{UserID: 3, Role: models.RoleStudent}

	setup := func(t *testing.T) (*fakeGroupStore, GroupService, int64) {
		store := newFakeGroupStore()
		svc := newGroupServiceForTest(store)

		resp, err := svc.Create(ctx, creator, validGroupRequest())
		require.NoError(t, err)
		require.NoError(t, svc.Join(ctx, member, resp.ID))
		require.NoError(t, svc.Join(ctx, moderator, resp.ID))
		require.NoError(t, svc.SetRole(ctx, creator, resp.ID, &dto.SetGroupRoleRequest{UserID: moderator.UserID, Role: "moderator"}))
		return store, svc, resp.ID
	}

	t.Run("rejects unknown roles", func(t *testing.T) {
		_, svc, groupID := setup(t)
		err := svc.SetRole(ctx, creator, groupID, &dto.SetGroupRoleRequest{UserID: member.UserID, Role: "overlord"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})

	t.Run("non-members cannot change roles", func(t *testing.T) {
		_, svc, groupID := setup(t)
		err := svc.SetRole(ctx, auth.Actor{UserID: 99}, groupID, &dto.SetGroupRoleRequest{UserID: member.UserID, Role: "moderator"})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("plain members cannot change roles", func(t *testing.T) {
		_, svc, groupID := setup(t)
		err := svc.SetRole(ctx, member, groupID, &dto.SetGroupRoleRequest{UserID: moderator.UserID, Role: "member"})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("moderators promote members but not to admin", func(t *testing.T) {
		store, svc, groupID := setup(t)

		require.NoError(t, svc.SetRole(ctx, moderator, groupID, &dto.SetGroupRoleRequest{UserID: member.UserID, Role: "moderator"}))
		assert.Equal(t, models.GroupRoleModerator, store.members[groupID][member.UserID].Role)

		err := svc.SetRole(ctx, moderator, groupID, &dto.SetGroupRoleRequest{UserID: member.UserID, Role: "admin"})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("moderators cannot touch admins", func(t *testing.T) {
		_, svc, groupID := setup(t)
		err := svc.SetRole(ctx, moderator, groupID, &dto.SetGroupRoleRequest{UserID: creator.UserID, Role: "member"})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("the last admin cannot be demoted", func(t *testing.T) {
		_, svc, groupID := setup(t)
		err := svc.SetRole(ctx, creator, groupID, &dto.SetGroupRoleRequest{UserID: creator.UserID, Role: "member"})
		assert.ErrorIs(t, err, apperrors.ErrLastGroupAdmin)
	})

	t.Run("admins promote anyone", func(t *testing.T) {
		store, svc, groupID := setup(t)

		require.NoError(t, svc.SetRole(ctx, creator, groupID, &dto.SetGroupRoleRequest{UserID: member.UserID, Role: "admin"}))
		assert.Equal(t, models.GroupRoleAdmin, store.members[groupID][member.UserID].Role)

		// With a second admin in place the creator may step down
		assert.NoError(t, svc.SetRole(ctx, creator, groupID, &dto.SetGroupRoleRequest{UserID: creator.UserID, Role: "member"}))
	})
}

func TestGroupBan(t *testing.T) {
	ctx := context.Background()
	creator := auth.Actor{UserID: 1, Role: models.RoleStudent}
	member := auth.Actor{UserID: 2, Role: models.RoleStudent}
	moderator := auth.Actor{UserID: 3, Role: models.RoleStudent}

	store := newFakeGroupStore()
	svc := newGroupServiceForTest(store)

	resp, err := svc.Create(ctx, creator, validGroupRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Join(ctx, member, resp.ID))
	require.NoError(t, svc.Join(ctx, moderator, resp.ID))
	require.NoError(t, svc.SetRole(ctx, creator, resp.ID, &dto.SetGroupRoleRequest{UserID: moderator.UserID, Role: "moderator"}))

	t.Run("cannot ban yourself", func(t *testing.T) {
		err := svc.Ban(ctx, creator, resp.ID, &dto.BanMemberRequest{UserID: creator.UserID, Banned: true})
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})

	t.Run("plain members cannot ban", func(t *testing.T) {
		err := svc.Ban(ctx, member, resp.ID, &dto.BanMemberRequest{UserID: moderator.UserID, Banned: true})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("nobody bans a group admin", func(t *testing.T) {
		err := svc.Ban(ctx, moderator, resp.ID, &dto.BanMemberRequest{UserID: creator.UserID, Banned: true})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("moderators ban and unban members", func(t *testing.T) {
		require.NoError(t, svc.Ban(ctx, moderator, resp.ID, &dto.BanMemberRequest{UserID: member.UserID, Banned: true}))
		assert.True(t, store.members[resp.ID][member.UserID].IsBanned)

		require.NoError(t, svc.Ban(ctx, moderator, resp.ID, &dto.BanMemberRequest{UserID: member.UserID, Banned: false}))
		assert.False(t, store.members[resp.ID][member.UserID].IsBanned)
	})

	t.Run("banned members lose their powers", func(t *testing.T) {
		require.NoError(t, svc.Ban(ctx, creator, resp.ID, &dto.BanMemberRequest{UserID: moderator.UserID, Banned: true}))

		err := svc.Ban(ctx, moderator, resp.ID, &dto.BanMemberRequest{UserID: member.UserID, Banned: true})
		assert.ErrorIs(t, err, apperrors.ErrMemberBanned)
	})
}

func TestGroupMembers(t *testing.T) {
	ctx := context.Background()
	creator := auth.Actor{UserID: 1, Role: models.RoleStudent}
	outsider := auth.Actor{UserID: 2, Role: models.RoleStudent}
	siteAdmin := auth.Actor{UserID: 9, Role: models.RoleAdmin}

	store := newFakeGroupStore()
	svc := newGroupServiceForTest(store)

	resp, err := svc.Create(ctx, creator, validGroupRequest())
	require.NoError(t, err)

	t.Run("unknown group", func(t *testing.T) {
		_, err := svc.Members(ctx, creator, 999)
		assert.ErrorIs(t, err, apperrors.ErrGroupNotFound)
	})

	t.Run("only members see the roster", func(t *testing.T) {
		_, err := svc.Members(ctx, outsider, resp.ID)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("members see the roster", func(t *testing.T) {
		members, err := svc.Members(ctx, creator, resp.ID)
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, string(models.GroupRoleAdmin), members[0].Role)
	})

	t.Run("site admins bypass the membership check", func(t *testing.T) {
		members, err := svc.Members(ctx, siteAdmin, resp.ID)
		require.NoError(t, err)
		assert.Len(t, members, 1)
	})

	t.Run("storage failures surface for admins too", func(t *testing.T) {
		store.memberErr = assert.AnError
		defer func() { store.memberErr = nil }()

		_, err := svc.Members(ctx, siteAdmin, resp.ID)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestGroupMyGroups(t *testing.T) {
	ctx := context.Background()
	creator := auth.Actor{UserID: 1, Role: models.RoleStudent}
	joiner := auth.Actor{UserID: 2, Role: models.RoleStudent}

	store := newFakeGroupStore()
	svc := newGroupServiceForTest(store)

	resp, err := svc.Create(ctx, creator, validGroupRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Join(ctx, joiner, resp.ID))

	mine, err := svc.MyGroups(ctx, joiner)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, string(models.GroupRoleMember), mine[0].MyRole)

	// Joined groups no longer show up in discovery
	discovered, err := svc.Discover(ctx, joiner, &dto.DiscoverGroupsRequest{})
	require.NoError(t, err)
	assert.Empty(t, discovered)
}
