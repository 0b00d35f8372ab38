package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mesconnect/backend/internal/app/auth"
	"github.com/mesconnect/backend/internal/app/models"
	"github.com/mesconnect/backend/internal/app/models/dto"
	"github.com/mesconnect/backend/internal/pkg/apperrors"
)

const defaultGroupLimit = 20

// GroupService defines the interface for group membership operations
type GroupService interface {
	Create(ctx context.Context, actor auth.Actor, req *dto.CreateGroupRequest) (*dto.GroupResponse, error)
	Join(ctx context.Context, actor auth.Actor, groupID int64) error
	Leave(ctx context.Context, actor auth.Actor, groupID int64) error
	SetRole(ctx context.Context, actor auth.Actor, groupID int64, req *dto.SetGroupRoleRequest) error
	Ban(ctx context.Context, actor auth.Actor, groupID int64, req *dto.BanMemberRequest) error
	Discover(ctx context.Context, actor auth.Actor, req *dto.DiscoverGroupsRequest) ([]dto.GroupResponse, error)
	MyGroups(ctx context.Context, actor auth.Actor) ([]dto.GroupResponse, error)
	Members(ctx context.Context, actor auth.Actor, groupID int64) ([]dto.GroupMemberResponse, error)
}

// groupStore is the storage contract the group service relies on
type groupStore interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id int64) (*models.Group, error)
	GetMember(ctx context.Context, groupID, userID int64) (*models.GroupMember, error)
	Join(ctx context.Context, groupID, userID int64) error
	Leave(ctx context.Context, groupID, userID int64) error
	SetRole(ctx context.Context, groupID, userID int64, role models.GroupRole) error
	SetBanned(ctx context.Context, groupID, userID int64, banned bool) error
	Discover(ctx context.Context, userID int64, groupType *string, limit int) ([]*models.Group, error)
	ListByMember(ctx context.Context, userID int64) ([]*models.Group, []models.GroupRole, error)
	Members(ctx context.Context, groupID int64) ([]*models.GroupMember, error)
}

// groupServiceImpl implements GroupService
type groupServiceImpl struct {
	groupRepo groupStore
	logger    zerolog.Logger
}

// NewGroupService creates a new GroupService
func NewGroupService(groupRepo groupStore, logger zerolog.Logger) GroupService {
	return &groupServiceImpl{
		groupRepo: groupRepo,
		logger:    logger,
	}
}

// Create validates and stores a new group. The creator becomes its admin in
// the same transaction.
func (s *groupServiceImpl) Create(ctx context.Context, actor auth.Actor, req *dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	s.logger.Debug().
		Int64("creatorID", actor.UserID).
		Str("name", req.Name).
		Msg("Creating group")

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewFieldValidationError("name", "name cannot be empty")
	}

	groupType := models.GroupType(req.GroupType)
	if !models.ValidGroupType(groupType) {
		return nil, apperrors.NewFieldValidationError("groupType", "unknown group type")
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	if req.MaxMembers != nil && *req.MaxMembers < 2 {
		return nil, apperrors.NewFieldValidationError("maxMembers", "member limit must allow at least two members")
	}

	group := &models.Group{
		CreatorID:   actor.UserID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		GroupType:   groupType,
		IsPublic:    isPublic,
		MaxMembers:  req.MaxMembers,
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		s.logger.Error().Err(err).Int64("creatorID", actor.UserID).Msg("Failed to create group")
		return nil, err
	}

	resp := toGroupResponse(group)
	resp.MyRole = string(models.GroupRoleAdmin)
	return &resp, nil
}

// Join adds the actor to a group. Private groups refuse self-service joins;
// capacity and ban checks run in storage under a row lock.
func (s *groupServiceImpl) Join(ctx context.Context, actor auth.Actor, groupID int64) error {
	s.logger.Debug().
		Int64("userID", actor.UserID).
		Int64("groupID", groupID).
		Msg("Joining group")

	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.IsPublic {
		return apperrors.ErrGroupPrivate
	}

	return s.groupRepo.Join(ctx, groupID, actor.UserID)
}

// Leave removes the actor from a group under the sole-admin policy
func (s *groupServiceImpl) Leave(ctx context.Context, actor auth.Actor, groupID int64) error {
	s.logger.Debug().
		Int64("userID", actor.UserID).
		Int64("groupID", groupID).
		Msg("Leaving group")

	return s.groupRepo.Leave(ctx, groupID, actor.UserID)
}

// SetRole changes another member's role subject to the role policy
func (s *groupServiceImpl) SetRole(ctx context.Context, actor auth.Actor, groupID int64, req *dto.SetGroupRoleRequest) error {
	newRole := models.GroupRole(req.Role)
	if !models.ValidGroupRole(newRole) {
		return apperrors.NewFieldValidationError("role", "unknown group role")
	}

	actorMember, err := s.groupRepo.GetMember(ctx, groupID, actor.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotMember) {
			return apperrors.NewForbiddenError("only group members may change roles")
		}
		return err
	}
	if actorMember.IsBanned {
		return apperrors.ErrMemberBanned
	}

	target, err := s.groupRepo.GetMember(ctx, groupID, req.UserID)
	if err != nil {
		return err
	}

	if !auth.CanSetGroupRole(actorMember.Role, target.Role, newRole) {
		return apperrors.NewForbiddenError("insufficient group role for this change")
	}

	s.logger.Info().
		Int64("actorID", actor.UserID).
		Int64("groupID", groupID).
		Int64("targetID", req.UserID).
		Str("role", req.Role).
		Msg("Changing group role")

	return s.groupRepo.SetRole(ctx, groupID, req.UserID, newRole)
}

// Ban flips a member's ban flag subject to the ban policy
func (s *groupServiceImpl) Ban(ctx context.Context, actor auth.Actor, groupID int64, req *dto.BanMemberRequest) error {
	if req.UserID == actor.UserID {
		return apperrors.NewInvalidArgumentError("cannot ban yourself")
	}

	actorMember, err := s.groupRepo.GetMember(ctx, groupID, actor.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotMember) {
			return apperrors.NewForbiddenError("only group members may ban")
		}
		return err
	}
	if actorMember.IsBanned {
		return apperrors.ErrMemberBanned
	}

	target, err := s.groupRepo.GetMember(ctx, groupID, req.UserID)
	if err != nil {
		return err
	}

	if !auth.CanBanGroupMember(actorMember.Role, target.Role) {
		return apperrors.NewForbiddenError("insufficient group role to ban this member")
	}

	s.logger.Info().
		Int64("actorID", actor.UserID).
		Int64("groupID", groupID).
		Int64("targetID", req.UserID).
		Bool("banned", req.Banned).
		Msg("Updating member ban")

	return s.groupRepo.SetBanned(ctx, groupID, req.UserID, req.Banned)
}

// Discover retrieves groups the actor has not joined
func (s *groupServiceImpl) Discover(ctx context.Context, actor auth.Actor, req *dto.DiscoverGroupsRequest) ([]dto.GroupResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultGroupLimit
	}

	groups, err := s.groupRepo.Discover(ctx, actor.UserID, req.GroupType, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, toGroupResponse(group))
	}
	return responses, nil
}

// MyGroups retrieves the groups the actor belongs to with their role in each
func (s *groupServiceImpl) MyGroups(ctx context.Context, actor auth.Actor) ([]dto.GroupResponse, error) {
	groups, roles, err := s.groupRepo.ListByMember(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GroupResponse, 0, len(groups))
	for i, group := range groups {
		resp := toGroupResponse(group)
		resp.MyRole = string(roles[i])
		responses = append(responses, resp)
	}
	return responses, nil
}

// Members lists a group's members. Only members may see the roster.
func (s *groupServiceImpl) Members(ctx context.Context, actor auth.Actor, groupID int64) ([]dto.GroupMemberResponse, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	actorMember, err := s.groupRepo.GetMember(ctx, groupID, actor.UserID)
	switch {
	case err == nil:
		if actorMember.IsBanned {
			return nil, apperrors.ErrMemberBanned
		}
	case errors.Is(err, apperrors.ErrNotMember):
		// Platform admins may inspect any roster without a membership
		if !actor.IsAdmin() {
			return nil, apperrors.NewForbiddenError("only group members may view the roster")
		}
	default:
		return nil, err
	}

	members, err := s.groupRepo.Members(ctx, groupID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GroupMemberResponse, 0, len(members))
	for _, member := range members {
		resp := dto.GroupMemberResponse{
			Role:     string(member.Role),
			JoinedAt: member.JoinedAt,
			IsBanned: member.IsBanned,
		}
		if member.Member != nil {
			resp.User = dto.ToUserBasicResponse(*member.Member)
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func toGroupResponse(group *models.Group) dto.GroupResponse {
	resp := dto.GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		GroupType:   string(group.GroupType),
		IsPublic:    group.IsPublic,
		MaxMembers:  group.MaxMembers,
		MemberCount: group.MemberCount,
		CreatedAt:   group.CreatedAt,
	}
	if group.Creator != nil {
		creator := dto.ToUserBasicResponse(*group.Creator)
		resp.Creator = &creator
	}
	return resp
}
