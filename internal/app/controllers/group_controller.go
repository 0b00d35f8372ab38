package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesconnect/backend/internal/app/models/dto"
	"github.com/mesconnect/backend/internal/app/services"
	"github.com/mesconnect/backend/internal/middleware"
)

// GroupController handles group membership operations
type GroupController struct {
	groupService services.GroupService
}

// NewGroupController creates a new GroupController
func NewGroupController(groupService services.GroupService) *GroupController {
	return &GroupController{groupService: groupService}
}

// Create stores a new group
// @Summary Create a group
// @Description Creates a group; the creator becomes its admin
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateGroupRequest true "Group details"
// @Success 201 {object} dto.APIResponse{data=dto.GroupResponse} "Group created"
// @Failure 400 {object} dto.ErrorResponse "Invalid group data"
// @Router /groups [post]
func (c *GroupController) Create(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateGroupRequest
	if !bindJSON(ctx, &req) {
		return
	}

	group, err := c.groupService.Create(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(group))
}

// Join adds the caller to a group
// @Summary Join a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 201 {object} dto.APIResponse "Joined"
// @Failure 403 {object} dto.ErrorResponse "Private group or banned"
// @Failure 409 {object} dto.ErrorResponse "Already a member or group full"
// @Router /groups/{id}/join [post]
func (c *GroupController) Join(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.groupService.Join(ctx, actor, groupID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewMessageResponse("Joined group"))
}

// Leave removes the caller from a group
// @Summary Leave a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse "Left group"
// @Failure 422 {object} dto.ErrorResponse "Sole admin cannot leave"
// @Router /groups/{id}/leave [post]
func (c *GroupController) Leave(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.groupService.Leave(ctx, actor, groupID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Left group"))
}

// SetRole changes a member's role
// @Summary Change a member's role
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Param request body dto.SetGroupRoleRequest true "Role change"
// @Success 200 {object} dto.APIResponse "Role changed"
// @Failure 403 {object} dto.ErrorResponse "Insufficient group role"
// @Failure 422 {object} dto.ErrorResponse "Would demote the last admin"
// @Router /groups/{id}/roles [put]
func (c *GroupController) SetRole(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.SetGroupRoleRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.groupService.SetRole(ctx, actor, groupID, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Role updated"))
}

// Ban flips a member's ban flag
// @Summary Ban or unban a member
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Param request body dto.BanMemberRequest true "Ban decision"
// @Success 200 {object} dto.APIResponse "Ban updated"
// @Failure 403 {object} dto.ErrorResponse "Insufficient group role"
// @Router /groups/{id}/ban [put]
func (c *GroupController) Ban(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.BanMemberRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.groupService.Ban(ctx, actor, groupID, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Ban updated"))
}

// Discover lists groups the caller has not joined
// @Summary Discover groups
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupType query string false "Filter by type"
// @Param limit query int false "Maximum results"
// @Success 200 {object} dto.APIResponse{data=[]dto.GroupResponse} "Groups"
// @Router /groups [get]
func (c *GroupController) Discover(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.DiscoverGroupsRequest
	if !bindQuery(ctx, &req) {
		return
	}

	groups, err := c.groupService.Discover(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(groups))
}

// MyGroups lists the caller's groups
// @Summary List my groups
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.GroupResponse} "Groups"
// @Router /groups/mine [get]
func (c *GroupController) MyGroups(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	groups, err := c.groupService.MyGroups(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(groups))
}

// Members lists a group's roster
// @Summary List group members
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.GroupMemberResponse} "Members"
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /groups/{id}/members [get]
func (c *GroupController) Members(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	members, err := c.groupService.Members(ctx, actor, groupID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(members))
}
