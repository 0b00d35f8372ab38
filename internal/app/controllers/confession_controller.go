package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mesconnect/backend/internal/app/models/dto"
	"github.com/mesconnect/backend/internal/app/services"
	"github.com/mesconnect/backend/internal/middleware"
)

// ConfessionController handles confession pipeline operations
type ConfessionController struct {
	confessionService services.ConfessionService
}

// NewConfessionController creates a new ConfessionController
func NewConfessionController(confessionService services.ConfessionService) *ConfessionController {
	return &ConfessionController{confessionService: confessionService}
}

// Submit posts a confession
// @Summary Submit a confession
// @Description Posts a confession into the moderation queue, optionally anonymous
// @Tags confessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitConfessionRequest true "Confession"
// @Success 201 {object} dto.APIResponse{data=dto.ConfessionResponse} "Confession submitted"
// @Failure 400 {object} dto.ErrorResponse "Text too short or too long"
// @Router /confessions [post]
func (c *ConfessionController) Submit(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.SubmitConfessionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	confession, err := c.confessionService.Submit(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(confession))
}

// Moderate applies an admin moderation decision
// @Summary Moderate a confession
// @Description Approves, unapproves or features a confession (admin only)
// @Tags confessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Confession ID"
// @Param request body dto.ModerateConfessionRequest true "Decision"
// @Success 200 {object} dto.APIResponse "Moderation applied"
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Failure 404 {object} dto.ErrorResponse "Confession not found"
// @Router /confessions/{id}/moderate [put]
func (c *ConfessionController) Moderate(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	confessionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ModerateConfessionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.confessionService.Moderate(ctx, actor, confessionID, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Moderation applied"))
}

// ToggleLike flips the caller's like on a confession
// @Summary Toggle a like
// @Tags confessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Confession ID"
// @Success 200 {object} dto.APIResponse{data=dto.ToggleLikeResponse} "Like toggled"
// @Failure 404 {object} dto.ErrorResponse "Confession not found"
// @Router /confessions/{id}/like [post]
func (c *ConfessionController) ToggleLike(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	confessionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	result, err := c.confessionService.ToggleLike(ctx, actor, confessionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// Feed retrieves approved confessions
// @Summary Get the confession feed
// @Tags confessions
// @Produce json
// @Security BearerAuth
// @Param tag query string false "Filter by tag"
// @Param sort query string false "Sort order" Enums(recent, most_liked)
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.ConfessionResponse}} "Feed page"
// @Router /confessions [get]
func (c *ConfessionController) Feed(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.ConfessionFeedRequest
	if !bindQuery(ctx, &req) {
		return
	}

	feed, err := c.confessionService.Feed(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(feed))
}

// MyConfessions retrieves the caller's attributed posts
// @Summary List my confessions
// @Tags confessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ConfessionResponse} "Confessions"
// @Router /confessions/mine [get]
func (c *ConfessionController) MyConfessions(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	confessions, err := c.confessionService.MyConfessions(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(confessions))
}

// Delete removes a confession
// @Summary Delete a confession
// @Description Deletes an owned confession, or any confession for admins
// @Tags confessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Confession ID"
// @Success 200 {object} dto.APIResponse "Confession deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Confession not found"
// @Router /confessions/{id} [delete]
func (c *ConfessionController) Delete(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	confessionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.confessionService.Delete(ctx, actor, confessionID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Confession deleted"))
}

// Pending retrieves the moderation queue
// @Summary List confessions pending moderation
// @Tags confessions
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum results"
// @Success 200 {object} dto.APIResponse{data=[]dto.ConfessionResponse} "Pending confessions"
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Router /confessions/pending [get]
func (c *ConfessionController) Pending(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	confessions, err := c.confessionService.PendingModeration(ctx, actor, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(confessions))
}
