package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesconnect/backend/internal/app/models/dto"
	"github.com/mesconnect/backend/internal/app/services"
	"github.com/mesconnect/backend/internal/middleware"
)

// ConnectionController handles connection graph operations
type ConnectionController struct {
	connectionService services.ConnectionService
}

// NewConnectionController creates a new ConnectionController
func NewConnectionController(connectionService services.ConnectionService) *ConnectionController {
	return &ConnectionController{connectionService: connectionService}
}

// Request sends a connection request
// @Summary Send a connection request
// @Description Sends a pending connection request to another user
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ConnectionRequestRequest true "Recipient"
// @Success 201 {object} dto.APIResponse "Request sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 409 {object} dto.ErrorResponse "Connection already exists"
// @Router /connections/requests [post]
func (c *ConnectionController) Request(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.ConnectionRequestRequest
	if !bindJSON(ctx, &req) {
		return
	}

	conn, err := c.connectionService.Request(ctx, actor, req.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(conn))
}

// Respond accepts or rejects a pending request
// @Summary Respond to a connection request
// @Description Accepts or rejects a pending request sent by the given user
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Requester user ID"
// @Param request body dto.ConnectionRespondRequest true "Decision"
// @Success 200 {object} dto.APIResponse "Request handled"
// @Failure 404 {object} dto.ErrorResponse "No pending request"
// @Router /connections/requests/{userId} [put]
func (c *ConnectionController) Respond(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	requesterID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	var req dto.ConnectionRespondRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.connectionService.Respond(ctx, actor, requesterID, req.Accept); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "Connection request rejected"
	if req.Accept {
		message = "Connection request accepted"
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse(message))
}

// Remove deletes a connection
// @Summary Remove a connection
// @Description Removes the connection with the given user
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} dto.APIResponse "Connection removed"
// @Failure 404 {object} dto.ErrorResponse "Connection not found"
// @Router /connections/{userId} [delete]
func (c *ConnectionController) Remove(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	otherUserID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	if err := c.connectionService.Remove(ctx, actor, otherUserID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Connection removed"))
}

// ListAccepted lists the caller's connections
// @Summary List accepted connections
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ConnectionResponse} "Connections"
// @Router /connections [get]
func (c *ConnectionController) ListAccepted(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	conns, err := c.connectionService.ListAccepted(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(conns))
}

// ListPending lists requests awaiting the caller's decision
// @Summary List pending incoming requests
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ConnectionResponse} "Pending requests"
// @Router /connections/requests [get]
func (c *ConnectionController) ListPending(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	conns, err := c.connectionService.ListPendingIncoming(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(conns))
}

// Counts returns the caller's connection totals
// @Summary Get connection counts
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ConnectionCountsResponse} "Counts"
// @Router /connections/counts [get]
func (c *ConnectionController) Counts(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	counts, err := c.connectionService.Counts(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(counts))
}

// Suggestions lists users the caller might connect with
// @Summary Get connection suggestions
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param branch query string false "Filter by branch"
// @Param role query string false "Filter by role" Enums(student, alumni)
// @Param limit query int false "Maximum results"
// @Success 200 {object} dto.APIResponse{data=[]dto.UserBasicResponse} "Suggestions"
// @Router /connections/suggestions [get]
func (c *ConnectionController) Suggestions(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.ConnectionSuggestionsRequest
	if !bindQuery(ctx, &req) {
		return
	}

	suggestions, err := c.connectionService.Suggestions(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(suggestions))
}

// StatusWith returns the connection state with another user
// @Summary Get connection status with a user
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} dto.APIResponse "Connection state"
// @Failure 404 {object} dto.ErrorResponse "No connection"
// @Router /connections/{userId}/status [get]
func (c *ConnectionController) StatusWith(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	otherUserID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	conn, err := c.connectionService.StatusWith(ctx, actor, otherUserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(conn))
}
