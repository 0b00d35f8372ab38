package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesconnect/backend/internal/app/models/dto"
	"github.com/mesconnect/backend/internal/app/services"
	"github.com/mesconnect/backend/internal/middleware"
)

// ChatController handles direct messaging operations
type ChatController struct {
	chatService services.ChatService
}

// NewChatController creates a new ChatController
func NewChatController(chatService services.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

// Send delivers a direct message
// @Summary Send a message
// @Description Sends a direct message to another user
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse} "Message sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Receiver not found"
// @Router /messages [post]
func (c *ChatController) Send(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !bindJSON(ctx, &req) {
		return
	}

	msg, err := c.chatService.Send(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(msg))
}

// History retrieves the conversation with a peer
// @Summary Get conversation history
// @Description Retrieves the conversation with a user in ascending order and marks their messages as read
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Peer user ID"
// @Param limit query int false "Maximum messages"
// @Success 200 {object} dto.APIResponse{data=[]dto.MessageResponse} "Messages"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /messages/{userId} [get]
func (c *ChatController) History(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	peerID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	var req dto.HistoryRequest
	if !bindQuery(ctx, &req) {
		return
	}

	messages, err := c.chatService.History(ctx, actor, peerID, req.Limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(messages))
}

// Conversations retrieves the caller's inbox
// @Summary List conversations
// @Description Lists one entry per counterpart with the latest message and unread count
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ConversationResponse} "Conversations"
// @Router /messages [get]
func (c *ChatController) Conversations(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	conversations, err := c.chatService.ConversationList(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(conversations))
}
