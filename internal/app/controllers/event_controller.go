package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesconnect/backend/internal/app/models/dto"
	"github.com/mesconnect/backend/internal/app/services"
	"github.com/mesconnect/backend/internal/middleware"
)

// EventController handles event registry operations
type EventController struct {
	eventService services.EventService
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService) *EventController {
	return &EventController{eventService: eventService}
}

// Create stores a new event
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEventRequest true "Event details"
// @Success 201 {object} dto.APIResponse{data=dto.EventResponse} "Event created"
// @Failure 400 {object} dto.ErrorResponse "Invalid event data"
// @Router /events [post]
func (c *EventController) Create(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateEventRequest
	if !bindJSON(ctx, &req) {
		return
	}

	event, err := c.eventService.Create(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(event))
}

// Register signs the caller up for an event
// @Summary Register for an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 201 {object} dto.APIResponse "Registered"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Failure 409 {object} dto.ErrorResponse "Already registered or event full"
// @Router /events/{id}/register [post]
func (c *EventController) Register(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.eventService.Register(ctx, actor, eventID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewMessageResponse("Registered for event"))
}

// Cancel withdraws the caller's registration
// @Summary Cancel an event registration
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse "Registration cancelled"
// @Failure 404 {object} dto.ErrorResponse "Not registered"
// @Router /events/{id}/register [delete]
func (c *EventController) Cancel(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.eventService.Cancel(ctx, actor, eventID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Registration cancelled"))
}

// Upcoming lists active future events
// @Summary List upcoming events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventType query string false "Filter by type"
// @Param limit query int false "Maximum results"
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse} "Events"
// @Router /events [get]
func (c *EventController) Upcoming(ctx *gin.Context) {
	var req dto.UpcomingEventsRequest
	if !bindQuery(ctx, &req) {
		return
	}

	events, err := c.eventService.Upcoming(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events))
}

// Attending lists events the caller is registered for
// @Summary List events I attend
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse} "Events"
// @Router /events/attending [get]
func (c *EventController) Attending(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	events, err := c.eventService.Attending(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events))
}

// Organizing lists events the caller organizes
// @Summary List events I organize
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse} "Events"
// @Router /events/organizing [get]
func (c *EventController) Organizing(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	events, err := c.eventService.Organizing(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events))
}

// Participants lists an event's registrants
// @Summary List event participants
// @Description Lists registrants of an event (organizer and admins only)
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.ParticipantResponse} "Participants"
// @Failure 403 {object} dto.ErrorResponse "Not the organizer"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id}/participants [get]
func (c *EventController) Participants(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	participants, err := c.eventService.Participants(ctx, actor, eventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(participants))
}
