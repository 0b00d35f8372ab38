package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesconnect/backend/internal/app/auth"
	"github.com/mesconnect/backend/internal/app/models"
	"github.com/mesconnect/backend/internal/app/models/dto"
	"github.com/mesconnect/backend/internal/pkg/apperrors"
)

const (
	eventDateLayout   = "2006-01-02"
	defaultEventLimit = 20
)

// EventService defines the interface for the event registry
type EventService interface {
	Create(ctx context.Context, actor auth.Actor, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	Register(ctx context.Context, actor auth.Actor, eventID int64) error
	Cancel(ctx context.Context, actor auth.Actor, eventID int64) error
	Upcoming(ctx context.Context, req *dto.UpcomingEventsRequest) ([]dto.EventResponse, error)
	Attending(ctx context.Context, actor auth.Actor) ([]dto.EventResponse, error)
	Organizing(ctx context.Context, actor auth.Actor) ([]dto.EventResponse, error)
	Participants(ctx context.Context, actor auth.Actor, eventID int64) ([]dto.ParticipantResponse, error)
}

// eventStore is the storage contract the event service relies on
type eventStore interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	Register(ctx context.Context, eventID, userID int64) error
	CancelRegistration(ctx context.Context, eventID, userID int64) error
	Upcoming(ctx context.Context, eventType *string, limit int) ([]*models.Event, error)
	Attending(ctx context.Context, userID int64) ([]*models.Event, error)
	Organizing(ctx context.Context, userID int64) ([]*models.Event, error)
	Participants(ctx context.Context, eventID int64) ([]*models.EventRegistration, error)
}

// eventServiceImpl implements EventService
type eventServiceImpl struct {
	eventRepo eventStore
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEventService creates a new EventService
func NewEventService(eventRepo eventStore, logger zerolog.Logger) EventService {
	return &eventServiceImpl{
		eventRepo: eventRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// Create validates and stores a new event organized by the actor
func (s *eventServiceImpl) Create(ctx context.Context, actor auth.Actor, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	s.logger.Debug().
		Int64("organizerID", actor.UserID).
		Str("title", req.Title).
		Msg("Creating event")

	event, err := s.buildEvent(actor, req)
	if err != nil {
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.logger.Error().Err(err).Int64("organizerID", actor.UserID).Msg("Failed to create event")
		return nil, err
	}

	resp := toEventResponse(event)
	return &resp, nil
}

func (s *eventServiceImpl) buildEvent(actor auth.Actor, req *dto.CreateEventRequest) (*models.Event, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewFieldValidationError("title", "title cannot be empty")
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, apperrors.NewFieldValidationError("description", "description cannot be empty")
	}
	location := strings.TrimSpace(req.Location)
	if location == "" {
		return nil, apperrors.NewFieldValidationError("location", "location cannot be empty")
	}

	eventType := models.EventType(req.EventType)
	if !models.ValidEventType(eventType) {
		return nil, apperrors.NewFieldValidationError("eventType", "unknown event type")
	}

	eventDate, err := time.Parse(eventDateLayout, req.EventDate)
	if err != nil {
		return nil, apperrors.NewFieldValidationError("eventDate", "event date must be YYYY-MM-DD")
	}
	today := s.today()
	if eventDate.Before(today) {
		return nil, apperrors.NewFieldValidationError("eventDate", "event date cannot be in the past")
	}

	if _, err := time.Parse("15:04", req.EventTime); err != nil {
		return nil, apperrors.NewFieldValidationError("eventTime", "event time must be HH:MM")
	}

	event := &models.Event{
		OrganizerID:     actor.UserID,
		Title:           title,
		Description:     description,
		EventType:       eventType,
		EventDate:       eventDate,
		EventTime:       req.EventTime,
		Location:        location,
		MaxParticipants: req.MaxParticipants,
	}
	if req.Fee != nil {
		if *req.Fee < 0 {
			return nil, apperrors.NewFieldValidationError("fee", "fee cannot be negative")
		}
		event.Fee = *req.Fee
	}
	if req.RegistrationDeadline != nil {
		deadline, err := time.Parse(eventDateLayout, *req.RegistrationDeadline)
		if err != nil {
			return nil, apperrors.NewFieldValidationError("registrationDeadline", "registration deadline must be YYYY-MM-DD")
		}
		if deadline.After(eventDate) {
			return nil, apperrors.NewFieldValidationError("registrationDeadline", "registration deadline cannot be after the event date")
		}
		event.RegistrationDeadline = &deadline
	}

	return event, nil
}

// Register signs the actor up for an event. Capacity is enforced in storage
// under a row lock; the deadline is checked here first.
func (s *eventServiceImpl) Register(ctx context.Context, actor auth.Actor, eventID int64) error {
	s.logger.Debug().
		Int64("userID", actor.UserID).
		Int64("eventID", eventID).
		Msg("Registering for event")

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !event.IsActive {
		return apperrors.NewInvalidStateError("event is no longer active")
	}
	if event.RegistrationDeadline != nil && s.today().After(*event.RegistrationDeadline) {
		return apperrors.ErrRegistrationClosed
	}

	return s.eventRepo.Register(ctx, eventID, actor.UserID)
}

// Cancel withdraws the actor's registration
func (s *eventServiceImpl) Cancel(ctx context.Context, actor auth.Actor, eventID int64) error {
	s.logger.Debug().
		Int64("userID", actor.UserID).
		Int64("eventID", eventID).
		Msg("Cancelling registration")

	return s.eventRepo.CancelRegistration(ctx, eventID, actor.UserID)
}

// Upcoming retrieves active events dated today or later
func (s *eventServiceImpl) Upcoming(ctx context.Context, req *dto.UpcomingEventsRequest) ([]dto.EventResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}

	events, err := s.eventRepo.Upcoming(ctx, req.EventType, limit)
	if err != nil {
		return nil, err
	}
	return toEventResponses(events), nil
}

// Attending retrieves upcoming events the actor is registered for
func (s *eventServiceImpl) Attending(ctx context.Context, actor auth.Actor) ([]dto.EventResponse, error) {
	events, err := s.eventRepo.Attending(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return toEventResponses(events), nil
}

// Organizing retrieves upcoming events the actor organizes
func (s *eventServiceImpl) Organizing(ctx context.Context, actor auth.Actor) ([]dto.EventResponse, error) {
	events, err := s.eventRepo.Organizing(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return toEventResponses(events), nil
}

// Participants lists an event's registrants. Only the organizer and admins
// may see them.
func (s *eventServiceImpl) Participants(ctx context.Context, actor auth.Actor, eventID int64) ([]dto.ParticipantResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !auth.CanViewParticipants(actor, event.OrganizerID) {
		return nil, apperrors.NewForbiddenError("only the organizer may view participants")
	}

	registrations, err := s.eventRepo.Participants(ctx, eventID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ParticipantResponse, 0, len(registrations))
	for _, reg := range registrations {
		resp := dto.ParticipantResponse{
			RegisteredAt:     reg.RegisteredAt,
			AttendanceStatus: string(reg.AttendanceStatus),
		}
		if reg.Participant != nil {
			resp.User = dto.ToUserBasicResponse(*reg.Participant)
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// today truncates the clock to a date for deadline and past-date checks
func (s *eventServiceImpl) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func toEventResponse(event *models.Event) dto.EventResponse {
	resp := dto.EventResponse{
		ID:                   event.ID,
		Title:                event.Title,
		Description:          event.Description,
		EventType:            string(event.EventType),
		EventDate:            event.EventDate,
		EventTime:            event.EventTime,
		Location:             event.Location,
		MaxParticipants:      event.MaxParticipants,
		Fee:                  event.Fee,
		RegistrationDeadline: event.RegistrationDeadline,
		IsActive:             event.IsActive,
		RegisteredCount:      event.RegisteredCount,
		CreatedAt:            event.CreatedAt,
	}
	if event.Organizer != nil {
		organizer := dto.ToUserBasicResponse(*event.Organizer)
		resp.Organizer = &organizer
	}
	return resp
}

func toEventResponses(events []*models.Event) []dto.EventResponse {
	responses := make([]dto.EventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, toEventResponse(event))
	}
	return responses
}
