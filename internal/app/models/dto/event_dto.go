package dto

import (
	"time"
)

// --- Request DTOs ---

// CreateEventRequest represents data for creating an event
type CreateEventRequest struct {
	Title                string   `json:"title" binding:"required,max=200"`
	Description          string   `json:"description" binding:"required"`
	EventType            string   `json:"eventType" binding:"required"`
	EventDate            string   `json:"eventDate" binding:"required"` // YYYY-MM-DD
	EventTime            string   `json:"eventTime" binding:"required"` // HH:MM
	Location             string   `json:"location" binding:"required,max=200"`
	MaxParticipants      *int     `json:"maxParticipants,omitempty" binding:"omitempty,min=1"`
	Fee                  *float64 `json:"fee,omitempty" binding:"omitempty,min=0"`
	RegistrationDeadline *string  `json:"registrationDeadline,omitempty"` // YYYY-MM-DD
}

// UpcomingEventsRequest represents filter parameters for upcoming events
type UpcomingEventsRequest struct {
	EventType *string `form:"eventType,omitempty"`
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
}

// --- Response DTOs ---

// EventResponse represents an event with its registration count
type EventResponse struct {
	ID                   int64      `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	EventType            string     `json:"eventType"`
	EventDate            time.Time  `json:"eventDate"`
	EventTime            string     `json:"eventTime"`
	Location             string     `json:"location"`
	MaxParticipants      *int       `json:"maxParticipants,omitempty"`
	Fee                  float64    `json:"fee"`
	RegistrationDeadline *time.Time `json:"registrationDeadline,omitempty"`
	IsActive             bool       `json:"isActive"`
	RegisteredCount      int64      `json:"registeredCount"`
	CreatedAt            time.Time  `json:"createdAt"`

	Organizer *UserBasicResponse `json:"organizer,omitempty"`
}

// ParticipantResponse represents one registrant of an event
type ParticipantResponse struct {
	User             UserBasicResponse `json:"user"`
	RegisteredAt     time.Time         `json:"registeredAt"`
	AttendanceStatus string            `json:"attendanceStatus"`
}
