package models

import "time"

// EventType categorizes an event
type EventType string

const (
	EventWorkshop    EventType = "workshop"
	EventSeminar     EventType = "seminar"
	EventCultural    EventType = "cultural"
	EventSports      EventType = "sports"
	EventTechnical   EventType = "technical"
	EventPlacement   EventType = "placement"
	EventAlumniMeet  EventType = "alumni_meet"
	EventOtherEvents EventType = "other"
)

// ValidEventType reports whether the value is a known event type
func ValidEventType(t EventType) bool {
	switch t {
	case EventWorkshop, EventSeminar, EventCultural, EventSports,
		EventTechnical, EventPlacement, EventAlumniMeet, EventOtherEvents:
		return true
	}
	return false
}

// AttendanceStatus tracks whether a registrant showed up
type AttendanceStatus string

const (
	AttendanceRegistered AttendanceStatus = "registered"
	AttendanceAttended   AttendanceStatus = "attended"
	AttendanceAbsent     AttendanceStatus = "absent"
)

// Event represents a row in the 'events' table
type Event struct {
	ID                   int64      `json:"id" db:"id"`
	OrganizerID          int64      `json:"organizerId" db:"organizer_id"`
	Title                string     `json:"title" db:"title"`
	Description          string     `json:"description" db:"description"`
	EventType            EventType  `json:"eventType" db:"event_type"`
	EventDate            time.Time  `json:"eventDate" db:"event_date"`
	EventTime            string     `json:"eventTime" db:"event_time"`
	Location             string     `json:"location" db:"location"`
	MaxParticipants      *int       `json:"maxParticipants,omitempty" db:"max_participants"`
	Fee                  float64    `json:"fee" db:"fee"`
	RegistrationDeadline *time.Time `json:"registrationDeadline,omitempty" db:"registration_deadline"`
	IsActive             bool       `json:"isActive" db:"is_active"`
	CreatedAt            time.Time  `json:"createdAt" db:"created_at"`

	// RegisteredCount is computed per query, not stored
	RegisteredCount int64 `json:"registeredCount" db:"registered_count"`

	Organizer *UserSummary `json:"organizer,omitempty"`
}

// EventRegistration represents a row in the 'event_registrations' table
type EventRegistration struct {
	ID               int64            `json:"id" db:"id"`
	EventID          int64            `json:"eventId" db:"event_id"`
	UserID           int64            `json:"userId" db:"user_id"`
	RegisteredAt     time.Time        `json:"registeredAt" db:"registered_at"`
	AttendanceStatus AttendanceStatus `json:"attendanceStatus" db:"attendance_status"`

	Participant *UserSummary `json:"participant,omitempty"`
}
