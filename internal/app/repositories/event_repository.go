package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/mesconnect/backend/internal/app/models"
	"github.com/mesconnect/backend/internal/db"
	"github.com/mesconnect/backend/internal/pkg/apperrors"
	"github.com/mesconnect/backend/internal/pkg/dberrors"
)

const eventColumns = `
	e.id, e.organizer_id, e.title, e.description, e.event_type, e.event_date,
	e.event_time, e.location, e.max_participants, e.fee, e.registration_deadline,
	e.is_active, e.created_at,
	(SELECT COUNT(*) FROM event_registrations er WHERE er.event_id = e.id) AS registered_count
`

// EventRepository handles database operations for events and registrations
type EventRepository struct {
	db *db.PostgresDB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(database *db.PostgresDB) *EventRepository {
	return &EventRepository{db: database}
}

// Create inserts an event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (
			organizer_id, title, description, event_type, event_date, event_time,
			location, max_participants, fee, registration_deadline
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, is_active, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		event.OrganizerID,
		event.Title,
		event.Description,
		event.EventType,
		event.EventDate,
		event.EventTime,
		event.Location,
		event.MaxParticipants,
		event.Fee,
		event.RegistrationDeadline,
	).Scan(&event.ID, &event.IsActive, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating event: %w", err)
	}

	return nil
}

// GetByID retrieves an event with its registration count
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1`

	var event models.Event
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.OrganizerID,
		&event.Title,
		&event.Description,
		&event.EventType,
		&event.EventDate,
		&event.EventTime,
		&event.Location,
		&event.MaxParticipants,
		&event.Fee,
		&event.RegistrationDeadline,
		&event.IsActive,
		&event.CreatedAt,
		&event.RegisteredCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("error retrieving event: %w", err)
	}

	return &event, nil
}

// Register records a registration inside a transaction. The event row is
// locked before counting so the participant cap can never be exceeded by
// concurrent registrations.
func (r *EventRepository) Register(ctx context.Context, eventID, userID int64) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		lockQuery := `SELECT max_participants, is_active FROM events WHERE id = $1 FOR UPDATE`
		var maxParticipants *int
		var isActive bool
		if err := tx.QueryRow(ctx, lockQuery, eventID).Scan(&maxParticipants, &isActive); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrEventNotFound
			}
			return fmt.Errorf("error locking event: %w", err)
		}
		if !isActive {
			return apperrors.NewInvalidStateError("event is no longer active")
		}

		if maxParticipants != nil {
			var count int64
			countQuery := `SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`
			if err := tx.QueryRow(ctx, countQuery, eventID).Scan(&count); err != nil {
				return fmt.Errorf("error counting registrations: %w", err)
			}
			if count >= int64(*maxParticipants) {
				return apperrors.ErrEventFull
			}
		}

		insertQuery := `INSERT INTO event_registrations (event_id, user_id) VALUES ($1, $2)`
		if _, err := tx.Exec(ctx, insertQuery, eventID, userID); err != nil {
			if dberrors.IsUniqueViolation(err) {
				return apperrors.ErrAlreadyRegistered
			}
			return fmt.Errorf("error inserting registration: %w", err)
		}
		return nil
	})
}

// CancelRegistration removes the user's registration
func (r *EventRepository) CancelRegistration(ctx context.Context, eventID, userID int64) error {
	query := `DELETE FROM event_registrations WHERE event_id = $1 AND user_id = $2`

	tag, err := r.db.Pool.Exec(ctx, query, eventID, userID)
	if err != nil {
		return fmt.Errorf("error cancelling registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotRegistered
	}
	return nil
}

// Upcoming retrieves active events dated today or later, soonest first,
// optionally filtered by type.
func (r *EventRepository) Upcoming(ctx context.Context, eventType *string, limit int) ([]*models.Event, error) {
	builder := squirrel.Select(
		"e.id", "e.organizer_id", "e.title", "e.description", "e.event_type",
		"e.event_date", "e.event_time", "e.location", "e.max_participants",
		"e.fee", "e.registration_deadline", "e.is_active", "e.created_at",
		"(SELECT COUNT(*) FROM event_registrations er WHERE er.event_id = e.id) AS registered_count",
	).
		From("events e").
		Where("e.is_active").
		Where("e.event_date >= CURRENT_DATE").
		OrderBy("e.event_date ASC", "e.event_time ASC", "e.id ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if eventType != nil {
		builder = builder.Where("e.event_type = ?", *eventType)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing upcoming events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Attending retrieves upcoming active events the user is registered for
func (r *EventRepository) Attending(ctx context.Context, userID int64) ([]*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		JOIN event_registrations reg ON reg.event_id = e.id
		WHERE reg.user_id = $1 AND e.is_active AND e.event_date >= CURRENT_DATE
		ORDER BY e.event_date ASC, e.event_time ASC, e.id ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing attended events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Organizing retrieves upcoming active events the user organizes
func (r *EventRepository) Organizing(ctx context.Context, userID int64) ([]*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		WHERE e.organizer_id = $1 AND e.is_active AND e.event_date >= CURRENT_DATE
		ORDER BY e.event_date ASC, e.event_time ASC, e.id ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing organized events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Participants retrieves an event's registrants with directory info, in
// registration order.
func (r *EventRepository) Participants(ctx context.Context, eventID int64) ([]*models.EventRegistration, error) {
	query := `
		SELECT reg.id, reg.event_id, reg.user_id, reg.registered_at, reg.attendance_status,
		` + summaryColumns + `
		FROM event_registrations reg
		JOIN users u ON u.id = reg.user_id
		` + summaryJoins + `
		WHERE reg.event_id = $1
		ORDER BY reg.registered_at ASC, reg.id ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("error listing participants: %w", err)
	}
	defer rows.Close()

	var registrations []*models.EventRegistration
	for rows.Next() {
		var reg models.EventRegistration
		var summary models.UserSummary
		err := rows.Scan(
			&reg.ID,
			&reg.EventID,
			&reg.UserID,
			&reg.RegisteredAt,
			&reg.AttendanceStatus,
			&summary.ID,
			&summary.Username,
			&summary.DisplayName,
			&summary.Role,
			&summary.Branch,
			&summary.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning participant: %w", err)
		}
		reg.Participant = &summary
		registrations = append(registrations, &reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}

	return registrations, nil
}

func scanEvents(rows pgx.Rows) ([]*models.Event, error) {
	var events []*models.Event
	for rows.Next() {
		var event models.Event
		err := rows.Scan(
			&event.ID,
			&event.OrganizerID,
			&event.Title,
			&event.Description,
			&event.EventType,
			&event.EventDate,
			&event.EventTime,
			&event.Location,
			&event.MaxParticipants,
			&event.Fee,
			&event.RegistrationDeadline,
			&event.IsActive,
			&event.CreatedAt,
			&event.RegisteredCount,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning event: %w", err)
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}
