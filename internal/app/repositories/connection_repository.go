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

// connectionConstraints maps unique indexes on the connections table to the
// field reported on conflict.
var connectionConstraints = map[string]string{
	"connections_pair_idx": "connection",
}

// ConnectionRepository handles database operations for the connection graph
type ConnectionRepository struct {
	db *db.PostgresDB
}

// NewConnectionRepository creates a new ConnectionRepository
func NewConnectionRepository(database *db.PostgresDB) *ConnectionRepository {
	return &ConnectionRepository{db: database}
}

// Create inserts a pending connection request. A concurrent insert for the
// same pair in either direction trips the pair index and surfaces as Conflict.
func (r *ConnectionRepository) Create(ctx context.Context, requesterID, recipientID int64) (*models.Connection, error) {
	query := `
		INSERT INTO connections (user_id, connected_user_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, requested_at
	`

	conn := &models.Connection{
		UserID:          requesterID,
		ConnectedUserID: recipientID,
		Status:          models.ConnectionPending,
	}
	err := r.db.Pool.QueryRow(ctx, query, requesterID, recipientID).Scan(&conn.ID, &conn.RequestedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil, dberrors.TranslateUniqueViolation(err, connectionConstraints)
		}
		return nil, fmt.Errorf("error creating connection request: %w", err)
	}

	return conn, nil
}

// GetByPair retrieves the connection between two users regardless of which
// side sent the request.
func (r *ConnectionRepository) GetByPair(ctx context.Context, userA, userB int64) (*models.Connection, error) {
	query := `
		SELECT id, user_id, connected_user_id, status, requested_at, accepted_at
		FROM connections
		WHERE (user_id = $1 AND connected_user_id = $2)
		   OR (user_id = $2 AND connected_user_id = $1)
	`

	var conn models.Connection
	err := r.db.Pool.QueryRow(ctx, query, userA, userB).Scan(
		&conn.ID,
		&conn.UserID,
		&conn.ConnectedUserID,
		&conn.Status,
		&conn.RequestedAt,
		&conn.AcceptedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("error retrieving connection: %w", err)
	}

	return &conn, nil
}

// Accept marks a pending request as accepted. Only the recipient of the
// pending row may accept, enforced by the WHERE clause.
func (r *ConnectionRepository) Accept(ctx context.Context, requesterID, recipientID int64) error {
	query := `
		UPDATE connections
		SET status = 'accepted', accepted_at = NOW()
		WHERE user_id = $1 AND connected_user_id = $2 AND status = 'pending'
	`

	tag, err := r.db.Pool.Exec(ctx, query, requesterID, recipientID)
	if err != nil {
		return fmt.Errorf("error accepting connection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConnectionNotPending
	}
	return nil
}

// DeletePending removes a pending request addressed to the recipient.
// Rejection leaves no trace, so a fresh request can be sent later.
func (r *ConnectionRepository) DeletePending(ctx context.Context, requesterID, recipientID int64) error {
	query := `
		DELETE FROM connections
		WHERE user_id = $1 AND connected_user_id = $2 AND status = 'pending'
	`

	tag, err := r.db.Pool.Exec(ctx, query, requesterID, recipientID)
	if err != nil {
		return fmt.Errorf("error rejecting connection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConnectionNotPending
	}
	return nil
}

// DeletePair removes the connection between two users in either direction
func (r *ConnectionRepository) DeletePair(ctx context.Context, userA, userB int64) error {
	query := `
		DELETE FROM connections
		WHERE (user_id = $1 AND connected_user_id = $2)
		   OR (user_id = $2 AND connected_user_id = $1)
	`

	tag, err := r.db.Pool.Exec(ctx, query, userA, userB)
	if err != nil {
		return fmt.Errorf("error removing connection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConnectionNotFound
	}
	return nil
}

// ListAccepted retrieves a user's accepted connections with counterpart
// directory info, most recently accepted first.
func (r *ConnectionRepository) ListAccepted(ctx context.Context, userID int64) ([]*models.Connection, error) {
	query := `
		SELECT c.id, c.user_id, c.connected_user_id, c.status, c.requested_at, c.accepted_at,
		` + summaryColumns + `
		FROM connections c
		JOIN users u ON u.id = CASE WHEN c.user_id = $1 THEN c.connected_user_id ELSE c.user_id END
		` + summaryJoins + `
		WHERE (c.user_id = $1 OR c.connected_user_id = $1) AND c.status = 'accepted'
		ORDER BY c.accepted_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing connections: %w", err)
	}
	defer rows.Close()

	return scanConnectionsWithCounterpart(rows, userID)
}

// ListPendingIncoming retrieves requests awaiting the user's decision,
// oldest first.
func (r *ConnectionRepository) ListPendingIncoming(ctx context.Context, userID int64) ([]*models.Connection, error) {
	query := `
		SELECT c.id, c.user_id, c.connected_user_id, c.status, c.requested_at, c.accepted_at,
		` + summaryColumns + `
		FROM connections c
		JOIN users u ON u.id = c.user_id
		` + summaryJoins + `
		WHERE c.connected_user_id = $1 AND c.status = 'pending'
		ORDER BY c.requested_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing pending requests: %w", err)
	}
	defer rows.Close()

	return scanConnectionsWithCounterpart(rows, userID)
}

// Counts aggregates the user's connection totals
func (r *ConnectionRepository) Counts(ctx context.Context, userID int64) (*models.ConnectionCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'accepted'),
			COUNT(*) FILTER (WHERE status = 'pending' AND connected_user_id = $1),
			COUNT(*) FILTER (WHERE status = 'pending' AND user_id = $1)
		FROM connections
		WHERE user_id = $1 OR connected_user_id = $1
	`

	var counts models.ConnectionCounts
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&counts.Accepted,
		&counts.PendingIncoming,
		&counts.PendingOutgoing,
	)
	if err != nil {
		return nil, fmt.Errorf("error counting connections: %w", err)
	}

	return &counts, nil
}

// Suggestions retrieves active users the caller has no connection row with,
// optionally filtered by branch and role.
func (r *ConnectionRepository) Suggestions(ctx context.Context, userID int64, branch, role *string, limit int) ([]*models.UserSummary, error) {
	builder := squirrel.Select(
		"u.id", "u.username",
		"COALESCE(s.full_name, a.full_name, u.username) AS display_name",
		"u.role",
		"COALESCE(s.branch, a.branch) AS branch",
		"u.is_active",
	).
		From("users u").
		LeftJoin("students s ON s.user_id = u.id").
		LeftJoin("alumni a ON a.user_id = u.id").
		Where("u.id <> ?", userID).
		Where("u.is_active").
		Where("u.role <> 'admin'").
		Where(`NOT EXISTS (
			SELECT 1 FROM connections c
			WHERE (c.user_id = u.id AND c.connected_user_id = ?)
			   OR (c.user_id = ? AND c.connected_user_id = u.id)
		)`, userID, userID).
		OrderBy("u.created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if branch != nil {
		builder = builder.Where("COALESCE(s.branch, a.branch) = ?", *branch)
	}
	if role != nil {
		builder = builder.Where("u.role = ?", *role)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing suggestions: %w", err)
	}
	defer rows.Close()

	var summaries []*models.UserSummary
	for rows.Next() {
		var s models.UserSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.DisplayName, &s.Role, &s.Branch, &s.IsActive); err != nil {
			return nil, fmt.Errorf("error scanning suggestion: %w", err)
		}
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suggestions: %w", err)
	}

	return summaries, nil
}

// scanConnectionsWithCounterpart scans connection rows joined with the
// counterpart's directory summary. The summary is attached as Requester or
// Recipient according to which side of the edge the viewer sits on.
func scanConnectionsWithCounterpart(rows pgx.Rows, viewerID int64) ([]*models.Connection, error) {
	var conns []*models.Connection
	for rows.Next() {
		var conn models.Connection
		var summary models.UserSummary
		err := rows.Scan(
			&conn.ID,
			&conn.UserID,
			&conn.ConnectedUserID,
			&conn.Status,
			&conn.RequestedAt,
			&conn.AcceptedAt,
			&summary.ID,
			&summary.Username,
			&summary.DisplayName,
			&summary.Role,
			&summary.Branch,
			&summary.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning connection: %w", err)
		}

		if conn.UserID == viewerID {
			conn.Recipient = &summary
		} else {
			conn.Requester = &summary
		}
		conns = append(conns, &conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connections: %w", err)
	}

	return conns, nil
}
