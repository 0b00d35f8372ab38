package repositories

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/mesconnect/backend/internal/app/models"
	"github.com/mesconnect/backend/internal/db"
)

// MessageRepository handles database operations for direct messages
type MessageRepository struct {
	db *db.PostgresDB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(database *db.PostgresDB) *MessageRepository {
	return &MessageRepository{db: database}
}

// Create inserts a message. The timestamp is store-assigned so ordering never
// depends on caller clocks.
func (r *MessageRepository) Create(ctx context.Context, senderID, receiverID int64, body string) (*models.Message, error) {
	query := `
		INSERT INTO messages (sender_id, receiver_id, message, is_delivered)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, sent_at
	`

	msg := &models.Message{
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Body:        body,
		IsDelivered: true,
	}
	err := r.db.Pool.QueryRow(ctx, query, senderID, receiverID, body).Scan(&msg.ID, &msg.SentAt)
	if err != nil {
		return nil, fmt.Errorf("error creating message: %w", err)
	}

	return msg, nil
}

// History retrieves the conversation between viewer and peer in ascending
// send order and marks the peer's messages to the viewer as read in the same
// transaction.
func (r *MessageRepository) History(ctx context.Context, viewerID, peerID int64, limit int) ([]*models.Message, error) {
	var messages []*models.Message

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		markQuery := `
			UPDATE messages
			SET is_read = TRUE
			WHERE sender_id = $1 AND receiver_id = $2 AND is_read = FALSE
		`
		if _, err := tx.Exec(ctx, markQuery, peerID, viewerID); err != nil {
			return fmt.Errorf("error marking messages read: %w", err)
		}

		// Window to the most recent N, then present ascending
		query := `
			SELECT id, sender_id, receiver_id, message, sent_at, is_read, is_delivered
			FROM (
				SELECT id, sender_id, receiver_id, message, sent_at, is_read, is_delivered
				FROM messages
				WHERE (sender_id = $1 AND receiver_id = $2)
				   OR (sender_id = $2 AND receiver_id = $1)
				ORDER BY sent_at DESC, id DESC
				LIMIT $3
			) recent
			ORDER BY sent_at ASC, id ASC
		`
		rows, err := tx.Query(ctx, query, viewerID, peerID, limit)
		if err != nil {
			return fmt.Errorf("error retrieving history: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var msg models.Message
			err := rows.Scan(
				&msg.ID,
				&msg.SenderID,
				&msg.ReceiverID,
				&msg.Body,
				&msg.SentAt,
				&msg.IsRead,
				&msg.IsDelivered,
			)
			if err != nil {
				return fmt.Errorf("error scanning message: %w", err)
			}
			// Reflect the mark-read update in the returned rows
			if msg.SenderID == peerID {
				msg.IsRead = true
			}
			messages = append(messages, &msg)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// ConversationList retrieves one entry per counterpart the viewer has
// exchanged messages with, carrying the latest message and the number still
// unread, most recent conversation first.
func (r *MessageRepository) ConversationList(ctx context.Context, viewerID int64) ([]*models.ConversationSummary, error) {
	query := `
		SELECT DISTINCT ON (peer_id)
			m.id, m.sender_id, m.receiver_id, m.message, m.sent_at, m.is_read, m.is_delivered,
			` + summaryColumns + `,
			(
				SELECT COUNT(*) FROM messages um
				WHERE um.sender_id = peer_id AND um.receiver_id = $1 AND um.is_read = FALSE
			) AS unread_count
		FROM (
			SELECT *, CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS peer_id
			FROM messages
			WHERE sender_id = $1 OR receiver_id = $1
		) m
		JOIN users u ON u.id = m.peer_id
		` + summaryJoins + `
		ORDER BY peer_id, m.sent_at DESC, m.id DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, viewerID)
	if err != nil {
		return nil, fmt.Errorf("error listing conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*models.ConversationSummary
	for rows.Next() {
		var c models.ConversationSummary
		err := rows.Scan(
			&c.LastMessage.ID,
			&c.LastMessage.SenderID,
			&c.LastMessage.ReceiverID,
			&c.LastMessage.Body,
			&c.LastMessage.SentAt,
			&c.LastMessage.IsRead,
			&c.LastMessage.IsDelivered,
			&c.Peer.ID,
			&c.Peer.Username,
			&c.Peer.DisplayName,
			&c.Peer.Role,
			&c.Peer.Branch,
			&c.Peer.IsActive,
			&c.UnreadCount,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning conversation: %w", err)
		}
		conversations = append(conversations, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}

	// DISTINCT ON yields peer order; re-sort by recency of the last message
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.SentAt.After(conversations[j].LastMessage.SentAt)
	})

	return conversations, nil
}
