package models

import "time"

// ConnectionStatus represents the lifecycle state of a connection
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionBlocked  ConnectionStatus = "blocked"
)

// Connection represents a row in the 'connections' table. UserID is the
// requester and ConnectedUserID the recipient; at most one row exists per
// unordered user pair regardless of direction.
type Connection struct {
	ID              int64            `json:"id" db:"id"`
	UserID          int64            `json:"userId" db:"user_id"`
	ConnectedUserID int64            `json:"connectedUserId" db:"connected_user_id"`
	Status          ConnectionStatus `json:"status" db:"status"`
	RequestedAt     time.Time        `json:"requestedAt" db:"requested_at"`
	AcceptedAt      *time.Time       `json:"acceptedAt,omitempty" db:"accepted_at"`

	// Related entities
	Requester *UserSummary `json:"requester,omitempty"`
	Recipient *UserSummary `json:"recipient,omitempty"`
}

// ConnectionCounts aggregates a user's connection totals
type ConnectionCounts struct {
	Accepted        int64 `json:"accepted"`
	PendingIncoming int64 `json:"pendingIncoming"`
	PendingOutgoing int64 `json:"pendingOutgoing"`
}
