package models

import "time"

// Message represents a row in the 'messages' table
type Message struct {
	ID          int64     `json:"id" db:"id"`
	SenderID    int64     `json:"senderId" db:"sender_id"`
	ReceiverID  int64     `json:"receiverId" db:"receiver_id"`
	Body        string    `json:"body" db:"body"`
	SentAt      time.Time `json:"sentAt" db:"sent_at"`
	IsRead      bool      `json:"isRead" db:"is_read"`
	IsDelivered bool      `json:"isDelivered" db:"is_delivered"`

	// Related entities
	Sender   *UserSummary `json:"sender,omitempty"`
	Receiver *UserSummary `json:"receiver,omitempty"`
}

// ConversationSummary is one entry in a user's inbox listing: the peer,
// the latest message exchanged with them and how many are still unread.
type ConversationSummary struct {
	Peer        UserSummary `json:"peer"`
	LastMessage Message     `json:"lastMessage"`
	UnreadCount int64       `json:"unreadCount"`
}
