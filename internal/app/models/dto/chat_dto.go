package dto

import (
	"time"
)

// --- Request DTOs ---

// SendMessageRequest represents data for sending a direct message
type SendMessageRequest struct {
	ReceiverID int64  `json:"receiverId" binding:"required,min=1"`
	Body       string `json:"body" binding:"required,max=2000"`
}

// HistoryRequest represents parameters for retrieving a conversation
type HistoryRequest struct {
	Limit int `form:"limit,default=50" binding:"min=1,max=200"`
}

// --- Response DTOs ---

// MessageResponse represents a direct message
type MessageResponse struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"senderId"`
	ReceiverID  int64     `json:"receiverId"`
	Body        string    `json:"body"`
	SentAt      time.Time `json:"sentAt"`
	IsRead      bool      `json:"isRead"`
	IsDelivered bool      `json:"isDelivered"`
}

// ConversationResponse represents one inbox entry
type ConversationResponse struct {
	Peer        UserBasicResponse `json:"peer"`
	LastMessage MessageResponse   `json:"lastMessage"`
	UnreadCount int64             `json:"unreadCount"`
}
