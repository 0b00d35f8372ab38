package dto

import (
	"time"

	"github.com/mesconnect/backend/internal/app/models"
)

// --- Request DTOs ---

// ConnectionRequestRequest represents data for sending a connection request
type ConnectionRequestRequest struct {
	UserID int64 `json:"userId" binding:"required,min=1"`
}

// ConnectionRespondRequest represents the decision on a pending request
type ConnectionRespondRequest struct {
	Accept bool `json:"accept"`
}

// ConnectionSuggestionsRequest represents filter parameters for discovery
type ConnectionSuggestionsRequest struct {
	Branch *string `form:"branch,omitempty"`
	Role   *string `form:"role,omitempty" binding:"omitempty,oneof=student alumni"`
	Limit  int     `form:"limit,default=20" binding:"min=1,max=100"`
}

// --- Response DTOs ---

// ConnectionResponse represents a connection edge
type ConnectionResponse struct {
	ID          int64      `json:"id"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requestedAt"`
	AcceptedAt  *time.Time `json:"acceptedAt,omitempty"`

	// Counterpart is the other user on the edge, relative to the caller
	Counterpart UserBasicResponse `json:"counterpart"`
}

// ConnectionCountsResponse aggregates the caller's connection totals
type ConnectionCountsResponse struct {
	Accepted        int64 `json:"accepted"`
	PendingIncoming int64 `json:"pendingIncoming"`
	PendingOutgoing int64 `json:"pendingOutgoing"`
}

// ToUserBasicResponse maps a directory summary to its response form
func ToUserBasicResponse(u models.UserSummary) UserBasicResponse {
	return UserBasicResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		Branch:      u.Branch,
	}
}
