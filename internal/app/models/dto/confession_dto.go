package dto

import (
	"time"
)

// --- Request DTOs ---

// SubmitConfessionRequest represents data for posting a confession
type SubmitConfessionRequest struct {
	Body        string  `json:"body" binding:"required"`
	Tags        *string `json:"tags,omitempty"`
	IsAnonymous bool    `json:"isAnonymous"`
}

// ModerateConfessionRequest represents an admin moderation decision
type ModerateConfessionRequest struct {
	Approve  bool  `json:"approve"`
	Featured *bool `json:"featured,omitempty"`
}

// ConfessionFeedRequest represents feed filter and page parameters
type ConfessionFeedRequest struct {
	PaginationRequest
	Tag  *string `form:"tag,omitempty"`
	Sort string  `form:"sort,default=recent" binding:"oneof=recent most_liked"`
}

// --- Response DTOs ---

// ConfessionResponse represents a confession in the feed
type ConfessionResponse struct {
	ID            int64     `json:"id"`
	Body          string    `json:"body"`
	Tags          *string   `json:"tags,omitempty"`
	IsAnonymous   bool      `json:"isAnonymous"`
	Approved      bool      `json:"approved"`
	LikesCount    int64     `json:"likesCount"`
	CommentsCount int64     `json:"commentsCount"`
	IsFeatured    bool      `json:"isFeatured"`
	CreatedAt     time.Time `json:"createdAt"`

	// Author is omitted for anonymous confessions
	Author *UserBasicResponse `json:"author,omitempty"`

	// LikedByMe reports whether the requesting user has liked this confession
	LikedByMe bool `json:"likedByMe"`
}

// ToggleLikeResponse reports the outcome of a like toggle
type ToggleLikeResponse struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}
