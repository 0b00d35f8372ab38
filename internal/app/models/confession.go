package models

import "time"

// Confession represents a row in the 'confessions' table. UserID is nullable:
// anonymous posts never record an author, and deleting a user detaches their
// signed posts instead of removing them.
type Confession struct {
	ID            int64     `json:"id" db:"id"`
	UserID        *int64    `json:"userId,omitempty" db:"user_id"`
	Body          string    `json:"body" db:"body"`
	Tags          *string   `json:"tags,omitempty" db:"tags"`
	IsAnonymous   bool      `json:"isAnonymous" db:"is_anonymous"`
	Approved      bool      `json:"approved" db:"approved"`
	LikesCount    int64     `json:"likesCount" db:"likes_count"`
	CommentsCount int64     `json:"commentsCount" db:"comments_count"`
	IsFeatured    bool      `json:"isFeatured" db:"is_featured"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`

	// Author is only populated for non-anonymous confessions
	Author *UserSummary `json:"author,omitempty"`
}

// ConfessionLike represents a row in the 'confession_likes' table
type ConfessionLike struct {
	ID           int64     `json:"id" db:"id"`
	ConfessionID int64     `json:"confessionId" db:"confession_id"`
	UserID       int64     `json:"userId" db:"user_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
