package dto

import (
	"time"
)

// --- Request DTOs ---

// CreateGroupRequest represents data for creating a group
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	GroupType   string `json:"groupType" binding:"required"`
	IsPublic    *bool  `json:"isPublic,omitempty"`
	MaxMembers  *int   `json:"maxMembers,omitempty" binding:"omitempty,min=2"`
}

// SetGroupRoleRequest represents a role change for a group member
type SetGroupRoleRequest struct {
	UserID int64  `json:"userId" binding:"required,min=1"`
	Role   string `json:"role" binding:"required,oneof=member moderator admin"`
}

// BanMemberRequest represents a ban or unban decision
type BanMemberRequest struct {
	UserID int64 `json:"userId" binding:"required,min=1"`
	Banned bool  `json:"banned"`
}

// DiscoverGroupsRequest represents filter parameters for group discovery
type DiscoverGroupsRequest struct {
	GroupType *string `form:"groupType,omitempty"`
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
}

// --- Response DTOs ---

// GroupResponse represents a group with its member count
type GroupResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	GroupType   string    `json:"groupType"`
	IsPublic    bool      `json:"isPublic"`
	MaxMembers  *int      `json:"maxMembers,omitempty"`
	MemberCount int64     `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`

	Creator *UserBasicResponse `json:"creator,omitempty"`

	// MyRole is the caller's role in the group, empty when not a member
	MyRole string `json:"myRole,omitempty"`
}

// GroupMemberResponse represents one member of a group
type GroupMemberResponse struct {
	User     UserBasicResponse `json:"user"`
	Role     string            `json:"role"`
	JoinedAt time.Time         `json:"joinedAt"`
	IsBanned bool              `json:"isBanned"`
}
