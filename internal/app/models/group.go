package models

import "time"

// GroupType categorizes a group
type GroupType string

const (
	GroupStudy      GroupType = "study"
	GroupHobby      GroupType = "hobby"
	GroupSportsClub GroupType = "sports"
	GroupTechnical  GroupType = "technical"
	GroupCulturalC  GroupType = "cultural"
	GroupDepartment GroupType = "department"
	GroupOtherTypes GroupType = "other"
)

// ValidGroupType reports whether the value is a known group type
func ValidGroupType(t GroupType) bool {
	switch t {
	case GroupStudy, GroupHobby, GroupSportsClub, GroupTechnical,
		GroupCulturalC, GroupDepartment, GroupOtherTypes:
		return true
	}
	return false
}

// GroupRole is a member's role within a group
type GroupRole string

const (
	GroupRoleMember    GroupRole = "member"
	GroupRoleModerator GroupRole = "moderator"
	GroupRoleAdmin     GroupRole = "admin"
)

// ValidGroupRole reports whether the value is a known group role
func ValidGroupRole(r GroupRole) bool {
	switch r {
	case GroupRoleMember, GroupRoleModerator, GroupRoleAdmin:
		return true
	}
	return false
}

// Group represents a row in the 'groups' table
type Group struct {
	ID          int64     `json:"id" db:"id"`
	CreatorID   int64     `json:"creatorId" db:"creator_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	GroupType   GroupType `json:"groupType" db:"group_type"`
	IsPublic    bool      `json:"isPublic" db:"is_public"`
	MaxMembers  *int      `json:"maxMembers,omitempty" db:"max_members"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`

	// MemberCount is computed per query, not stored
	MemberCount int64 `json:"memberCount" db:"member_count"`

	Creator *UserSummary `json:"creator,omitempty"`
}

// GroupMember represents a row in the 'group_members' table
type GroupMember struct {
	ID       int64     `json:"id" db:"id"`
	GroupID  int64     `json:"groupId" db:"group_id"`
	UserID   int64     `json:"userId" db:"user_id"`
	Role     GroupRole `json:"role" db:"role"`
	JoinedAt time.Time `json:"joinedAt" db:"joined_at"`
	IsBanned bool      `json:"isBanned" db:"is_banned"`

	Member *UserSummary `json:"member,omitempty"`
}
