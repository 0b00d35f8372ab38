package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`                                   // Unique identifier for the user
	Username    string     `json:"username" db:"username" example:"jdoe"`                    // Login name, unique
	Email       string     `json:"email" db:"email" example:"jdoe@mesconnect.com"`           // User's email address, unique
	Password    string     `json:"-" db:"password"`                                          // User's hashed password (excluded from JSON)
	Role        RoleType   `json:"role" db:"role" example:"student"`                         // User's role (student, alumni or admin)
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`                   // Whether the user account is active
	CreatedAt   time.Time  `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"` // Timestamp when the user was created
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`                 // Timestamp of the last login (nullable)
}

// Student defines the student profile based on the 'students' table
type Student struct {
	ID             int64   `json:"id" db:"id"`
	UserID         int64   `json:"userId" db:"user_id"`
	RollNumber     string  `json:"rollNumber" db:"roll_number"`
	FullName       string  `json:"fullName" db:"full_name"`
	Branch         string  `json:"branch" db:"branch"`
	Semester       *int    `json:"semester,omitempty" db:"semester"`
	Section        *string `json:"section,omitempty" db:"section"`
	GraduationYear *int    `json:"graduationYear,omitempty" db:"graduation_year"`
	User           *User   `json:"user,omitempty"` // Relation, no db tag
}

// Alumni defines the alumni profile based on the 'alumni' table
type Alumni struct {
	ID             int64   `json:"id" db:"id"`
	UserID         int64   `json:"userId" db:"user_id"`
	FullName       string  `json:"fullName" db:"full_name"`
	Branch         string  `json:"branch" db:"branch"`
	GraduationYear int     `json:"graduationYear" db:"graduation_year"`
	CurrentCompany *string `json:"currentCompany,omitempty" db:"current_company"`
	Designation    *string `json:"designation,omitempty" db:"designation"`
	User           *User   `json:"user,omitempty"` // Relation, no db tag
}

// UserSummary is the directory view of a user used in lists and lookups.
// DisplayName falls back to the username when no profile row exists.
type UserSummary struct {
	ID          int64    `json:"id" db:"id"`
	Username    string   `json:"username" db:"username"`
	DisplayName string   `json:"displayName" db:"display_name"`
	Role        RoleType `json:"role" db:"role"`
	Branch      *string  `json:"branch,omitempty" db:"branch"`
	IsActive    bool     `json:"isActive" db:"is_active"`
}
