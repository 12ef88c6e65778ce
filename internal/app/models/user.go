package models

import "time"

// RoleType defines the user role type
type RoleType string

const (
	RoleAgent      RoleType = "agent"
	RoleSubAdmin   RoleType = "sub_admin"
	RoleAdmin      RoleType = "admin"
	RoleSuperAdmin RoleType = "super_admin"
)

// IsReviewer reports whether the role may run review-side transitions.
func (r RoleType) IsReviewer() bool {
	return r == RoleSubAdmin || r == RoleAdmin || r == RoleSuperAdmin
}

// IsPrivileged reports whether the role has full administrative authority.
// Sub-admins are a capability-restricted view of admin and are excluded.
func (r RoleType) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User represents an account that can act on applications
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         RoleType  `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Actor identifies the authenticated caller of a workflow or lifecycle
// operation. Every service call takes the actor explicitly, there is no
// implicit current-user state.
type Actor struct {
	UserID int64
	Role   RoleType
}
