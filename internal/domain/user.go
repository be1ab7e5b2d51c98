package domain

import "time"

// UserRole represents the access role of a staff user.
type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleManager    UserRole = "manager"
	UserRoleOperations UserRole = "operations"
	UserRolePartner    UserRole = "partner"
)

// IsValid checks if the role is one of the allowed values.
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleManager, UserRoleOperations, UserRolePartner:
		return true
	default:
		return false
	}
}

// User represents a staff member or partner account.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      UserRole
	Token     string
	IsActive  bool
	CreatedAt time.Time
}
