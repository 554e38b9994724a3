package domain

import "time"

// Role enumerates account roles. CLIENT submits tickets; the remaining
// roles are staff and may triage any ticket.
type Role string

const (
	RoleClient    Role = "CLIENT"
	RoleSupport   Role = "SUPPORT"
	RoleDeveloper Role = "DEVELOPER"
	RoleQA        Role = "QA"
	RoleManager   Role = "MANAGER"
	RoleAdmin     Role = "ADMIN"
)

// Roles lists every valid role value.
var Roles = []Role{RoleClient, RoleSupport, RoleDeveloper, RoleQA, RoleManager, RoleAdmin}

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	for _, candidate := range Roles {
		if r == candidate {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role belongs to the internal staff set.
func (r Role) IsStaff() bool {
	switch r {
	case RoleSupport, RoleDeveloper, RoleQA, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// UserStatus represents account lifecycle states.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is an account that can authenticate and act on tickets.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor identifies who performs a mutation. It is threaded explicitly
// through every tracker call and never stored on the entity itself.
type Actor struct {
	ID   string
	Role Role
}
