package domain

import "time"

// Role enumerates account roles. The persisted values are the opaque
// single-character tokens the legacy data uses; never compare against raw
// strings outside this package.
type Role string

const (
	RoleAdmin    Role = "0"
	RoleWorker   Role = "1"
	RoleResident Role = "2"
)

// Label returns a human-readable role name for display and logs.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleWorker:
		return "Facility Worker"
	case RoleResident:
		return "Resident"
	default:
		return "Unknown"
	}
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleWorker, RoleResident:
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

// User is the domain model for residents, facility workers and admins.
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
