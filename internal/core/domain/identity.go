package domain

import "time"

// Role is the coarse access category fixed when an account is created.
type Role string

const (
	RoleStudent  Role = "student"
	RoleFaculty  Role = "faculty"
	RoleAdmin    Role = "admin"
	RoleEPRAdmin Role = "epr_admin"
)

// KnownRole reports whether the role is one of the defined categories.
func KnownRole(r Role) bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin, RoleEPRAdmin:
		return true
	}
	return false
}

// Identity is the authenticated caller, rebuilt from a verified token on
// every request. It is never persisted.
type Identity struct {
	ID       int64
	Username string
	Role     Role
}

// User mirrors the persisted representation in the users table.
type User struct {
	ID           int64
	Username     string
	CCLID        string
	Email        *string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}
