package domain

import "time"

// Role enumerates access levels for accounts.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleSupport  Role = "support"
	RoleAdmin    Role = "admin"
)

// IsStaff reports whether the role carries support-desk privileges.
func (r Role) IsStaff() bool {
	return r == RoleSupport || r == RoleAdmin
}

// User is the domain model for all accounts: employees who file tickets,
// support agents who work them, and admins who manage assets.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
