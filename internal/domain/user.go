package domain

import "time"

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleUser can read everything and write own reviews and comments.
	RoleUser Role = "user"
	// RoleModerator can additionally edit and delete any review or comment.
	RoleModerator Role = "moderator"
	// RoleAdmin has full access including the catalogue and user management.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User represents an account.
type User struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      Role
	// ConfirmationCodeHash is the argon2id hash of the pending single-use
	// code, empty when no code is outstanding.
	ConfirmationCodeHash string
	IsStaff              bool
	IsSuperuser          bool
	DateJoined           time.Time
}

// IsAdmin returns true if the user has administrative privileges.
// Staff and superusers are admins regardless of their role field.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsStaff || u.IsSuperuser
}

// IsModerator returns true for the moderator role.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}
