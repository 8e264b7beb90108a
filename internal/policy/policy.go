// Package policy decides whether an identity may perform an action on a resource.
//
// Every function returns nil when the action is allowed. Denials are
// errors.ErrUnauthorized for anonymous callers and errors.ErrForbidden for
// authenticated callers lacking the privilege.
package policy

import (
	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/errors"
)

// Action is an operation class on a resource.
type Action int

const (
	// Read covers list and retrieve.
	Read Action = iota
	Create
	Update
	Delete
)

func (a Action) String() string {
	switch a {
	case Read:
		return "read"
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	}
	return "unknown"
}

// Identity is the authenticated caller. The zero value is anonymous.
type Identity struct {
	UserID      int64
	Username    string
	Role        domain.Role
	IsStaff     bool
	IsSuperuser bool
}

// IdentityOf builds the identity for a stored user.
func IdentityOf(u *domain.User) Identity {
	return Identity{
		UserID:      u.ID,
		Username:    u.Username,
		Role:        u.Role,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}

// Anonymous reports whether the identity is unauthenticated.
func (id Identity) Anonymous() bool {
	return id.UserID == 0
}

// IsAdmin is true for the admin role, staff and superusers.
func (id Identity) IsAdmin() bool {
	return !id.Anonymous() && (id.Role == domain.RoleAdmin || id.IsStaff || id.IsSuperuser)
}

// IsModerator is true for the moderator role.
func (id Identity) IsModerator() bool {
	return !id.Anonymous() && id.Role == domain.RoleModerator
}

func deny(id Identity) error {
	if id.Anonymous() {
		return errors.ErrUnauthorized
	}
	return errors.ErrForbidden
}

// Authenticated rejects anonymous identities. Services call it before
// resolving the target of a write so that anonymous callers get 401 rather
// than 404.
func Authenticated(id Identity) error {
	if id.Anonymous() {
		return errors.ErrUnauthorized
	}
	return nil
}

// Catalog governs categories, genres and titles: anyone reads, admins write.
func Catalog(id Identity, a Action) error {
	if a == Read || id.IsAdmin() {
		return nil
	}
	return deny(id)
}

// Authored governs reviews and comments. Anyone reads, any authenticated
// identity creates, and updates or deletes are limited to the author,
// moderators and admins.
func Authored(id Identity, a Action, authorID int64) error {
	switch a {
	case Read:
		return nil
	case Create:
		if id.Anonymous() {
			return errors.ErrUnauthorized
		}
		return nil
	}
	if id.Anonymous() {
		return errors.ErrUnauthorized
	}
	if id.UserID == authorID || id.IsModerator() || id.IsAdmin() {
		return nil
	}
	return errors.ErrForbidden
}

// Users governs user management: admins only, reads included.
func Users(id Identity, _ Action) error {
	if id.IsAdmin() {
		return nil
	}
	return deny(id)
}

// Self governs the caller's own profile. Any authenticated identity may read
// and update it; nobody deletes or creates through it.
func Self(id Identity, a Action) error {
	if id.Anonymous() {
		return errors.ErrUnauthorized
	}
	if a == Read || a == Update {
		return nil
	}
	return errors.ErrForbidden
}
