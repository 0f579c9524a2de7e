package domain

import "strings"

// Role is the closed set of caller variants. Rendering and authorization
// dispatch on it instead of scattered boolean flags.
type Role string

const (
	RoleGuest    Role = "guest"
	RoleUser     Role = "user"
	RoleAdmin    Role = "admin"
	RoleEmployer Role = "employer"
)

// ParseRole normalizes a raw role string.
//
//	"admin", "administrator", "manager" → admin
//	"employer", "owner"                 → employer
//	"user", "employee"                  → user
//	anything else                       → guest
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin", "administrator", "manager":
		return RoleAdmin
	case "employer", "owner":
		return RoleEmployer
	case "user", "employee":
		return RoleUser
	default:
		return RoleGuest
	}
}

// CanAuthorUpdates reports whether the role may append updates to posts.
func (r Role) CanAuthorUpdates() bool {
	return r == RoleAdmin || r == RoleEmployer
}

// Authenticated reports whether the role belongs to a logged-in user.
func (r Role) Authenticated() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleEmployer:
		return true
	}
	return false
}
