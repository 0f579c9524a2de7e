package domain

import "time"

// AnonymousAuthor is stored as the author of posts created without a session.
const AnonymousAuthor = "anonymous"

// User models a registered employee account.
type User struct {
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"passwordHash"`
	Handle       string    `json:"handle"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is the session-bound view of the caller. Username never leaves
// the server.
type Identity struct {
	Username    string `json:"-"`
	DisplayName string `json:"displayName"`
	Handle      string `json:"handle"`
	Role        Role   `json:"role"`
}

// Guest returns the identity of an unauthenticated caller.
func Guest() Identity {
	return Identity{Role: RoleGuest}
}

func (i Identity) IsGuest() bool {
	return !i.Role.Authenticated()
}

// Author returns the value recorded as a post's author.
func (i Identity) Author() string {
	if i.IsGuest() || i.Handle == "" {
		return AnonymousAuthor
	}
	return i.Handle
}

// Identity returns the session identity for u.
func (u *User) Identity() Identity {
	return Identity{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Handle:      u.Handle,
		Role:        u.Role,
	}
}
