// Package models defines server-side data models persisted in the database.
package models

import (
	"slices"
	"time"
)

// User is an authenticatable identity. It is created by registration or
// bootstrap and is read-only to the token flows.
type User struct {
	ID           int64
	UserName     string
	PasswordHash string
	Authorities  []string
	CreatedAt    time.Time
}

// HasAuthority reports whether the user was granted authority.
func (u *User) HasAuthority(authority string) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Authorities, authority)
}
