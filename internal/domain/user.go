package domain

import (
	"slices"
	"strings"
	"time"
)

// Role represents the user's permission level in the marketplace.
type Role string

const (
	// RoleUser can browse, order, and keep a wishlist.
	RoleUser Role = "user"
	// RoleLibrarian can additionally list books and manage their orders.
	RoleLibrarian Role = "librarian"
	// RoleAdmin has full administrative access.
	RoleAdmin Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleUser, RoleLibrarian, RoleAdmin}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleLibrarian, RoleAdmin:
		return true
	}
	return false
}

// OneOf reports whether r is any of roles.
func (r Role) OneOf(roles ...Role) bool {
	return slices.Contains(roles, r)
}

// User is a marketplace account. Identity is owned by the external
// identity provider; this record only tracks role and login history.
type User struct {
	Record
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	ImageURL    string    `json:"image,omitempty"`
	Role        Role      `json:"role"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}



// NormalizeEmail lowercases and trims an email for comparisons and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SameEmail compares two emails case-insensitively.
func SameEmail(a, b string) bool {
	return NormalizeEmail(a) == NormalizeEmail(b)
}
