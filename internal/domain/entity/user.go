// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the identity record of a single account.
// Accounts are deactivated rather than deleted.
type User struct {
	ID           uuid.UUID `json:"id"`        // The Global Unique Identifier (GUID) for the user.
	Email        string    `json:"email"`     // Login identifier, stored lower-cased.
	PasswordHash string    `json:"-"`         // bcrypt hash of the password. Never serialized.
	Name         string    `json:"name"`      // The user's display name.
	Role         Role      `json:"role"`      // Privilege level of the account.
	IsActive     bool      `json:"isActive"`  // Inactive users cannot log in, refresh or authenticate.
	CreatedAt    time.Time `json:"createdAt"` // Timestamp of when this user account was created.
	UpdatedAt    time.Time `json:"updatedAt"` // Timestamp of the last modification to this user's data.
}

// NormalizeEmail folds an email address into its stored form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
