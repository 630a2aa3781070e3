package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken represents a long-lived, authorized user session.
// It is used to obtain a new Access Token after the old one expires, without requiring credentials.
type RefreshToken struct {
	ID        uuid.UUID // The unique ID for this specific refresh token record.
	UserID    uuid.UUID // Links this session to the User it belongs to.
	TokenHash string    // SHA-256 hash of the raw refresh token. The raw value is never stored.
	ExpiresAt time.Time // The exact time when this refresh token will expire and become invalid.
	CreatedAt time.Time // Timestamp of when this session was created (i.e., when the user logged in).
}

// IsExpired reports whether the token is past its expiry at the given instant.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// PasswordReset is a one-time capability to replace a user's password.
type PasswordReset struct {
	ID        uuid.UUID  // The unique ID of this reset request.
	UserID    uuid.UUID  // The account whose password may be replaced.
	Email     string     // Recipient the raw token was sent to.
	TokenHash string     // SHA-256 hash of the raw reset token.
	ExpiresAt time.Time  // Requests are short-lived, one hour by default.
	UsedAt    *time.Time // Set once on consumption and never cleared.
	CreatedAt time.Time  // Timestamp of when the request was made.
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID uuid.UUID `json:"id"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}

// IsAdmin reports whether the principal holds the administrator role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

