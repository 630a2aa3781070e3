package service

import (
	"context"
	"time"
)

// ResetTokenGenerator produces high-entropy one-time tokens.
type ResetTokenGenerator interface {
	// Generate returns the raw token for the recipient and the hash to persist.
	Generate() (raw string, hash string, err error)
}

// PasswordResetNotifier delivers a raw reset token to its recipient out of band.
type PasswordResetNotifier interface {
	Send(ctx context.Context, recipientEmail, rawToken string, expiresAt time.Time) error

	// Close releases any resources held by the notifier
	Close() error
}
