package repository

import (
	"context"
	"time"

	"authcore/internal/domain/entity"
	"authcore/internal/errors"

	"github.com/google/uuid"
)

// ErrPasswordResetNotFound covers unknown, expired and already used reset tokens alike.
var ErrPasswordResetNotFound = errors.New("password reset not found")

// PasswordResetRepository stores hashed one-time reset tokens.
type PasswordResetRepository interface {
	// Create persists a new reset request.
	Create(ctx context.Context, reset *entity.PasswordReset) error

	// SupersedeByUserID drops every pending request of the user so only the newest one is honored.
	SupersedeByUserID(ctx context.Context, userID uuid.UUID) error

	// Consume marks the request matching tokenHash as used, provided it is unused and
	// unexpired at now. The check and the update are a single statement.
	Consume(ctx context.Context, tokenHash string, now time.Time) (*entity.PasswordReset, error)

	// DeleteExpired removes requests that expired or were used before the given instant.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
