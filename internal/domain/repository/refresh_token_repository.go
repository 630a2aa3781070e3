package repository

import (
	"context"

	"authcore/internal/domain/entity"
	"authcore/internal/errors"

	"github.com/google/uuid"
)

var (
	// ErrRefreshTokenNotFound is returned when a refresh token is not found.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	// ErrRefreshTokenExpired is returned when a stored refresh token is past its expiry.
	ErrRefreshTokenExpired = errors.New("refresh token has expired")
)

// RefreshTokenRepository stores issued refresh tokens keyed by their SHA-256 hash.
// Implementations must never return an expired token as valid.
type RefreshTokenRepository interface {
	// Create persists a new refresh token, representing a user session.
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindByHash returns ErrRefreshTokenNotFound for unknown hashes and
	// ErrRefreshTokenExpired for rows whose expiry has passed.
	FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// DeleteByHash ends a single session. Deleting an absent token is not an error.
	DeleteByHash(ctx context.Context, tokenHash string) error

	// DeleteByUserID removes every session of a user and reports how many were removed.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// DeleteExpired removes tokens whose expiry has passed.
	DeleteExpired(ctx context.Context) (int64, error)

	// Rotate atomically replaces the live token identified by oldHash with next.
	// Of two concurrent rotations of the same token only one succeeds; the other
	// gets ErrRefreshTokenNotFound.
	Rotate(ctx context.Context, oldHash string, next *entity.RefreshToken) error
}
