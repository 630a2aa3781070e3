package service

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"authcore/internal/domain/entity"
	"authcore/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Verification failures. Callers prompt a silent refresh on ErrTokenExpired
// and a re-login on anything else.
var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenWrongKind = errors.New("token kind mismatch")
)

// Claims defines the custom claims for the JWT tokens.
type Claims struct {
	UserID uuid.UUID   `json:"uid"`
	Role   entity.Role `json:"role,omitempty"`
	Kind   TokenKind   `json:"type"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed tokens. Access and refresh tokens
// use independent secrets and lifetimes.
type TokenService interface {
	// IssueAccessToken creates a short-lived token carrying the user's role.
	IssueAccessToken(user *entity.User) (token string, expiresAt time.Time, err error)

	// IssueRefreshToken creates a long-lived token used only to mint access tokens.
	IssueRefreshToken(user *entity.User) (token string, expiresAt time.Time, err error)

	// Verify checks signature, expiry and kind. It returns ErrTokenExpired,
	// ErrTokenWrongKind or ErrTokenInvalid on failure.
	Verify(token string, kind TokenKind) (*Claims, error)
}

// HashToken returns the hex-encoded SHA-256 digest used to key stored tokens.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))

	return hex.EncodeToString(sum[:])
}
