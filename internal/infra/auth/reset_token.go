package auth

import (
	"crypto/rand"
	"encoding/base64"

	"authcore/internal/domain/service"
	"authcore/internal/errors"
)

const resetTokenBytes = 32

type randomTokenGenerator struct{}

// NewResetTokenGenerator returns a generator of 256-bit URL-safe tokens.
func NewResetTokenGenerator() service.ResetTokenGenerator {
	return randomTokenGenerator{}
}

// Generate returns a base64url raw token and its SHA-256 hash.
func (randomTokenGenerator) Generate() (string, string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", errors.Wrap(err, "failed to read random bytes")
	}

	raw := base64.RawURLEncoding.EncodeToString(buf)

	return raw, service.HashToken(raw), nil
}
