// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"authcore/internal/domain/entity"
)

// --- Input DTOs ---

// SignupInput defines the data required to register a new account.
type SignupInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshInput carries the refresh token presented by the client.
type RefreshInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutInput carries the refresh token of the session to end.
type LogoutInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ForgotPasswordInput names the account requesting a reset.
type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordInput carries the one-time token and the replacement password.
type ResetPasswordInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,max=72"`
}

// --- Output DTOs ---

// AuthOutput is returned by signup and login.
type AuthOutput struct {
	User                  *entity.User `json:"user"`
	AccessToken           string       `json:"accessToken"`
	AccessTokenExpiresAt  time.Time    `json:"accessTokenExpiresAt"`
	RefreshToken          string       `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time    `json:"refreshTokenExpiresAt"`
}

// RefreshOutput always carries a new access token. The refresh fields are set
// only when refresh tokens are rotated.
type RefreshOutput struct {
	AccessToken           string     `json:"accessToken"`
	AccessTokenExpiresAt  time.Time  `json:"accessTokenExpiresAt"`
	RefreshToken          string     `json:"refreshToken,omitempty"`
	RefreshTokenExpiresAt *time.Time `json:"refreshTokenExpiresAt,omitempty"`
}

// AuthUsecase defines the authentication flows exposed to the delivery layer.
type AuthUsecase interface {
	Signup(ctx context.Context, input *SignupInput) (*AuthOutput, error)
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)
	Refresh(ctx context.Context, input *RefreshInput) (*RefreshOutput, error)
	Logout(ctx context.Context, input *LogoutInput) error
	ForgotPassword(ctx context.Context, input *ForgotPasswordInput) error
	ResetPassword(ctx context.Context, input *ResetPasswordInput) error

	// Authenticate verifies an access token and resolves the principal behind it.
	Authenticate(ctx context.Context, accessToken string) (*entity.Principal, error)
}
