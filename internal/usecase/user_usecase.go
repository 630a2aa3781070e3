package usecase

import (
	"context"

	"authcore/internal/domain/entity"

	"github.com/google/uuid"
)

// SetActiveInput toggles an account's ability to authenticate.
type SetActiveInput struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// UserUsecase covers account reads and administrative actions.
type UserUsecase interface {
	// GetProfile returns the account of the given user.
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// SetActive activates or deactivates an account. Deactivation also ends
	// every session of the user.
	SetActive(ctx context.Context, userID uuid.UUID, active bool) (*entity.User, error)
}
