package usecase

import (
	"context"
	"time"

	"authcore/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateEquipmentInput defines a new piece of equipment.
type CreateEquipmentInput struct {
	Name   string `json:"name" validate:"required,max=100"`
	Type   string `json:"type" validate:"required,max=50"`
	Status string `json:"status" validate:"omitempty,oneof=available in_use maintenance retired"`
}

// UpdateEquipmentInput holds the fields to change. Nil fields are left untouched.
type UpdateEquipmentInput struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=100"`
	Type   *string `json:"type" validate:"omitempty,min=1,max=50"`
	Status *string `json:"status" validate:"omitempty,oneof=available in_use maintenance retired"`
}

// CreateMealInput defines a new meal record.
type CreateMealInput struct {
	Name     string     `json:"name" validate:"required,max=100"`
	Calories int        `json:"calories" validate:"gte=0,lte=20000"`
	EatenAt  *time.Time `json:"eatenAt"`
}

// OwnerLookup resolves the owner of a resource. It returns ErrNotFound when
// the resource does not exist.
type OwnerLookup func(ctx context.Context, resourceID uuid.UUID) (uuid.UUID, error)

// EquipmentUsecase manages user-owned equipment. Ownership of single items is
// enforced by the delivery layer before these methods run.
type EquipmentUsecase interface {
	Create(ctx context.Context, ownerID uuid.UUID, input *CreateEquipmentInput) (*entity.Equipment, error)
	// List returns the principal's equipment, or everything for administrators.
	List(ctx context.Context, principal *entity.Principal) ([]*entity.Equipment, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Equipment, error)
	Update(ctx context.Context, id uuid.UUID, input *UpdateEquipmentInput) (*entity.Equipment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// MealUsecase manages user-owned meal records.
type MealUsecase interface {
	Create(ctx context.Context, ownerID uuid.UUID, input *CreateMealInput) (*entity.Meal, error)
	List(ctx context.Context, principal *entity.Principal) ([]*entity.Meal, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Meal, error)
	Delete(ctx context.Context, id uuid.UUID) error
	OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}
