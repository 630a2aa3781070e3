package repository

import (
	"context"

	"authcore/internal/domain/entity"
	"authcore/internal/errors"

	"github.com/google/uuid"
)

var (
	// ErrEquipmentNotFound is returned when no equipment matches the ID.
	ErrEquipmentNotFound = errors.New("equipment not found")
	// ErrMealNotFound is returned when no meal matches the ID.
	ErrMealNotFound = errors.New("meal not found")
)

type EquipmentRepository interface {
	Create(ctx context.Context, equipment *entity.Equipment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Equipment, error)
	// ListByOwner returns all equipment when ownerID is uuid.Nil.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Equipment, error)
	Update(ctx context.Context, equipment *entity.Equipment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type MealRepository interface {
	Create(ctx context.Context, meal *entity.Meal) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Meal, error)
	// ListByOwner returns all meals when ownerID is uuid.Nil.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Meal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
