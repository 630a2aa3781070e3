package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "authcore/internal/delivery/context"
	"authcore/internal/domain/entity"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/domain/repository"
	"authcore/internal/errors"
	"authcore/internal/usecase"

	"github.com/google/uuid"
)

const defaultEquipmentStatus = "available"

// equipmentService implements the EquipmentUsecase interface.
type equipmentService struct {
	repo   repository.EquipmentRepository
	logger *slog.Logger
}

// NewEquipmentService is the constructor for equipmentService.
func NewEquipmentService(repo repository.EquipmentRepository, logger *slog.Logger) usecase.EquipmentUsecase {
	return &equipmentService{repo: repo, logger: logger}
}

func (srv *equipmentService) Create(ctx context.Context, ownerID uuid.UUID, input *usecase.CreateEquipmentInput) (*entity.Equipment, error) {
	equipment := &entity.Equipment{
		OwnerID: ownerID,
		Name:    input.Name,
		Type:    input.Type,
		Status:  input.Status,
	}
	if equipment.Status == "" {
		equipment.Status = defaultEquipmentStatus
	}

	if err := srv.repo.Create(ctx, equipment); err != nil {
		return nil, errors.Wrap(err, "failed to create equipment")
	}

	deliverycontext.GetLoggerOrDefault(ctx, srv.logger).Debug("Equipment created",
		slog.Any("equipment_id", equipment.ID), slog.Any("owner_id", ownerID))

	return equipment, nil
}

func (srv *equipmentService) List(ctx context.Context, principal *entity.Principal) ([]*entity.Equipment, error) {
	ownerID := principal.UserID
	if principal.IsAdmin() {
		ownerID = uuid.Nil
	}

	items, err := srv.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list equipment")
	}

	return items, nil
}

func (srv *equipmentService) Get(ctx context.Context, id uuid.UUID) (*entity.Equipment, error) {
	equipment, err := srv.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrEquipmentNotFound) {
		return nil, domainerrors.NewNotFoundError("Equipment")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find equipment")
	}

	return equipment, nil
}

func (srv *equipmentService) Update(ctx context.Context, id uuid.UUID, input *usecase.UpdateEquipmentInput) (*entity.Equipment, error) {
	equipment, err := srv.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		equipment.Name = *input.Name
	}
	if input.Type != nil {
		equipment.Type = *input.Type
	}
	if input.Status != nil {
		equipment.Status = *input.Status
	}

	if err := srv.repo.Update(ctx, equipment); err != nil {
		if errors.Is(err, repository.ErrEquipmentNotFound) {
			return nil, domainerrors.NewNotFoundError("Equipment")
		}

		return nil, errors.Wrap(err, "failed to update equipment")
	}

	return equipment, nil
}

func (srv *equipmentService) Delete(ctx context.Context, id uuid.UUID) error {
	err := srv.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrEquipmentNotFound) {
		return domainerrors.NewNotFoundError("Equipment")
	}

	return errors.Wrap(err, "failed to delete equipment")
}

// OwnerOf backs the ownership check of single-item routes.
func (srv *equipmentService) OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	equipment, err := srv.Get(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}

	return equipment.OwnerID, nil
}

// mealService implements the MealUsecase interface.
type mealService struct {
	repo   repository.MealRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewMealService is the constructor for mealService.
func NewMealService(repo repository.MealRepository, logger *slog.Logger) usecase.MealUsecase {
	return &mealService{repo: repo, logger: logger, now: time.Now}
}

func (srv *mealService) Create(ctx context.Context, ownerID uuid.UUID, input *usecase.CreateMealInput) (*entity.Meal, error) {
	meal := &entity.Meal{
		OwnerID:  ownerID,
		Name:     input.Name,
		Calories: input.Calories,
		EatenAt:  srv.now().UTC(),
	}
	if input.EatenAt != nil {
		meal.EatenAt = input.EatenAt.UTC()
	}

	if err := srv.repo.Create(ctx, meal); err != nil {
		return nil, errors.Wrap(err, "failed to create meal")
	}

	return meal, nil
}

func (srv *mealService) List(ctx context.Context, principal *entity.Principal) ([]*entity.Meal, error) {
	ownerID := principal.UserID
	if principal.IsAdmin() {
		ownerID = uuid.Nil
	}

	meals, err := srv.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list meals")
	}

	return meals, nil
}

func (srv *mealService) Get(ctx context.Context, id uuid.UUID) (*entity.Meal, error) {
	meal, err := srv.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrMealNotFound) {
		return nil, domainerrors.NewNotFoundError("Meal")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find meal")
	}

	return meal, nil
}

func (srv *mealService) Delete(ctx context.Context, id uuid.UUID) error {
	err := srv.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrMealNotFound) {
		return domainerrors.NewNotFoundError("Meal")
	}

	return errors.Wrap(err, "failed to delete meal")
}

func (srv *mealService) OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	meal, err := srv.Get(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}

	return meal.OwnerID, nil
}
