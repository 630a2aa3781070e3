package postgres

import (
	"context"

	"authcore/internal/domain/entity"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/domain/repository"
	"authcore/internal/errors"
	"authcore/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type equipmentRepository struct {
	db *gorm.DB
}

// NewEquipmentRepository creates the Postgres-backed equipment repository.
func NewEquipmentRepository(db *gorm.DB) repository.EquipmentRepository {
	return &equipmentRepository{db: db}
}

func (repo *equipmentRepository) Create(ctx context.Context, equipment *entity.Equipment) error {
	equipmentM := fromEquipmentDomain(equipment)
	if err := repo.db.WithContext(ctx).Create(equipmentM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("unknown owner")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create equipment")
	}

	*equipment = *toEquipmentDomain(equipmentM)

	return nil
}

func (repo *equipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Equipment, error) {
	var equipmentM model.EquipmentModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&equipmentM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEquipmentNotFound
		}

		return nil, errors.Wrap(err, "failed to find equipment by id")
	}

	return toEquipmentDomain(&equipmentM), nil
}

func (repo *equipmentRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Equipment, error) {
	query := repo.db.WithContext(ctx).Order("created_at DESC")
	if ownerID != uuid.Nil {
		query = query.Where("owner_id = ?", ownerID)
	}

	var rows []model.EquipmentModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list equipment")
	}

	result := make([]*entity.Equipment, 0, len(rows))
	for i := range rows {
		result = append(result, toEquipmentDomain(&rows[i]))
	}

	return result, nil
}

func (repo *equipmentRepository) Update(ctx context.Context, equipment *entity.Equipment) error {
	result := repo.db.WithContext(ctx).Model(&model.EquipmentModel{}).
		Where("id = ?", equipment.ID).
		Updates(map[string]any{
			"name":       equipment.Name,
			"type":       equipment.Type,
			"status":     equipment.Status,
			"updated_at": equipment.UpdatedAt,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update equipment")
	}
	if result.RowsAffected == 0 {
		return repository.ErrEquipmentNotFound
	}

	return nil
}

func (repo *equipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.EquipmentModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete equipment")
	}
	if result.RowsAffected == 0 {
		return repository.ErrEquipmentNotFound
	}

	return nil
}

type mealRepository struct {
	db *gorm.DB
}

// NewMealRepository creates the Postgres-backed meal repository.
func NewMealRepository(db *gorm.DB) repository.MealRepository {
	return &mealRepository{db: db}
}

func (repo *mealRepository) Create(ctx context.Context, meal *entity.Meal) error {
	mealM := fromMealDomain(meal)
	if err := repo.db.WithContext(ctx).Create(mealM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("unknown owner")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create meal")
	}

	*meal = *toMealDomain(mealM)

	return nil
}

func (repo *mealRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Meal, error) {
	var mealM model.MealModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&mealM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMealNotFound
		}

		return nil, errors.Wrap(err, "failed to find meal by id")
	}

	return toMealDomain(&mealM), nil
}

func (repo *mealRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Meal, error) {
	query := repo.db.WithContext(ctx).Order("eaten_at DESC")
	if ownerID != uuid.Nil {
		query = query.Where("owner_id = ?", ownerID)
	}

	var rows []model.MealModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list meals")
	}

	result := make([]*entity.Meal, 0, len(rows))
	for i := range rows {
		result = append(result, toMealDomain(&rows[i]))
	}

	return result, nil
}

func (repo *mealRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.MealModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete meal")
	}
	if result.RowsAffected == 0 {
		return repository.ErrMealNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toEquipmentDomain(data *model.EquipmentModel) *entity.Equipment {
	return &entity.Equipment{
		ID:        data.ID,
		OwnerID:   data.OwnerID,
		Name:      data.Name,
		Type:      data.Type,
		Status:    data.Status,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromEquipmentDomain(data *entity.Equipment) *model.EquipmentModel {
	return &model.EquipmentModel{
		ID:        data.ID,
		OwnerID:   data.OwnerID,
		Name:      data.Name,
		Type:      data.Type,
		Status:    data.Status,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func toMealDomain(data *model.MealModel) *entity.Meal {
	return &entity.Meal{
		ID:        data.ID,
		OwnerID:   data.OwnerID,
		Name:      data.Name,
		Calories:  data.Calories,
		EatenAt:   data.EatenAt,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromMealDomain(data *entity.Meal) *model.MealModel {
	return &model.MealModel{
		ID:        data.ID,
		OwnerID:   data.OwnerID,
		Name:      data.Name,
		Calories:  data.Calories,
		EatenAt:   data.EatenAt,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
