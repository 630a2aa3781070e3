package postgres

import (
	"context"
	"time"

	"authcore/internal/domain/entity"
	"authcore/internal/domain/repository"
	"authcore/internal/errors"
	"authcore/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type passwordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository creates the Postgres-backed reset token store.
func NewPasswordResetRepository(db *gorm.DB) repository.PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (repo *passwordResetRepository) Create(ctx context.Context, reset *entity.PasswordReset) error {
	resetM := fromPasswordResetDomain(reset)
	if err := repo.db.WithContext(ctx).Create(resetM).Error; err != nil {
		return errors.Wrap(err, "failed to create password reset")
	}

	reset.ID = resetM.ID
	reset.CreatedAt = resetM.CreatedAt

	return nil
}

func (repo *passwordResetRepository) SupersedeByUserID(ctx context.Context, userID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND used_at IS NULL", userID).
		Delete(&model.PasswordResetModel{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to supersede password resets")
	}

	return nil
}

// Consume flips used_at with a guarded UPDATE. Only the statement that changes
// the row wins; a replay or a concurrent consumer affects zero rows.
func (repo *passwordResetRepository) Consume(ctx context.Context, tokenHash string, now time.Time) (*entity.PasswordReset, error) {
	db := repo.db.WithContext(ctx)

	result := db.Model(&model.PasswordResetModel{}).
		Where("token_hash = ? AND used_at IS NULL AND expires_at > ?", tokenHash, now).
		Update("used_at", now)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to consume password reset")
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrPasswordResetNotFound
	}

	var resetM model.PasswordResetModel
	if err := db.Where("token_hash = ?", tokenHash).First(&resetM).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load consumed password reset")
	}

	return toPasswordResetDomain(&resetM), nil
}

func (repo *passwordResetRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at <= ? OR used_at IS NOT NULL", before).
		Delete(&model.PasswordResetModel{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete expired password resets")
	}

	return result.RowsAffected, nil
}

func toPasswordResetDomain(data *model.PasswordResetModel) *entity.PasswordReset {
	return &entity.PasswordReset{
		ID:        data.ID,
		UserID:    data.UserID,
		Email:     data.Email,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		UsedAt:    data.UsedAt,
		CreatedAt: data.CreatedAt,
	}
}

func fromPasswordResetDomain(data *entity.PasswordReset) *model.PasswordResetModel {
	return &model.PasswordResetModel{
		ID:        data.ID,
		UserID:    data.UserID,
		Email:     data.Email,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		UsedAt:    data.UsedAt,
		CreatedAt: data.CreatedAt,
	}
}
