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

type refreshTokenRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRefreshTokenRepository creates the Postgres-backed refresh token store.
func NewRefreshTokenRepository(db *gorm.DB) repository.RefreshTokenRepository {
	return &refreshTokenRepository{db: db, now: time.Now}
}

func (repo *refreshTokenRepository) Create(ctx context.Context, token *entity.RefreshToken) error {
	tokenM := fromRefreshTokenDomain(token)
	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		return errors.Wrap(err, "failed to create refresh token")
	}

	token.ID = tokenM.ID
	token.CreatedAt = tokenM.CreatedAt

	return nil
}

func (repo *refreshTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	var tokenM model.RefreshTokenModel
	if err := repo.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&tokenM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRefreshTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to find refresh token by hash")
	}

	token := toRefreshTokenDomain(&tokenM)
	if token.IsExpired(repo.now()) {
		return nil, repository.ErrRefreshTokenExpired
	}

	return token, nil
}

func (repo *refreshTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	if err := repo.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&model.RefreshTokenModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete refresh token by hash")
	}

	return nil
}

func (repo *refreshTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := repo.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.RefreshTokenModel{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete refresh tokens by user id")
	}

	return result.RowsAffected, nil
}

func (repo *refreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := repo.db.WithContext(ctx).Where("expires_at <= ?", repo.now()).Delete(&model.RefreshTokenModel{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete expired refresh tokens")
	}

	return result.RowsAffected, nil
}

// Rotate deletes the live old row and inserts next in one transaction. The
// DELETE takes the row lock, so a concurrent rotation of the same token waits
// and then deletes nothing.
func (repo *refreshTokenRepository) Rotate(ctx context.Context, oldHash string, next *entity.RefreshToken) error {
	nextM := fromRefreshTokenDomain(next)

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("token_hash = ? AND expires_at > ?", oldHash, repo.now()).Delete(&model.RefreshTokenModel{})
		if result.Error != nil {
			return errors.Wrap(result.Error, "failed to delete rotated refresh token")
		}
		if result.RowsAffected == 0 {
			return repository.ErrRefreshTokenNotFound
		}

		if err := tx.Create(nextM).Error; err != nil {
			return errors.Wrap(err, "failed to create rotated refresh token")
		}

		return nil
	})
	if err != nil {
		return err
	}

	next.ID = nextM.ID
	next.CreatedAt = nextM.CreatedAt

	return nil
}

func toRefreshTokenDomain(data *model.RefreshTokenModel) *entity.RefreshToken {
	return &entity.RefreshToken{
		ID:        data.ID,
		UserID:    data.UserID,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}

func fromRefreshTokenDomain(data *entity.RefreshToken) *model.RefreshTokenModel {
	return &model.RefreshTokenModel{
		ID:        data.ID,
		UserID:    data.UserID,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}
