package postgres

import (
	"context"

	"authcore/internal/domain/repository"
	"authcore/internal/errors"

	"gorm.io/gorm"
)

// gormTransactionManager implements the domain's TransactionManager interface using GORM.
type gormTransactionManager struct {
	db            *gorm.DB
	refreshTokens repository.RefreshTokenRepository
}

// gormRepositoryFactory hands out repositories bound to a single *gorm.DB transaction.
type gormRepositoryFactory struct {
	tx            *gorm.DB
	refreshTokens repository.RefreshTokenRepository
}

func (f *gormRepositoryFactory) NewUserRepository() repository.UserRepository {
	return NewUserRepository(f.tx)
}

func (f *gormRepositoryFactory) NewPasswordResetRepository() repository.PasswordResetRepository {
	return NewPasswordResetRepository(f.tx)
}

func (f *gormRepositoryFactory) NewRefreshTokenRepository() repository.RefreshTokenRepository {
	if _, ok := f.refreshTokens.(*refreshTokenRepository); ok || f.refreshTokens == nil {
		return NewRefreshTokenRepository(f.tx)
	}

	return f.refreshTokens
}

func (f *gormRepositoryFactory) NewEquipmentRepository() repository.EquipmentRepository {
	return NewEquipmentRepository(f.tx)
}

func (f *gormRepositoryFactory) NewMealRepository() repository.MealRepository {
	return NewMealRepository(f.tx)
}

// NewTransactionManager is the constructor for gormTransactionManager. The
// configured refresh token store decides whether session writes join transactions.
func NewTransactionManager(db *gorm.DB, refreshTokens repository.RefreshTokenRepository) repository.TransactionManager {
	return &gormTransactionManager{db: db, refreshTokens: refreshTokens}
}

// Execute runs fn inside one database transaction. Errors returned by fn roll
// the transaction back and reach the caller unchanged.
func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	var fnErr error
	err := tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&gormRepositoryFactory{tx: tx, refreshTokens: tm.refreshTokens})

		return fnErr
	})
	if err != nil && fnErr == nil {
		return errors.Wrap(err, "transaction failed")
	}

	return err
}
