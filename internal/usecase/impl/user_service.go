package impl

import (
	"context"
	"log/slog"

	deliverycontext "authcore/internal/delivery/context"
	"authcore/internal/domain/entity"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/domain/repository"
	"authcore/internal/errors"
	"authcore/internal/usecase"

	"github.com/google/uuid"
)

// userService implements the UserUsecase interface.
type userService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	logger           *slog.Logger
}

// NewUserService is the constructor for userService.
func NewUserService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	logger *slog.Logger,
) usecase.UserUsecase {
	return &userService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		logger:           logger,
	}
}

func (srv *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrUserNotFound.WrapMessage("profile lookup failed")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}

	return user, nil
}

func (srv *userService) SetActive(ctx context.Context, userID uuid.UUID, active bool) (*entity.User, error) {
	logger := deliverycontext.GetLoggerOrDefault(ctx, srv.logger)

	err := srv.userRepo.SetActive(ctx, userID, active)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrUserNotFound.WrapMessage("cannot change account state")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to update account state")
	}

	if !active {
		revoked, err := srv.refreshTokenRepo.DeleteByUserID(ctx, userID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to revoke sessions of deactivated account")
		}
		logger.Info("Account deactivated", slog.Any("user_id", userID), slog.Int64("revoked_sessions", revoked))
	} else {
		logger.Info("Account activated", slog.Any("user_id", userID))
	}

	return srv.GetProfile(ctx, userID)
}
