package impl

import (
	"context"
	"log/slog"
	"time"

	"authcore/internal/domain/repository"
	"authcore/internal/errors"
	"authcore/internal/usecase"

	"go.uber.org/fx"
)

// CleanupRecorder receives the number of records each cleanup run removed.
type CleanupRecorder interface {
	RecordCleanup(store string, removed int64)
}

// maintenanceService implements the MaintenanceUsecase interface.
type maintenanceService struct {
	refreshTokenRepo  repository.RefreshTokenRepository
	passwordResetRepo repository.PasswordResetRepository
	recorder          CleanupRecorder
	logger            *slog.Logger
	now               func() time.Time
}

// MaintenanceServiceParams holds dependencies for MaintenanceService, injected by Fx.
type MaintenanceServiceParams struct {
	fx.In

	RefreshTokenRepo  repository.RefreshTokenRepository
	PasswordResetRepo repository.PasswordResetRepository
	Recorder          CleanupRecorder `optional:"true"`
	Logger            *slog.Logger
}

// NewMaintenanceService is the constructor for maintenanceService.
func NewMaintenanceService(params MaintenanceServiceParams) usecase.MaintenanceUsecase {
	return &maintenanceService{
		refreshTokenRepo:  params.RefreshTokenRepo,
		passwordResetRepo: params.PasswordResetRepo,
		recorder:          params.Recorder,
		logger:            params.Logger,
		now:               time.Now,
	}
}

// PurgeExpired removes expired refresh tokens and expired or used reset requests.
// Both stores are swept even if the first one fails.
func (srv *maintenanceService) PurgeExpired(ctx context.Context) (*usecase.CleanupResult, error) {
	result := &usecase.CleanupResult{}

	var errs []error

	removed, err := srv.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		errs = append(errs, errors.Wrap(err, "failed to purge refresh tokens"))
	}
	result.RefreshTokens = removed

	removed, err = srv.passwordResetRepo.DeleteExpired(ctx, srv.now())
	if err != nil {
		errs = append(errs, errors.Wrap(err, "failed to purge password resets"))
	}
	result.PasswordResets = removed

	if srv.recorder != nil {
		srv.recorder.RecordCleanup("refresh_tokens", result.RefreshTokens)
		srv.recorder.RecordCleanup("password_resets", result.PasswordResets)
	}

	srv.logger.Info("Expired credentials purged",
		slog.Int64("refresh_tokens", result.RefreshTokens),
		slog.Int64("password_resets", result.PasswordResets),
	)

	return result, errors.Join(errs...)
}
