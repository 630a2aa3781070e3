package usecase

import "context"

// CleanupResult reports how many expired records a cleanup run removed.
type CleanupResult struct {
	RefreshTokens  int64
	PasswordResets int64
}

// MaintenanceUsecase purges state that can no longer be used.
type MaintenanceUsecase interface {
	PurgeExpired(ctx context.Context) (*CleanupResult, error)
}
