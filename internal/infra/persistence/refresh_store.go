// Package persistence selects the backends behind the repository interfaces.
package persistence

import (
	"log/slog"

	"authcore/config"
	"authcore/internal/domain/repository"
	"authcore/internal/errors"
	"authcore/internal/infra/persistence/postgres"
	"authcore/internal/infra/persistence/redisstore"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

// RefreshStoreParams holds dependencies for the refresh token store, injected by Fx
type RefreshStoreParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	DB     *gorm.DB
	Logger *slog.Logger
}

// NewRefreshTokenRepository returns the store configured under refreshTokenStore.driver.
func NewRefreshTokenRepository(params RefreshStoreParams) (repository.RefreshTokenRepository, error) {
	storeCfg := params.Config.RefreshTokenStore
	if storeCfg == nil || storeCfg.Driver == "" || storeCfg.Driver == config.RefreshStoreDriverPostgres {
		params.Logger.Info("Using PostgreSQL refresh token store")

		return postgres.NewRefreshTokenRepository(params.DB), nil
	}

	if storeCfg.Driver != config.RefreshStoreDriverRedis {
		return nil, errors.Errorf("unsupported refresh token store driver: %s", storeCfg.Driver)
	}
	if storeCfg.Redis == nil {
		return nil, errors.New("redis configuration is required for the redis refresh token store")
	}

	client, err := redisstore.NewClient(params.Lc, storeCfg.Redis, params.Logger)
	if err != nil {
		return nil, err
	}
	params.Logger.Info("Using Redis refresh token store", slog.String("addr", storeCfg.Redis.Addr))

	return redisstore.NewRefreshTokenRepository(client, storeCfg.Redis.KeyPrefix), nil
}
