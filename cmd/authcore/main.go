package main

import (
	"context"
	"log/slog"
	"os"

	"authcore/config"
	"authcore/internal/delivery"
	"authcore/internal/delivery/http"
	"authcore/internal/delivery/http/middleware"
	"authcore/internal/delivery/http/router/handler"
	"authcore/internal/delivery/scheduler"
	"authcore/internal/domain/service"
	"authcore/internal/infra/auth"
	logs "authcore/internal/infra/log"
	"authcore/internal/infra/metrics"
	"authcore/internal/infra/notification"
	"authcore/internal/infra/persistence"
	"authcore/internal/infra/persistence/postgres"
	"authcore/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		fx.Annotate(
			metrics.New,
			fx.As(fx.Self()),
			fx.As(new(service.AuthEventRecorder)),
			fx.As(new(impl.CleanupRecorder)),
		),
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewPasswordResetRepository,
			postgres.NewEquipmentRepository,
			postgres.NewMealRepository,
			postgres.NewTransactionManager,
			persistence.NewRefreshTokenRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			auth.NewResetTokenGenerator,
			notification.NewPasswordResetNotifier,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewUserService,
			impl.NewEquipmentService,
			impl.NewMealService,
			impl.NewMaintenanceService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewUserHandler,
			handler.NewEquipmentHandler,
			handler.NewMealHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				scheduler.NewScheduler,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
