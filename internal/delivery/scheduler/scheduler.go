// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"authcore/config"
	"authcore/internal/delivery"
	"authcore/internal/domain/lifecycle"
	"authcore/internal/errors"
	"authcore/internal/usecase"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
)

const cleanupTimeout = 5 * time.Minute

type cleanupScheduler struct {
	cron          *cron.Cron
	maintenanceUC usecase.MaintenanceUsecase
	logger        *slog.Logger
	schedule      string
	enabled       bool

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// SchedulerParams holds dependencies for the cleanup scheduler, injected by Fx.
type SchedulerParams struct {
	fx.In

	Lc            fx.Lifecycle
	Cfg           *config.Config
	Logger        *slog.Logger
	MaintenanceUC usecase.MaintenanceUsecase
}

// NewScheduler builds the cleanup delivery. A disabled cleanup yields a
// delivery whose Serve returns immediately.
func NewScheduler(params SchedulerParams) (delivery.Delivery, error) {
	logger := params.Logger.With(slog.String("component", "cleanup_scheduler"))
	cronLogger := newCronLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	s := &cleanupScheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		maintenanceUC: params.MaintenanceUC,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}

	if params.Cfg.Cleanup != nil {
		s.enabled = params.Cfg.Cleanup.Enabled
		s.schedule = params.Cfg.Cleanup.Schedule
	}

	if s.enabled {
		if _, err := s.cron.AddFunc(s.schedule, s.runCleanup); err != nil {
			cancel()

			return nil, errors.Wrapf(err, "invalid cleanup schedule %q", s.schedule)
		}
	}

	params.Lc.Append(fx.Hook{
		OnStop: s.stop,
	})

	return s, nil
}

// Serve starts the cron loop and blocks until the scheduler is stopped.
func (s *cleanupScheduler) Serve(ctx context.Context) error {
	if !s.enabled {
		s.logger.Info("Cleanup scheduler disabled")

		return nil
	}

	s.logger.Info("Starting cleanup scheduler", slog.String("schedule", s.schedule))
	s.cron.Start()

	select {
	case <-ctx.Done():
	case <-s.done:
	}

	return nil
}

func (s *cleanupScheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(s.ctx, cleanupTimeout)
	defer cancel()

	result, err := s.maintenanceUC.PurgeExpired(ctx)
	if err != nil {
		s.logger.Error("Cleanup run failed", slog.Any("error", err))

		return
	}

	s.logger.Debug("Cleanup run finished",
		slog.Int64("refresh_tokens", result.RefreshTokens),
		slog.Int64("password_resets", result.PasswordResets),
	)
}

func (s *cleanupScheduler) stop(ctx context.Context) error {
	s.logger.Info("Stopping cleanup scheduler")

	s.stopOnce.Do(func() {
		s.cancel()
		close(s.done)
	})

	waitCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-waitCtx.Done():
		return errors.Wrap(waitCtx.Err(), "cleanup job did not finish")
	}
}

// cronLogger routes cron's key/value logging into slog.
type cronLogger struct {
	logger *slog.Logger
}

func newCronLogger(logger *slog.Logger) cron.Logger {
	return &cronLogger{logger: logger}
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, slog.Any("error", err))...)
}
