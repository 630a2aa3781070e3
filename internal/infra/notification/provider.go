// Package notification delivers password reset tokens to out-of-band channels.
package notification

import (
	"context"
	"log/slog"
	"time"

	"authcore/config"
	deliverycontext "authcore/internal/delivery/context"
	"authcore/internal/domain/service"
	"authcore/internal/errors"

	"go.uber.org/fx"
)

const (
	ProviderLog     = "log"
	ProviderWebhook = "webhook"
	ProviderGoogle  = "google"
)

// PasswordResetMessage is the payload handed to the delivery channel.
type PasswordResetMessage struct {
	RequestID string    `json:"request_id,omitempty"` // For distributed tracing
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ResetURL  string    `json:"reset_url,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newPasswordResetMessage(ctx context.Context, resetURL, email, token string, expiresAt time.Time) *PasswordResetMessage {
	msg := &PasswordResetMessage{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		Email:     email,
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
	}
	if resetURL != "" {
		msg.ResetURL = resetURL + "?token=" + token
	}

	return msg
}

// logNotifier records that a reset was requested without exposing the token.
type logNotifier struct {
	logger *slog.Logger
}

func (n *logNotifier) Send(ctx context.Context, recipientEmail, _ string, expiresAt time.Time) error {
	deliverycontext.GetLoggerOrDefault(ctx, n.logger).InfoContext(ctx, "[LogNotifier] Password reset delivery skipped",
		slog.String("recipient", recipientEmail),
		slog.Time("expires_at", expiresAt),
	)

	return nil
}

func (n *logNotifier) Close() error {
	return nil
}

// NotifierParams holds dependencies for the notifier, injected by Fx
type NotifierParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewPasswordResetNotifier creates a notifier based on configuration
func NewPasswordResetNotifier(params NotifierParams) (service.PasswordResetNotifier, error) {
	cfg := params.Config.Notifier
	logger := params.Logger

	if cfg == nil || cfg.Provider == "" || cfg.Provider == ProviderLog {
		logger.Info("Notifier not configured, password reset tokens are not delivered")

		return &logNotifier{logger: logger}, nil
	}

	var notifier service.PasswordResetNotifier

	switch cfg.Provider {
	case ProviderWebhook:
		if cfg.Endpoint == "" {
			return nil, errors.New("endpoint is required for webhook notifier")
		}
		logger.Info("Using webhook notifier", slog.String("endpoint", cfg.Endpoint))

		notifier = NewWebhookNotifier(cfg.Endpoint, cfg.ResetURL, logger)

	case ProviderGoogle:
		if cfg.ProjectID == "" {
			return nil, errors.New("project ID is required for google notifier")
		}
		if cfg.TopicID == "" {
			return nil, errors.New("topic ID is required for google notifier")
		}
		logger.Info("Using Google Pub/Sub notifier",
			slog.String("project_id", cfg.ProjectID),
			slog.String("topic_id", cfg.TopicID),
		)

		var err error
		notifier, err = NewGooglePubSubNotifier(context.Background(), cfg.ProjectID, cfg.TopicID, cfg.ResetURL, logger)
		if err != nil {
			return nil, err
		}

	default:
		return nil, errors.Errorf("unknown notifier provider: %s", cfg.Provider)
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			logger.Info("Closing password reset notifier")

			return notifier.Close()
		},
	})

	return notifier, nil
}
