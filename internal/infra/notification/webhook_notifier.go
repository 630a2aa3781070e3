package notification

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	deliverycontext "authcore/internal/delivery/context"
	"authcore/internal/domain/service"
	"authcore/internal/errors"

	"github.com/google/uuid"
)

// webhookNotifier POSTs reset messages to an HTTP endpoint in the Pub/Sub
// push format, so a mail worker can consume both transports alike.
type webhookNotifier struct {
	endpoint   string
	resetURL   string
	httpClient *http.Client
	logger     *slog.Logger
}

// PushMessage mirrors the body Google Pub/Sub sends to push subscribers.
type PushMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// NewWebhookNotifier creates a notifier posting to endpoint.
func NewWebhookNotifier(endpoint, resetURL string, logger *slog.Logger) service.PasswordResetNotifier {
	return &webhookNotifier{
		endpoint: endpoint,
		resetURL: resetURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (n *webhookNotifier) Send(ctx context.Context, recipientEmail, rawToken string, expiresAt time.Time) error {
	msg := newPasswordResetMessage(ctx, n.resetURL, recipientEmail, rawToken, expiresAt)

	data, err := json.Marshal(msg)
	if err != nil {
		return errors.WithStack(err)
	}

	push := PushMessage{Subscription: "projects/local/subscriptions/password-reset"}
	push.Message.Data = base64.StdEncoding.EncodeToString(data)
	push.Message.MessageID = uuid.NewString()
	push.Message.PublishTime = time.Now().UTC().Format(time.RFC3339)
	push.Message.Attributes = map[string]string{"type": "password_reset"}
	if msg.RequestID != "" {
		push.Message.Attributes["request_id"] = msg.RequestID
	}

	body, err := json.Marshal(push)
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if msg.RequestID != "" {
		req.Header.Set(deliverycontext.HeaderXRequestID, msg.RequestID)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("notifier endpoint returned non-success status: %d", resp.StatusCode)
	}

	deliverycontext.GetLoggerOrDefault(ctx, n.logger).InfoContext(ctx, "[WebhookNotifier] Password reset dispatched",
		slog.String("message_id", push.Message.MessageID),
	)

	return nil
}

// Close releases resources (no-op for HTTP client)
func (n *webhookNotifier) Close() error {
	return nil
}
