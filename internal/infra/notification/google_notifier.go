package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	deliverycontext "authcore/internal/delivery/context"
	"authcore/internal/domain/service"
	"authcore/internal/errors"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
)

// googlePubSubNotifier publishes reset messages to a Google Cloud Pub/Sub topic.
type googlePubSubNotifier struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	resetURL  string
	logger    *slog.Logger
}

// NewGooglePubSubNotifier verifies the topic exists and returns a publisher-backed notifier.
func NewGooglePubSubNotifier(ctx context.Context, projectID, topicID, resetURL string, logger *slog.Logger) (service.PasswordResetNotifier, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	topicPath := fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	if _, err := client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: topicPath}); err != nil {
		client.Close()

		return nil, errors.Wrapf(err, "failed to get topic %s", topicID)
	}

	return &googlePubSubNotifier{
		client:    client,
		publisher: client.Publisher(topicID),
		resetURL:  resetURL,
		logger:    logger,
	}, nil
}

func (n *googlePubSubNotifier) Send(ctx context.Context, recipientEmail, rawToken string, expiresAt time.Time) error {
	msg := newPasswordResetMessage(ctx, n.resetURL, recipientEmail, rawToken, expiresAt)

	data, err := json.Marshal(msg)
	if err != nil {
		return errors.WithStack(err)
	}

	attributes := map[string]string{"type": "password_reset"}
	if msg.RequestID != "" {
		attributes["request_id"] = msg.RequestID
	}

	serverID, err := n.publisher.Publish(ctx, &pubsub.Message{Data: data, Attributes: attributes}).Get(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	deliverycontext.GetLoggerOrDefault(ctx, n.logger).InfoContext(ctx, "[GooglePubSub] Password reset published",
		slog.String("server_id", serverID),
	)

	return nil
}

// Close releases Pub/Sub client resources
func (n *googlePubSubNotifier) Close() error {
	if n.publisher != nil {
		n.publisher.Stop()
	}
	if n.client != nil {
		return errors.WithStack(n.client.Close())
	}

	return nil
}
