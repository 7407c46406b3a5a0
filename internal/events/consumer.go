package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/SAP-F-2025/exam-service/internal/mail"
)

// MailConsumer turns verification requests into outbound email. Delivery is
// fire-and-forget: failures are logged and the message is acknowledged.
type MailConsumer struct {
	sender mail.Sender
	logger *slog.Logger
}

func NewMailConsumer(sender mail.Sender, logger *slog.Logger) *MailConsumer {
	return &MailConsumer{sender: sender, logger: logger}
}

// Handle processes a single message from TopicAccounts.
func (c *MailConsumer) Handle(msg *message.Message) error {
	ctx := msg.Context()

	var event Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.logger.ErrorContext(ctx, "Dropping malformed event", "message_id", msg.UUID, "error", err)
		return nil
	}
	if event.Type != TypeVerificationRequested {
		return nil
	}

	var req VerificationRequested
	if err := event.Decode(&req); err != nil {
		c.logger.ErrorContext(ctx, "Dropping malformed verification request", "event_id", event.ID, "error", err)
		return nil
	}

	if err := c.sender.Send(ctx, mail.VerificationMessage(req.Username, req.Email, req.Link)); err != nil {
		c.logger.WarnContext(ctx, "Verification email not sent",
			"account_id", req.AccountID,
			"error", err)
		return nil
	}

	c.logger.InfoContext(ctx, "Verification email sent", "account_id", req.AccountID)
	return nil
}

// NewRouter wires the mail consumer onto the subscriber.
func NewRouter(subscriber message.Subscriber, consumer *MailConsumer, logger *slog.Logger) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create event router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)

	router.AddNoPublisherHandler(
		"verification_mail",
		TopicAccounts,
		subscriber,
		consumer.Handle,
	)

	return router, nil
}

// RunRouter runs the router until ctx is cancelled, logging a non-nil exit.
func RunRouter(ctx context.Context, router *message.Router, logger *slog.Logger) {
	if err := router.Run(ctx); err != nil {
		logger.Error("Event router stopped", "error", err)
	}
}
