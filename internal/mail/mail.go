// Package mail renders and delivers transactional email.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type Message struct {
	To      mail.Address
	Subject string
	Body    string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ConsoleSender writes messages to the log instead of delivering them.
type ConsoleSender struct {
	logger *slog.Logger
}

func NewConsoleSender(logger *slog.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger}
}

func (s *ConsoleSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "Email (console)",
		"to", msg.To.String(),
		"subject", msg.Subject,
		"body", msg.Body)
	return nil
}

// SendGridSender delivers through the SendGrid v3 API.
type SendGridSender struct {
	apiKey string
	from   *sgmail.Email
}

func NewSendGridSender(apiKey string, from mail.Address) *SendGridSender {
	return &SendGridSender{
		apiKey: apiKey,
		from:   sgmail.NewEmail(from.Name, from.Address),
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	m := sgmail.NewSingleEmail(
		s.from,
		msg.Subject,
		sgmail.NewEmail(msg.To.Name, msg.To.Address),
		msg.Body,
		"",
	)

	req := sendgrid.GetRequest(s.apiKey, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.MakeRequest(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("failed to send email: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// NewSender picks SendGrid when an API key is configured and the console otherwise.
func NewSender(apiKey string, from mail.Address, logger *slog.Logger) Sender {
	if apiKey == "" {
		return NewConsoleSender(logger)
	}
	return NewSendGridSender(apiKey, from)
}
