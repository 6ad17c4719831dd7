package jobs

import (
	"context"
	"log/slog"

	"github.com/sobitas/backoffice/internal/notify"
)

// Dispatcher queues notification tasks. Enqueue failures are logged and
// swallowed so a sale never fails because Redis was down.
type Dispatcher struct {
	client *Client
	logger *slog.Logger
}

var _ notify.Dispatcher = (*Dispatcher)(nil)

func NewDispatcher(client *Client, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{client: client, logger: logger}
}

func (d *Dispatcher) SMS(ctx context.Context, phone, body string) {
	if _, err := d.client.EnqueueSendSMS(ctx, SendSMSPayload{Phone: phone, Body: body}); err != nil {
		d.logger.Warn("enqueue sms failed", slog.String("phone", phone), slog.Any("error", err))
	}
}

func (d *Dispatcher) Email(ctx context.Context, to, subject, body string) {
	if _, err := d.client.EnqueueSendEmail(ctx, SendEmailPayload{To: to, Subject: subject, Body: body}); err != nil {
		d.logger.Warn("enqueue email failed", slog.String("to", to), slog.Any("error", err))
	}
}
