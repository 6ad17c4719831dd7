package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/sobitas/backoffice/internal/notify"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendSMS is the task type for client SMS delivery.
	TaskTypeSendSMS = "sms:send"
	// TaskTypeSendEmail is the task type for transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// SendSMSPayload carries one SMS. The phone is already normalized to
// the 216XXXXXXXX form the gateway expects.
type SendSMSPayload struct {
	Phone string `json:"phone"`
	Body  string `json:"body"`
}

// SendEmailPayload carries one plain-text email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendSMSTask constructs an Asynq task.
func NewSendSMSTask(payload SendSMSPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendSMS, data), nil
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewSendSMSHandler processes TaskTypeSendSMS tasks through the gateway.
func NewSendSMSHandler(sender notify.SMSSender, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendSMSPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if err := sender.Send(ctx, payload.Phone, payload.Body); err != nil {
			logger.Warn("sms delivery failed", slog.String("phone", payload.Phone), slog.Any("error", err))
			return err
		}
		return nil
	}
}

// NewSendEmailHandler processes TaskTypeSendEmail tasks through SMTP.
func NewSendEmailHandler(sender notify.EmailSender, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if err := sender.Send(ctx, payload.To, payload.Subject, payload.Body); err != nil {
			logger.Warn("email delivery failed", slog.String("to", payload.To), slog.Any("error", err))
			return err
		}
		return nil
	}
}
