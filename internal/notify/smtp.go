package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailSender delivers a single plain-text email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender pushes mail through a plain SMTP relay.
type SMTPSender struct {
	addr string
	from string
}

func NewSMTPSender(host string, port int, from string) *SMTPSender {
	return &SMTPSender{addr: fmt.Sprintf("%s:%d", host, port), from: from}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")
	if err := smtp.SendMail(s.addr, nil, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("notify: send mail: %w", err)
	}
	return nil
}
