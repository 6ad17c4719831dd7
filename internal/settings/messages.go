package settings

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sobitas/backoffice/internal/shared"
)

// MessagesReader is the subset of Repository used by Messages.
type MessagesReader interface {
	GetMessageTemplates(ctx context.Context) (MessageTemplates, error)
}

// Messages resolves SMS templates, applying the stock welcome text when
// nothing is configured.
type Messages struct {
	repo   MessagesReader
	logger *slog.Logger
}

// NewMessages constructs Messages.
func NewMessages(repo MessagesReader, logger *slog.Logger) *Messages {
	return &Messages{repo: repo, logger: logger}
}

// Templates returns the configured templates. A missing row yields only the
// default welcome message; the other templates stay empty, which suppresses
// the corresponding notifications.
func (m *Messages) Templates(ctx context.Context) MessageTemplates {
	templates, err := m.repo.GetMessageTemplates(ctx)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) && m.logger != nil {
			m.logger.Warn("message templates lookup failed", slog.Any("error", err))
		}
		return MessageTemplates{Welcome: DefaultWelcomeMessage}
	}
	if templates.Welcome == "" {
		templates.Welcome = DefaultWelcomeMessage
	}
	return templates
}
