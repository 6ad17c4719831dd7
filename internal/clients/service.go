package clients

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/sobitas/backoffice/internal/notify"
	"github.com/sobitas/backoffice/internal/settings"
	"github.com/sobitas/backoffice/internal/shared"
)

// TemplateProvider resolves the SMS templates used for client messages.
type TemplateProvider interface {
	Templates(ctx context.Context) settings.MessageTemplates
}

type Service struct {
	repo       Repository
	dispatcher notify.Dispatcher
	templates  TemplateProvider
	validate   *validator.Validate
	logger     *slog.Logger
}

func NewService(repo Repository, dispatcher notify.Dispatcher, templates TemplateProvider, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		templates:  templates,
		validate:   validator.New(),
		logger:     logger,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}
	return s.repo.List(ctx, req)
}

// Create stores a new client and greets them by SMS when a primary
// phone number was provided. The greeting is best effort.
func (s *Service) Create(ctx context.Context, req CreateClientRequest) (*Client, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}

	id, err := s.repo.Create(ctx, Client{
		Name:    req.Name,
		Address: req.Address,
		Phone1:  req.Phone1,
		Phone2:  req.Phone2,
		TaxID:   req.TaxID,
	})
	if err != nil {
		return nil, err
	}

	if req.Phone1 != nil && *req.Phone1 != "" {
		s.sendWelcome(ctx, *req.Phone1)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateClientRequest) (*Client, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Phone1 != nil {
		updates["phone1"] = *req.Phone1
	}
	if req.Phone2 != nil {
		updates["phone2"] = *req.Phone2
	}
	if req.TaxID != nil {
		updates["tax_id"] = *req.TaxID
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) sendWelcome(ctx context.Context, phone string) {
	normalized := notify.NormalizePhone(phone)
	if normalized == "" {
		s.logger.Warn("skipping welcome sms, unusable phone", slog.String("phone", phone))
		return
	}
	body := s.templates.Templates(ctx).Welcome
	if body == "" {
		return
	}
	s.dispatcher.SMS(ctx, normalized, body)
}
