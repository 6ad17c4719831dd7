package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sobitas/backoffice/internal/shared"
)

// Repository reads the settings and message-template tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetSettings returns the first settings row.
func (r *Repository) GetSettings(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `SELECT id, tax_rate, company_name, company_address, company_phone, company_tax_id
FROM settings ORDER BY id LIMIT 1`).
		Scan(&s.ID, &s.TaxRate, &s.CompanyName, &s.CompanyAddress, &s.CompanyPhone, &s.CompanyTaxID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, shared.ErrNotFound
		}
		return Settings{}, err
	}
	return s, nil
}

// GetMessageTemplates returns the first message-template row.
func (r *Repository) GetMessageTemplates(ctx context.Context) (MessageTemplates, error) {
	var m MessageTemplates
	err := r.pool.QueryRow(ctx, `SELECT welcome, order_placed, status_changed
FROM message_templates ORDER BY id LIMIT 1`).
		Scan(&m.Welcome, &m.OrderPlaced, &m.StatusChanged)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MessageTemplates{}, shared.ErrNotFound
		}
		return MessageTemplates{}, err
	}
	return m, nil
}
