package settings

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sobitas/backoffice/internal/shared"
)

type stubSettingsRepo struct {
	settings Settings
	err      error
	calls    int
}

func (s *stubSettingsRepo) GetSettings(ctx context.Context) (Settings, error) {
	s.calls++
	return s.settings, s.err
}

func newCacheClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCurrentReadsConfiguredRate(t *testing.T) {
	repo := &stubSettingsRepo{settings: Settings{TaxRate: 13}}
	rates := NewTaxRates(repo, nil, time.Minute, slog.Default())

	assert.InDelta(t, 13.0, rates.Current(context.Background()), 0.001)
}

func TestCurrentFallsBackToDefault(t *testing.T) {
	repo := &stubSettingsRepo{err: shared.ErrNotFound}
	rates := NewTaxRates(repo, nil, time.Minute, slog.Default())

	assert.InDelta(t, DefaultTaxRate, rates.Current(context.Background()), 0.001)
}

func TestCurrentFallsBackOnRepositoryError(t *testing.T) {
	repo := &stubSettingsRepo{err: errors.New("connection refused")}
	rates := NewTaxRates(repo, nil, time.Minute, slog.Default())

	assert.InDelta(t, DefaultTaxRate, rates.Current(context.Background()), 0.001)
}

func TestCurrentCachesRate(t *testing.T) {
	repo := &stubSettingsRepo{settings: Settings{TaxRate: 7}}
	rates := NewTaxRates(repo, newCacheClient(t), time.Minute, slog.Default())

	first := rates.Current(context.Background())
	second := rates.Current(context.Background())

	assert.InDelta(t, 7.0, first, 0.001)
	assert.InDelta(t, 7.0, second, 0.001)
	require.Equal(t, 1, repo.calls)
}

func TestTemplatesDefaultWelcome(t *testing.T) {
	repo := &stubMessagesRepo{err: shared.ErrNotFound}
	messages := NewMessages(repo, slog.Default())

	templates := messages.Templates(context.Background())
	assert.Equal(t, DefaultWelcomeMessage, templates.Welcome)
	assert.Empty(t, templates.OrderPlaced)
	assert.Empty(t, templates.StatusChanged)
}

func TestTemplatesConfigured(t *testing.T) {
	repo := &stubMessagesRepo{templates: MessageTemplates{
		Welcome:       "Bienvenue",
		OrderPlaced:   "Commande [num_commande] reçue",
		StatusChanged: "Commande [num_commande]: [etat]",
	}}
	messages := NewMessages(repo, slog.Default())

	templates := messages.Templates(context.Background())
	assert.Equal(t, "Bienvenue", templates.Welcome)
	assert.Equal(t, "Commande [num_commande] reçue", templates.OrderPlaced)
}

type stubMessagesRepo struct {
	templates MessageTemplates
	err       error
}

func (s *stubMessagesRepo) GetMessageTemplates(ctx context.Context) (MessageTemplates, error) {
	return s.templates, s.err
}
