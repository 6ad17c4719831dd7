package settings

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const taxRateCacheKey = "settings:tax_rate"

// SettingsReader is the subset of Repository used by TaxRates.
type SettingsReader interface {
	GetSettings(ctx context.Context) (Settings, error)
}

// TaxRates provides the single global VAT percentage. The rate is injected
// into the pricing layer rather than read from hidden global state; a short
// Redis cache keeps the settings row off the hot path.
type TaxRates struct {
	repo   SettingsReader
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewTaxRates constructs TaxRates. cache may be nil.
func NewTaxRates(repo SettingsReader, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *TaxRates {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &TaxRates{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// Current returns the configured VAT percentage, falling back to
// DefaultTaxRate when no settings row exists or the lookup fails.
func (t *TaxRates) Current(ctx context.Context) float64 {
	if t.cache != nil {
		if val, err := t.cache.Get(ctx, taxRateCacheKey).Result(); err == nil {
			if rate, err := strconv.ParseFloat(val, 64); err == nil {
				return rate
			}
		}
	}

	rate := DefaultTaxRate
	s, err := t.repo.GetSettings(ctx)
	if err == nil {
		rate = s.TaxRate
	} else if t.logger != nil {
		t.logger.Warn("tax rate lookup failed, using default", slog.Any("error", err))
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, taxRateCacheKey, strconv.FormatFloat(rate, 'f', -1, 64), t.ttl).Err(); err != nil && t.logger != nil {
			t.logger.Warn("tax rate cache write failed", slog.Any("error", err))
		}
	}
	return rate
}
