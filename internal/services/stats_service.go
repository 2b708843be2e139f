package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/baharkarakas/adledger/internal/models"
	repo "github.com/baharkarakas/adledger/internal/repository"
)

const dailyPaymentsKey = "stats:payments:daily"

// Cache stores JSON-encodable read models. cache.Redis implements it.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}

type StatsService struct {
	charges repo.Charges
	cache   Cache
	ttl     time.Duration
	log     *slog.Logger
}

// NewStatsService builds the admin statistics reader. A nil cache or a
// non-positive ttl disables caching.
func NewStatsService(c repo.Charges, cache Cache, ttl time.Duration, log *slog.Logger) *StatsService {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		cache = nil
	}
	return &StatsService{charges: c, cache: cache, ttl: ttl, log: log}
}

// DailyPayments sums successful charges per UTC day, oldest first. A cache
// outage falls through to the repository.
func (s *StatsService) DailyPayments(ctx context.Context) ([]models.DailyTotal, error) {
	if s.cache != nil {
		var cached []models.DailyTotal
		hit, err := s.cache.Get(ctx, dailyPaymentsKey, &cached)
		if err != nil {
			s.log.Warn("stats cache get", "key", dailyPaymentsKey, "err", err)
		} else if hit {
			return cached, nil
		}
	}

	days, err := s.charges.DailyTotals(ctx)
	if err != nil {
		return nil, err
	}
	if days == nil {
		days = []models.DailyTotal{}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, dailyPaymentsKey, days, s.ttl); err != nil {
			s.log.Warn("stats cache set", "key", dailyPaymentsKey, "err", err)
		}
	}
	return days, nil
}
