package services

import (
	"context"
	"log/slog"

	"github.com/baharkarakas/adledger/internal/metrics"
	"github.com/baharkarakas/adledger/internal/models"
	repo "github.com/baharkarakas/adledger/internal/repository"
	"github.com/baharkarakas/adledger/internal/selector"
)

type BannerService struct {
	banners repo.Banners
	screens ScreenRegistry
	rng     selector.Rand
	log     *slog.Logger
}

// NewBannerService uses selector.Default when rng is nil.
func NewBannerService(b repo.Banners, screens ScreenRegistry, rng selector.Rand, log *slog.Logger) *BannerService {
	if rng == nil {
		rng = selector.Default
	}
	if log == nil {
		log = slog.Default()
	}
	return &BannerService{banners: b, screens: screens, rng: rng, log: log}
}

// Pick chooses the banner to show at place. ok is false when neither a paid
// order nor a default banner is available. Showing a paid order uses up one
// of its impressions.
func (s *BannerService) Pick(ctx context.Context, place models.Place) (models.Banner, bool, error) {
	if !place.Valid() {
		return models.Banner{}, false, ErrUnknownPlace
	}
	orders, err := s.banners.Eligible(ctx, place)
	if err != nil {
		return models.Banner{}, false, err
	}
	candidates := make([]models.Candidate, 0, len(orders))
	for _, o := range orders {
		candidates = append(candidates, o.Candidate())
	}

	var defaults []models.Candidate
	byID := map[string]models.Banner{}
	if len(candidates) == 0 {
		banners, err := s.banners.Defaults(ctx, place)
		if err != nil {
			return models.Banner{}, false, err
		}
		for _, b := range banners {
			byID[b.ID] = b
			defaults = append(defaults, b.Candidate())
		}
	}

	c, ok := selector.Select(s.rng, candidates, defaults)
	if !ok {
		metrics.BannerSelections.WithLabelValues(string(place), "none").Inc()
		return models.Banner{}, false, nil
	}
	if c.IsDefault {
		metrics.BannerSelections.WithLabelValues(string(place), "default").Inc()
		return byID[c.BannerID], true, nil
	}

	b, err := s.banners.GetByID(ctx, c.BannerID)
	if err != nil {
		return models.Banner{}, false, err
	}
	if err := s.banners.ConsumeImpression(ctx, c.OrderID); err != nil {
		s.log.Warn("consume impression", "order_id", c.OrderID, "err", err)
	}
	metrics.BannerSelections.WithLabelValues(string(place), "order").Inc()
	return b, true, nil
}

// Validate checks a banner before it is saved.
func (s *BannerService) Validate(ctx context.Context, b models.Banner) error {
	if !b.Place.Valid() {
		return ErrUnknownPlace
	}
	return s.screens.Validate(ctx, b.Screen, b.ExternalID)
}
