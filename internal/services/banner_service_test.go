package services

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/adledger/internal/models"
	"github.com/baharkarakas/adledger/internal/repository/memory"
)

func newBanners(t *testing.T) (*BannerService, *memory.Store) {
	t.Helper()
	s := memory.New()
	r := s.Repositories()
	return NewBannerService(r.Banners, NewScreenRegistry(r.Listings), rand.New(rand.NewSource(7)), nil), s
}

func TestPickNothingToShow(t *testing.T) {
	svc, _ := newBanners(t)
	_, ok, err := svc.Pick(context.Background(), models.PlaceHeader)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPickUnknownPlace(t *testing.T) {
	svc, _ := newBanners(t)
	_, _, err := svc.Pick(context.Background(), models.Place("footer"))
	assert.ErrorIs(t, err, ErrUnknownPlace)
}

func TestPickFallsBackToDefaults(t *testing.T) {
	svc, s := newBanners(t)
	s.PutBanner(models.Banner{ID: "d1", Place: models.PlaceHeader, IsDefault: true, IsShown: true})
	s.PutBanner(models.Banner{ID: "d2", Place: models.PlaceHeader, IsDefault: true, IsShown: true, Ordering: 1})
	s.PutBanner(models.Banner{ID: "other", Place: models.PlaceColumn, IsDefault: true})

	seen := map[string]int{}
	for i := 0; i < 200; i++ {
		b, ok, err := svc.Pick(context.Background(), models.PlaceHeader)
		require.NoError(t, err)
		require.True(t, ok)
		seen[b.ID]++
	}
	assert.Len(t, seen, 2)
	assert.NotContains(t, seen, "other")
}

func TestPickPaidOrderConsumesImpressions(t *testing.T) {
	ctx := context.Background()
	svc, s := newBanners(t)
	s.PutBanner(models.Banner{ID: "paid", Place: models.PlaceColumn, IsShown: true})
	s.PutBanner(models.Banner{ID: "fallback", Place: models.PlaceColumn, IsDefault: true})
	s.PutBannerOrder(models.BannerOrder{ID: "o1", BannerID: "paid", ShowRatio: 3, Checked: true, IsShown: true, Left: 2})
	s.PutBannerOrder(models.BannerOrder{ID: "o2", BannerID: "paid", ShowRatio: 9, Checked: false, IsShown: true, Left: 5})

	for i := 0; i < 2; i++ {
		b, ok, err := svc.Pick(ctx, models.PlaceColumn)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "paid", b.ID)
	}

	// o1 is used up and o2 is unchecked, so defaults take over
	b, ok, err := svc.Pick(ctx, models.PlaceColumn)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fallback", b.ID)
}

func TestValidateBannerScreens(t *testing.T) {
	ctx := context.Background()
	svc, s := newBanners(t)
	s.PutAd(42)
	s.PutService(7)
	id := func(v int64) *int64 { return &v }

	cases := []struct {
		name   string
		banner models.Banner
		want   error
	}{
		{"no screen", models.Banner{Place: models.PlaceHeader}, nil},
		{"home", models.Banner{Place: models.PlaceHeader, Screen: models.ScreenHome}, nil},
		{"home with id", models.Banner{Place: models.PlaceHeader, Screen: models.ScreenHome, ExternalID: id(1)}, ErrInvalidScreen},
		{"none with id", models.Banner{Place: models.PlaceHeader, ExternalID: id(1)}, ErrInvalidScreen},
		{"ad exists", models.Banner{Place: models.PlaceHeader, Screen: models.ScreenAd, ExternalID: id(42)}, nil},
		{"ad missing", models.Banner{Place: models.PlaceHeader, Screen: models.ScreenAd, ExternalID: id(43)}, ErrObjectNotFound},
		{"ad without id", models.Banner{Place: models.PlaceHeader, Screen: models.ScreenAd}, ErrObjectNotFound},
		{"service exists", models.Banner{Place: models.PlaceColumn, Screen: models.ScreenService, ExternalID: id(7)}, nil},
		{"service is not an ad", models.Banner{Place: models.PlaceColumn, Screen: models.ScreenService, ExternalID: id(42)}, ErrObjectNotFound},
		{"unknown screen", models.Banner{Place: models.PlaceColumn, Screen: models.Screen(9)}, ErrInvalidScreen},
		{"unknown place", models.Banner{Place: "footer"}, ErrUnknownPlace},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Validate(ctx, tc.banner)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
