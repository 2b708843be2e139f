package services

import (
	"context"

	"github.com/baharkarakas/adledger/internal/models"
	repo "github.com/baharkarakas/adledger/internal/repository"
)

// ScreenHandler describes what a banner screen links to. Screens with
// External set open an object and must carry its id.
type ScreenHandler struct {
	Name     string
	External bool
	Exists   func(ctx context.Context, id int64) (bool, error)
}

type ScreenRegistry map[models.Screen]ScreenHandler

func NewScreenRegistry(l repo.Listings) ScreenRegistry {
	return ScreenRegistry{
		models.ScreenHome:    {Name: "home"},
		models.ScreenAd:      {Name: "ad", External: true, Exists: l.AdExists},
		models.ScreenService: {Name: "service", External: true, Exists: l.ServiceExists},
	}
}

// Validate checks the screen / external id pair of a banner.
func (r ScreenRegistry) Validate(ctx context.Context, screen models.Screen, externalID *int64) error {
	if screen == models.ScreenNone {
		if externalID != nil {
			return ErrInvalidScreen
		}
		return nil
	}
	h, ok := r[screen]
	if !ok {
		return ErrInvalidScreen
	}
	if !h.External {
		if externalID != nil {
			return ErrInvalidScreen
		}
		return nil
	}
	if externalID == nil {
		return ErrObjectNotFound
	}
	exists, err := h.Exists(ctx, *externalID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrObjectNotFound
	}
	return nil
}
