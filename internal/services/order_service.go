package services

import (
	"context"
	"fmt"

	"github.com/baharkarakas/adledger/internal/models"
	repo "github.com/baharkarakas/adledger/internal/repository"
)

type OrderService struct {
	products repo.Products
	ledger   *LedgerService
}

func NewOrderService(p repo.Products, l *LedgerService) *OrderService {
	return &OrderService{products: p, ledger: l}
}

// PlaceOrder prices the order and charges it to the user's balance as a
// product entry. The order's EventID makes resubmission safe.
func (s *OrderService) PlaceOrder(ctx context.Context, o models.Order) (models.LedgerEntry, error) {
	if o.EventID == "" || o.UserID == "" {
		return models.LedgerEntry{}, ErrInvalidEvent
	}
	p, err := s.products.GetByCode(ctx, o.ProductCode)
	if err != nil {
		return models.LedgerEntry{}, fmt.Errorf("product %q: %w", o.ProductCode, err)
	}
	price, err := o.Price(p)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	if !price.IsPositive() {
		return models.LedgerEntry{}, fmt.Errorf("%w: price %s for %q", models.ErrInconsistentPricing, price, p.Code)
	}
	return s.ledger.RecordEvent(ctx, Event{
		EventID: o.EventID,
		UserID:  o.UserID,
		Amount:  price.Neg(),
		Kind:    models.EntryProduct,
	})
}
