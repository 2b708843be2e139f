package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/adledger/internal/models"
	repo "github.com/baharkarakas/adledger/internal/repository"
)

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()
	ledger, s, _ := newLedger(t)
	s.PutProduct(models.Product{Code: "main", BasePrice: nd("10"), FirstPackagePrice: nd("80"), SecondPackagePrice: nd("350")})
	s.PutProduct(models.Product{Code: models.DistributionCode, BasePrice: nd("1.5")})
	s.PutProduct(models.Product{Code: "broken"})
	seedUser(t, s, "u1", "100", true)
	orders := NewOrderService(s.Repositories().Products, ledger)

	e, err := orders.PlaceOrder(ctx, models.Order{EventID: "o1", UserID: "u1", ProductCode: "main", PeriodMonths: 3, ItemCount: 10})
	require.NoError(t, err)
	assert.True(t, dec("-80").Equal(e.Amount))
	assert.Equal(t, models.EntryProduct, e.Kind)

	e, err = orders.PlaceOrder(ctx, models.Order{EventID: "o2", UserID: "u1", ProductCode: models.DistributionCode, ItemCount: 5})
	require.NoError(t, err)
	assert.True(t, dec("-7.5").Equal(e.Amount))
	assertBalance(t, s, "u1", "12.5")

	_, err = orders.PlaceOrder(ctx, models.Order{EventID: "o3", UserID: "u1", ProductCode: "main", ItemCount: 10})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = orders.PlaceOrder(ctx, models.Order{EventID: "o4", UserID: "u1", ProductCode: "broken"})
	assert.ErrorIs(t, err, models.ErrInconsistentPricing)

	_, err = orders.PlaceOrder(ctx, models.Order{EventID: "o5", UserID: "u1", ProductCode: "nope"})
	assert.ErrorIs(t, err, repo.ErrNotFound)

	// replay of an accepted order
	e, err = orders.PlaceOrder(ctx, models.Order{EventID: "o1", UserID: "u1", ProductCode: "main", PeriodMonths: 3})
	require.NoError(t, err)
	assert.Equal(t, "o1", e.EventID)
	assertBalance(t, s, "u1", "12.5")
}
