package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DistributionCode is the product sold per recipient rather than in packages.
const DistributionCode = "distr"

var (
	ErrInconsistentPricing = errors.New("inconsistent pricing state")
	ErrInvalidTier         = errors.New("invalid pricing tier")
)

type Product struct {
	Code               string              `json:"code"`
	Name               string              `json:"name"`
	BasePrice          decimal.NullDecimal `json:"base_price"`
	FirstPackagePrice  decimal.NullDecimal `json:"first_package_price"`
	SecondPackagePrice decimal.NullDecimal `json:"second_package_price"`
}

// Order is a purchase request. Zero PeriodMonths / ItemCount means the tier
// is not set.
type Order struct {
	EventID      string `json:"event_id"`
	UserID       string `json:"user_id"`
	ProductCode  string `json:"product_code"`
	PeriodMonths int    `json:"period_months,omitempty"`
	ItemCount    int    `json:"item_count,omitempty"`
}

// Price resolves the order price. Exactly one branch applies, in this order:
// period tier, item-count tier (packaged products), per-item price for the
// distribution product, base price.
func (o Order) Price(p Product) (decimal.Decimal, error) {
	switch {
	case o.PeriodMonths != 0:
		return p.periodPrice(o.PeriodMonths)
	case o.ItemCount != 0 && p.Code != DistributionCode:
		return p.itemPrice(o.ItemCount)
	case o.ItemCount != 0:
		if o.ItemCount < 0 {
			return decimal.Zero, fmt.Errorf("%w: item count %d", ErrInvalidTier, o.ItemCount)
		}
		base, err := resolved(p.BasePrice, "base")
		if err != nil {
			return decimal.Zero, err
		}
		return base.Mul(decimal.NewFromInt(int64(o.ItemCount))), nil
	default:
		return resolved(p.BasePrice, "base")
	}
}

func (p Product) periodPrice(months int) (decimal.Decimal, error) {
	switch months {
	case 1:
		return resolved(p.BasePrice, "1 month")
	case 3:
		return resolved(p.FirstPackagePrice, "3 months")
	case 6:
		return resolved(p.SecondPackagePrice, "6 months")
	}
	return decimal.Zero, fmt.Errorf("%w: period %d months", ErrInvalidTier, months)
}

func (p Product) itemPrice(count int) (decimal.Decimal, error) {
	switch count {
	case 1:
		return resolved(p.BasePrice, "1 item")
	case 10:
		return resolved(p.FirstPackagePrice, "10 items")
	case 50:
		return resolved(p.SecondPackagePrice, "50 items")
	}
	return decimal.Zero, fmt.Errorf("%w: %d items", ErrInvalidTier, count)
}

func resolved(d decimal.NullDecimal, tier string) (decimal.Decimal, error) {
	if !d.Valid {
		return decimal.Zero, fmt.Errorf("%w: no %s price", ErrInconsistentPricing, tier)
	}
	return d.Decimal, nil
}
