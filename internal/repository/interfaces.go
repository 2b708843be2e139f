package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/adledger/internal/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEvent = errors.New("duplicate ledger event")
)

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// Recipients lists the users an approved distribution reaches, see
	// models.Distribution.Reaches.
	Recipients(ctx context.Context, d models.Distribution) ([]models.User, error)
}

type Charges interface {
	Create(ctx context.Context, c models.Charge) (models.Charge, error)
	GetByID(ctx context.Context, id string) (models.Charge, error)
	// DailyTotals sums successful charges per UTC day, oldest first.
	DailyTotals(ctx context.Context) ([]models.DailyTotal, error)
}

type Ledger interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.LedgerEntry, error)
	// GetByEvent looks an event up within one user's ledger.
	GetByEvent(ctx context.Context, userID, eventID string) (models.LedgerEntry, error)
}

type Notifications interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkDelivered(ctx context.Context, id string) error
}

type Banners interface {
	// Eligible returns checked, shown orders with impressions left for place.
	Eligible(ctx context.Context, place models.Place) ([]models.BannerOrder, error)
	Defaults(ctx context.Context, place models.Place) ([]models.Banner, error)
	GetByID(ctx context.Context, id string) (models.Banner, error)
	ConsumeImpression(ctx context.Context, orderID string) error
}

type Products interface {
	GetByCode(ctx context.Context, code string) (models.Product, error)
}

type Distributions interface {
	Create(ctx context.Context, d models.Distribution) (models.Distribution, error)
	GetByID(ctx context.Context, id string) (models.Distribution, error)
}

// Listings answers whether objects a banner can link to exist.
type Listings interface {
	AdExists(ctx context.Context, id int64) (bool, error)
	ServiceExists(ctx context.Context, id int64) (bool, error)
}

// Tx is the write side of a unit of work. Rows read with a ForUpdate method
// stay locked until the unit of work ends.
type Tx interface {
	ChargeForUpdate(ctx context.Context, id string) (models.Charge, error)
	MarkChargeRefilled(ctx context.Context, id string) error
	// SetChargeStatus records the gateway outcome. It never touches
	// balance_refilled.
	SetChargeStatus(ctx context.Context, id string, status models.ChargeStatus, paid bool) error

	UserForUpdate(ctx context.Context, id string) (models.User, error)
	AddBalance(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error)

	// EntryByEvent reports ok=false when the user has no entry for eventID.
	// Event ids are unique per user.
	EntryByEvent(ctx context.Context, userID, eventID string) (models.LedgerEntry, bool, error)
	// AppendEntry fails with ErrDuplicateEvent when the user already has an
	// entry for eventID.
	AppendEntry(ctx context.Context, e models.LedgerEntry) (models.LedgerEntry, error)

	DistributionForUpdate(ctx context.Context, id string) (models.Distribution, error)
	SetDistributionStatus(ctx context.Context, id string, status models.DistributionStatus) error
}

// UnitOfWork runs fn atomically: every write in fn commits or none does.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(Tx) error) error
}

type Repositories struct {
	Users         Users
	Charges       Charges
	Ledger        Ledger
	Notifications Notifications
	Banners       Banners
	Products      Products
	Distributions Distributions
	Listings      Listings
	UoW           UnitOfWork
}
