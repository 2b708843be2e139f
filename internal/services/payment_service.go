package services

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/adledger/internal/metrics"
	"github.com/baharkarakas/adledger/internal/models"
	repo "github.com/baharkarakas/adledger/internal/repository"
)

// PaymentService owns charges: creation, the gateway callback and the
// balance refill that follows a successful payment.
type PaymentService struct {
	charges  repo.Charges
	uow      repo.UnitOfWork
	notifier Notifier
	log      *slog.Logger
}

func NewPaymentService(c repo.Charges, uow repo.UnitOfWork, n Notifier, log *slog.Logger) *PaymentService {
	if log == nil {
		log = slog.Default()
	}
	return &PaymentService{charges: c, uow: uow, notifier: n, log: log}
}

func (s *PaymentService) CreateCharge(ctx context.Context, userID string, amount decimal.Decimal, p models.Provider) (models.Charge, error) {
	if !amount.IsPositive() {
		return models.Charge{}, ErrInvalidAmount
	}
	if !p.Valid() {
		return models.Charge{}, ErrInvalidProvider
	}
	return s.charges.Create(ctx, models.Charge{
		UserID:   userID,
		Amount:   amount,
		Provider: p,
		Status:   models.ChargePending,
	})
}

func (s *PaymentService) GetCharge(ctx context.Context, id string) (models.Charge, error) {
	return s.charges.GetByID(ctx, id)
}

// CompleteCharge handles the gateway's completion signal and settles the
// charge in the same unit of work. Only a pending charge takes the signalled
// outcome; later signals leave the status alone and only re-run the
// idempotent settlement.
func (s *PaymentService) CompleteCharge(ctx context.Context, id string, paid bool) (models.Charge, bool, error) {
	return s.settle(ctx, id, func(ctx context.Context, tx repo.Tx, c *models.Charge) error {
		if c.Status != models.ChargePending {
			if c.Status == models.ChargeSuccessful && !paid {
				s.log.Warn("failure signal for a successful charge ignored", "charge_id", c.ID)
			}
			return nil
		}
		c.Status, c.Paid = models.ChargeFailed, paid
		if paid {
			c.Status = models.ChargeSuccessful
		}
		return tx.SetChargeStatus(ctx, c.ID, c.Status, c.Paid)
	})
}

// SettleCharge credits the charge amount to its user exactly once. The guard
// (successful, paid, not yet refilled), the balance update, the refilled
// flag and the ledger entry share one unit of work holding the charge row
// lock, so concurrent or repeated calls credit once. A charge failing the
// guard is a no-op reported as credited=false.
func (s *PaymentService) SettleCharge(ctx context.Context, id string) (bool, error) {
	_, credited, err := s.settle(ctx, id, nil)
	return credited, err
}

type chargeStep func(ctx context.Context, tx repo.Tx, c *models.Charge) error

// settle locks the charge, runs before on it and applies the refill when the
// guard passes. The funds notification goes out after commit.
func (s *PaymentService) settle(ctx context.Context, id string, before chargeStep) (models.Charge, bool, error) {
	var (
		charge   models.Charge
		user     models.User
		credited bool
	)
	err := s.uow.WithTx(ctx, func(tx repo.Tx) error {
		var err error
		if charge, err = tx.ChargeForUpdate(ctx, id); err != nil {
			return err
		}
		if before != nil {
			if err := before(ctx, tx, &charge); err != nil {
				return err
			}
		}
		if !charge.Settleable() {
			return nil
		}
		if user, err = tx.UserForUpdate(ctx, charge.UserID); err != nil {
			return err
		}
		if user.Balance, err = tx.AddBalance(ctx, charge.UserID, charge.Amount); err != nil {
			return err
		}
		if err = tx.MarkChargeRefilled(ctx, charge.ID); err != nil {
			return err
		}
		if _, err = tx.AppendEntry(ctx, models.LedgerEntry{
			EventID: charge.SettlementEventID(),
			UserID:  charge.UserID,
			Amount:  charge.Amount,
			Kind:    models.EntryRefill,
		}); err != nil {
			return err
		}
		charge.BalanceRefilled, credited = true, true
		return nil
	})
	if err != nil {
		metrics.SettlementsTotal.WithLabelValues("failed").Inc()
		return models.Charge{}, false, classify("settle charge", err)
	}
	if !credited {
		metrics.SettlementsTotal.WithLabelValues("skipped").Inc()
		s.log.Debug("charge not settleable", "charge_id", id, "status", charge.Status, "paid", charge.Paid, "refilled", charge.BalanceRefilled)
		return charge, false, nil
	}

	metrics.SettlementsTotal.WithLabelValues("credited").Inc()
	metrics.LedgerEntriesTotal.WithLabelValues(string(models.EntryRefill)).Inc()
	s.log.Info("charge settled", "charge_id", charge.ID, "user_id", charge.UserID, "amount", charge.Amount.String())

	_, err = s.notifier.Prepare(ctx, user, models.NotifyFundsReceived,
		[]any{charge.Amount.StringFixed(2)},
		map[string]any{"charge_id": charge.ID, "amount": charge.Amount.StringFixed(2)})
	if err != nil {
		s.log.Error("funds received notification", "charge_id", charge.ID, "err", err)
	}
	return charge, true, nil
}
