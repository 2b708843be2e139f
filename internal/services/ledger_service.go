package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/adledger/internal/metrics"
	"github.com/baharkarakas/adledger/internal/models"
	repo "github.com/baharkarakas/adledger/internal/repository"
)

// Event is one balance-affecting fact. EventID identifies it across retries.
type Event struct {
	EventID string
	UserID  string
	Amount  decimal.Decimal
	Kind    models.EntryKind
}

type LedgerService struct {
	uow      repo.UnitOfWork
	ledger   repo.Ledger
	notifier Notifier
	log      *slog.Logger
}

func NewLedgerService(uow repo.UnitOfWork, l repo.Ledger, n Notifier, log *slog.Logger) *LedgerService {
	if log == nil {
		log = slog.Default()
	}
	return &LedgerService{uow: uow, ledger: l, notifier: n, log: log}
}

// RecordEvent appends a ledger entry and applies its amount to the user's
// balance in one unit of work. Event ids are scoped to the user. Replaying
// an EventID with the same kind and amount returns the stored entry and
// changes nothing; reusing it for a different change is ErrEventConflict.
// Product entries may not take the balance below zero.
func (s *LedgerService) RecordEvent(ctx context.Context, ev Event) (models.LedgerEntry, error) {
	if ev.EventID == "" || ev.UserID == "" || !ev.Kind.Valid() || ev.Kind == models.EntryRefill {
		return models.LedgerEntry{}, ErrInvalidEvent
	}
	if ev.Amount.IsZero() {
		return models.LedgerEntry{}, fmt.Errorf("%w: zero amount", ErrInvalidEvent)
	}

	var (
		entry  models.LedgerEntry
		user   models.User
		replay bool
	)
	err := s.uow.WithTx(ctx, func(tx repo.Tx) error {
		var err error
		if user, err = tx.UserForUpdate(ctx, ev.UserID); err != nil {
			return err
		}
		if prev, ok, err := tx.EntryByEvent(ctx, ev.UserID, ev.EventID); err != nil {
			return err
		} else if ok {
			if prev.Kind != ev.Kind || !prev.Amount.Equal(ev.Amount) {
				return fmt.Errorf("%w: %s", ErrEventConflict, ev.EventID)
			}
			entry, replay = prev, true
			return nil
		}
		if ev.Kind == models.EntryProduct && user.Balance.Add(ev.Amount).IsNegative() {
			return ErrInsufficientBalance
		}
		if user.Balance, err = tx.AddBalance(ctx, ev.UserID, ev.Amount); err != nil {
			return err
		}
		entry, err = tx.AppendEntry(ctx, models.LedgerEntry{
			EventID: ev.EventID,
			UserID:  ev.UserID,
			Amount:  ev.Amount,
			Kind:    ev.Kind,
		})
		return err
	})
	if err != nil {
		return models.LedgerEntry{}, classify("record ledger event", err)
	}
	if replay {
		s.log.Debug("ledger event replayed", "event_id", ev.EventID)
		return entry, nil
	}

	metrics.LedgerEntriesTotal.WithLabelValues(string(entry.Kind)).Inc()
	if entry.Kind.NotifiesBalanceChange() && user.NotifyBalanceChange {
		_, err := s.notifier.Prepare(ctx, user, models.NotifyBalanceChanged,
			[]any{entry.Amount.StringFixed(2)},
			map[string]any{
				"event_id": entry.EventID,
				"kind":     string(entry.Kind),
				"balance":  user.Balance.StringFixed(2),
			})
		if err != nil {
			s.log.Error("balance change notification", "user_id", user.ID, "err", err)
		}
	}
	return entry, nil
}

// AdjustBalances applies the same manual change to every listed user. Each
// user gets the event id "<eventID>:<userID>", so a failed batch can be
// resubmitted whole.
func (s *LedgerService) AdjustBalances(ctx context.Context, eventID string, userIDs []string, change decimal.Decimal) ([]models.LedgerEntry, error) {
	if eventID == "" {
		return nil, ErrInvalidEvent
	}
	ids := distinct(userIDs)
	out := make([]models.LedgerEntry, 0, len(ids))
	for _, uid := range ids {
		e, err := s.RecordEvent(ctx, Event{
			EventID: eventID + ":" + uid,
			UserID:  uid,
			Amount:  change,
			Kind:    models.EntryAdminAdjustment,
		})
		if err != nil {
			return out, fmt.Errorf("adjust %s: %w", uid, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Repay credits amount back to the user.
func (s *LedgerService) Repay(ctx context.Context, eventID, userID string, amount decimal.Decimal) (models.LedgerEntry, error) {
	if !amount.IsPositive() {
		return models.LedgerEntry{}, ErrInvalidAmount
	}
	return s.RecordEvent(ctx, Event{EventID: eventID, UserID: userID, Amount: amount, Kind: models.EntryRepayment})
}

func (s *LedgerService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.LedgerEntry, error) {
	return s.ledger.ListByUser(ctx, userID, limit, offset)
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
