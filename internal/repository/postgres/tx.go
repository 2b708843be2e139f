package postgres

import (
	"context"

	"github.com/baharkarakas/adledger/internal/models"
	repo "github.com/baharkarakas/adledger/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type unitOfWork struct{ pool *pgxpool.Pool }

// WithTx runs fn in one read-committed transaction. Callers serialise on the
// rows they lock with the ForUpdate methods.
func (u *unitOfWork) WithTx(ctx context.Context, fn func(repo.Tx) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(&pgTx{tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct{ tx pgx.Tx }

func (t *pgTx) ChargeForUpdate(ctx context.Context, id string) (models.Charge, error) {
	return scanCharge(t.tx.QueryRow(ctx, `SELECT `+chargeColumns+` FROM charges WHERE id=$1 FOR UPDATE`, id))
}

func (t *pgTx) MarkChargeRefilled(ctx context.Context, id string) error {
	tag, err := t.tx.Exec(ctx, `UPDATE charges SET balance_refilled=true, updated_at=now() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (t *pgTx) SetChargeStatus(ctx context.Context, id string, status models.ChargeStatus, paid bool) error {
	tag, err := t.tx.Exec(ctx, `UPDATE charges SET status=$2, paid=$3, updated_at=now() WHERE id=$1`, id, status, paid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (t *pgTx) UserForUpdate(ctx context.Context, id string) (models.User, error) {
	return scanUser(t.tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1 FOR UPDATE`, id))
}

func (t *pgTx) AddBalance(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := t.tx.QueryRow(ctx,
		`UPDATE users
		    SET balance = balance + $2,
		        updated_at = now()
		  WHERE id = $1
		  RETURNING balance`,
		userID, delta,
	).Scan(&bal)
	return bal, notFound(err)
}

func (t *pgTx) EntryByEvent(ctx context.Context, userID, eventID string) (models.LedgerEntry, bool, error) {
	e, err := scanEntry(t.tx.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM ledger_entries WHERE user_id=$1 AND event_id=$2`, userID, eventID))
	if err == repo.ErrNotFound {
		return models.LedgerEntry{}, false, nil
	}
	if err != nil {
		return models.LedgerEntry{}, false, err
	}
	return e, true, nil
}

func (t *pgTx) AppendEntry(ctx context.Context, e models.LedgerEntry) (models.LedgerEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	out, err := scanEntry(t.tx.QueryRow(ctx,
		`INSERT INTO ledger_entries(id, event_id, user_id, amount, kind)
		 VALUES($1,$2,$3,$4,$5)
		 ON CONFLICT (user_id, event_id) DO NOTHING
		 RETURNING `+entryColumns,
		e.ID, e.EventID, e.UserID, e.Amount, e.Kind,
	))
	if err == repo.ErrNotFound {
		return models.LedgerEntry{}, repo.ErrDuplicateEvent
	}
	return out, err
}

func (t *pgTx) DistributionForUpdate(ctx context.Context, id string) (models.Distribution, error) {
	return scanDistribution(t.tx.QueryRow(ctx, `SELECT `+distributionColumns+` FROM distributions WHERE id=$1 FOR UPDATE`, id))
}

func (t *pgTx) SetDistributionStatus(ctx context.Context, id string, status models.DistributionStatus) error {
	_, err := t.tx.Exec(ctx, `UPDATE distributions SET status=$2, updated_at=now() WHERE id=$1`, id, status)
	return err
}

var _ repo.Tx = (*pgTx)(nil)
