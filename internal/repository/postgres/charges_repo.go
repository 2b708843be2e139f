package postgres

import (
	"context"
	"time"

	"github.com/baharkarakas/adledger/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type chargesRepo struct{ pool *pgxpool.Pool }

const chargeColumns = `id, user_id, amount, provider, status, paid, balance_refilled, created_at, updated_at`

func scanCharge(row pgx.Row) (models.Charge, error) {
	var c models.Charge
	err := row.Scan(&c.ID, &c.UserID, &c.Amount, &c.Provider, &c.Status, &c.Paid, &c.BalanceRefilled, &c.CreatedAt, &c.UpdatedAt)
	return c, notFound(err)
}

func (r *chargesRepo) Create(ctx context.Context, c models.Charge) (models.Charge, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = models.ChargePending
	}
	return scanCharge(r.pool.QueryRow(ctx,
		`INSERT INTO charges(id, user_id, amount, provider, status, paid)
		 VALUES($1,$2,$3,$4,$5,$6)
		 RETURNING `+chargeColumns,
		c.ID, c.UserID, c.Amount, c.Provider, c.Status, c.Paid,
	))
}

func (r *chargesRepo) GetByID(ctx context.Context, id string) (models.Charge, error) {
	return scanCharge(r.pool.QueryRow(ctx, `SELECT `+chargeColumns+` FROM charges WHERE id=$1`, id))
}

func (r *chargesRepo) DailyTotals(ctx context.Context) ([]models.DailyTotal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, sum(amount), count(*)
		   FROM charges
		  WHERE status = 'successful'
		  GROUP BY day
		  ORDER BY day`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DailyTotal
	for rows.Next() {
		var t models.DailyTotal
		if err := rows.Scan(&t.Day, &t.Amount, &t.Count); err != nil {
			return nil, err
		}
		t.Day = time.Date(t.Day.Year(), t.Day.Month(), t.Day.Day(), 0, 0, 0, 0, time.UTC)
		out = append(out, t)
	}
	return out, rows.Err()
}
