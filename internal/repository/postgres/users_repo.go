package postgres

import (
	"context"

	"github.com/baharkarakas/adledger/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type usersRepo struct{ pool *pgxpool.Pool }

const userColumns = `id, email, display_name, role, balance, can_receive_notifications, notify_balance_change,
	notify_moderation, is_active, is_pro, country, city, specializations, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.Balance,
		&u.CanReceiveNotifications, &u.NotifyBalanceChange,
		&u.NotifyModeration, &u.IsActive, &u.IsPro, &u.Country, &u.City, &u.Specializations,
		&u.CreatedAt, &u.UpdatedAt)
	return u, notFound(err)
}

func collectUsers(rows pgx.Rows, err error) ([]models.User, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Specializations == nil {
		u.Specializations = []string{}
	}
	return scanUser(r.pool.QueryRow(ctx,
		`INSERT INTO users(id, email, display_name, role, balance, can_receive_notifications, notify_balance_change,
		                   notify_moderation, is_active, is_pro, country, city, specializations)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		 RETURNING `+userColumns,
		u.ID, u.Email, u.DisplayName, u.Role, u.Balance, u.CanReceiveNotifications, u.NotifyBalanceChange,
		u.NotifyModeration, u.IsActive, u.IsPro, u.Country, u.City, u.Specializations,
	))
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *usersRepo) List(ctx context.Context) ([]models.User, error) {
	return collectUsers(r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT 100`))
}

// Recipients mirrors models.Distribution.Reaches in SQL.
func (r *usersRepo) Recipients(ctx context.Context, d models.Distribution) ([]models.User, error) {
	specs := d.Specializations
	if specs == nil {
		specs = []string{}
	}
	return collectUsers(r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users
		  WHERE is_active AND role <> $1 AND id <> $2 AND created_at <= $3::timestamptz
		    AND (cardinality($4::text[]) = 0 OR specializations && $4::text[])
		    AND ($5::text = '' OR country = $5::text)
		    AND ($6::text = '' OR city = $6::text)
		    AND (NOT $7::boolean OR is_pro)
		  ORDER BY id`,
		models.RoleAdmin, d.UserID, d.CreatedAt, specs, d.Country, d.City, d.ProOnly,
	))
}
