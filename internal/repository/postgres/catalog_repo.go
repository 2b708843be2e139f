package postgres

import (
	"context"

	"github.com/baharkarakas/adledger/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productsRepo struct{ pool *pgxpool.Pool }

func (r *productsRepo) GetByCode(ctx context.Context, code string) (models.Product, error) {
	var p models.Product
	err := r.pool.QueryRow(ctx,
		`SELECT code, name, base_price, first_package_price, second_package_price
		   FROM products WHERE code=$1`, code,
	).Scan(&p.Code, &p.Name, &p.BasePrice, &p.FirstPackagePrice, &p.SecondPackagePrice)
	return p, notFound(err)
}

type distributionsRepo struct{ pool *pgxpool.Pool }

const distributionColumns = `id, user_id, message, status, specializations, country, city, pro_only, created_at, updated_at`

func scanDistribution(row pgx.Row) (models.Distribution, error) {
	var d models.Distribution
	err := row.Scan(&d.ID, &d.UserID, &d.Message, &d.Status,
		&d.Specializations, &d.Country, &d.City, &d.ProOnly, &d.CreatedAt, &d.UpdatedAt)
	return d, notFound(err)
}

func (r *distributionsRepo) Create(ctx context.Context, d models.Distribution) (models.Distribution, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = models.DistributionPending
	}
	if d.Specializations == nil {
		d.Specializations = []string{}
	}
	return scanDistribution(r.pool.QueryRow(ctx,
		`INSERT INTO distributions(id, user_id, message, status, specializations, country, city, pro_only)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING `+distributionColumns,
		d.ID, d.UserID, d.Message, d.Status, d.Specializations, d.Country, d.City, d.ProOnly,
	))
}

func (r *distributionsRepo) GetByID(ctx context.Context, id string) (models.Distribution, error) {
	return scanDistribution(r.pool.QueryRow(ctx, `SELECT `+distributionColumns+` FROM distributions WHERE id=$1`, id))
}

type listingsRepo struct{ pool *pgxpool.Pool }

func (r *listingsRepo) AdExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM ads WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

func (r *listingsRepo) ServiceExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM service_offers WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}
