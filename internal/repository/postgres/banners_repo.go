package postgres

import (
	"context"

	"github.com/baharkarakas/adledger/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type bannersRepo struct{ pool *pgxpool.Pool }

const bannerColumns = `b.id, b.place, b.image_url, b.is_default, b.is_shown, b.screen, b.external_id, b.ordering`

func scanBanner(row pgx.Row) (models.Banner, error) {
	var b models.Banner
	err := row.Scan(&b.ID, &b.Place, &b.ImageURL, &b.IsDefault, &b.IsShown, &b.Screen, &b.ExternalID, &b.Ordering)
	return b, notFound(err)
}

func (r *bannersRepo) Eligible(ctx context.Context, place models.Place) ([]models.BannerOrder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT o.id, o.banner_id, o.user_id, o.show_ratio, o.checked, o.left_impressions, o.is_shown
		   FROM banner_orders o
		   JOIN banners b ON b.id = o.banner_id
		  WHERE o.checked AND o.is_shown AND o.left_impressions > 0
		    AND b.place = $1
		  ORDER BY o.id`,
		place,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BannerOrder
	for rows.Next() {
		var o models.BannerOrder
		if err := rows.Scan(&o.ID, &o.BannerID, &o.UserID, &o.ShowRatio, &o.Checked, &o.Left, &o.IsShown); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *bannersRepo) Defaults(ctx context.Context, place models.Place) ([]models.Banner, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bannerColumns+` FROM banners b WHERE b.is_default AND b.place=$1 ORDER BY b.ordering`,
		place,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Banner
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *bannersRepo) GetByID(ctx context.Context, id string) (models.Banner, error) {
	return scanBanner(r.pool.QueryRow(ctx, `SELECT `+bannerColumns+` FROM banners b WHERE b.id=$1`, id))
}

func (r *bannersRepo) ConsumeImpression(ctx context.Context, orderID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE banner_orders SET left_impressions = left_impressions - 1
		  WHERE id=$1 AND left_impressions > 0`,
		orderID,
	)
	return err
}
