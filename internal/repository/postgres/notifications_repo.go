package postgres

import (
	"context"

	"github.com/baharkarakas/adledger/internal/models"
	repo "github.com/baharkarakas/adledger/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type notificationsRepo struct{ pool *pgxpool.Pool }

const notificationColumns = `id, user_id, type, message, payload, is_read, delivered, created_at`

func scanNotification(row pgx.Row) (models.Notification, error) {
	var n models.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.Payload, &n.IsRead, &n.Delivered, &n.CreatedAt)
	return n, notFound(err)
}

func (r *notificationsRepo) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return scanNotification(r.pool.QueryRow(ctx,
		`INSERT INTO notifications(id, user_id, type, message, payload)
		 VALUES($1,$2,$3,$4,$5)
		 RETURNING `+notificationColumns,
		n.ID, n.UserID, n.Type, n.Message, n.Payload,
	))
}

func (r *notificationsRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+notificationColumns+`
		   FROM notifications
		  WHERE user_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *notificationsRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE user_id=$1 AND NOT is_read`, userID).Scan(&n)
	return n, err
}

func (r *notificationsRepo) MarkRead(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read=true WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *notificationsRepo) MarkDelivered(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET delivered=true WHERE id=$1`, id)
	return err
}
