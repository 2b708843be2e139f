package services

import (
	"context"

	"github.com/baharkarakas/adledger/internal/models"
)

// Notifier is the part of notify.Notifier the services depend on.
type Notifier interface {
	Prepare(ctx context.Context, u models.User, t models.NotificationType, params []any, extra map[string]any) (models.Notification, error)
}

// Submitter runs background work, typically a worker.Pool.
type Submitter interface {
	Submit(func()) error
}
