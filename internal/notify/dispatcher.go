package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/baharkarakas/adledger/internal/models"
)

// Message is what leaves the service for push / mail workers.
type Message struct {
	NotificationID string                  `json:"notification_id,omitempty"`
	UserID         string                  `json:"user_id"`
	Type           models.NotificationType `json:"type"`
	Alert          string                  `json:"alert"`
	Badge          int                     `json:"badge"`
	Extra          map[string]any          `json:"extra,omitempty"`
}

func (m Message) Encode() ([]byte, error) { return json.Marshal(m) }

// Dispatcher delivers a message at least once. Implementations may block on
// the network; the Notifier always calls them off the request path.
type Dispatcher interface {
	Dispatch(ctx context.Context, m Message) error
}

// LogDispatcher only logs. Used in dev and when no bus is configured.
type LogDispatcher struct{ Log *slog.Logger }

func (d LogDispatcher) Dispatch(ctx context.Context, m Message) error {
	l := d.Log
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "notification", "user_id", m.UserID, "type", m.Type, "alert", m.Alert, "badge", m.Badge)
	return nil
}
