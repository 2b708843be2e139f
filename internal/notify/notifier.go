package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/baharkarakas/adledger/internal/metrics"
	"github.com/baharkarakas/adledger/internal/models"
	repo "github.com/baharkarakas/adledger/internal/repository"
)

// Submitter runs a job asynchronously. *worker.Pool satisfies it.
type Submitter interface {
	Submit(func()) error
}

// Notifier records notifications and hands them to a Dispatcher.
// Dispatch is best effort: its failures are logged and counted, never
// returned to the caller.
type Notifier struct {
	repo       repo.Notifications
	dispatcher Dispatcher
	submitter  Submitter
	catalog    Catalog
	log        *slog.Logger
	timeout    time.Duration
}

type Option func(*Notifier)

func WithCatalog(c Catalog) Option       { return func(n *Notifier) { n.catalog = c } }
func WithLogger(l *slog.Logger) Option   { return func(n *Notifier) { n.log = l } }
func WithTimeout(d time.Duration) Option { return func(n *Notifier) { n.timeout = d } }

func NewNotifier(r repo.Notifications, d Dispatcher, s Submitter, opts ...Option) *Notifier {
	n := &Notifier{
		repo:       r,
		dispatcher: d,
		submitter:  s,
		catalog:    DefaultCatalog,
		log:        slog.Default(),
		timeout:    10 * time.Second,
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Prepare renders a notification for u, stores it when its template says so
// and schedules dispatch when u accepts notifications. The returned error
// only covers rendering and storage.
func (n *Notifier) Prepare(ctx context.Context, u models.User, t models.NotificationType, params []any, extra map[string]any) (models.Notification, error) {
	msg, tpl, err := n.catalog.Render(t, params...)
	if err != nil {
		return models.Notification{}, err
	}
	note := models.Notification{
		UserID:  u.ID,
		Type:    t,
		Message: msg,
		Payload: extra,
	}
	if tpl.ShouldSave {
		if note, err = n.repo.Create(ctx, note); err != nil {
			return models.Notification{}, err
		}
	}
	if u.CanReceiveNotifications {
		n.schedule(note)
	}
	return note, nil
}

func (n *Notifier) schedule(note models.Notification) {
	err := n.submitter.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		n.deliver(ctx, note)
	})
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(note.Type), "dropped").Inc()
		n.log.Warn("notification not scheduled", "user_id", note.UserID, "type", note.Type, "err", err)
	}
}

func (n *Notifier) deliver(ctx context.Context, note models.Notification) {
	badge, err := n.repo.UnreadCount(ctx, note.UserID)
	if err != nil {
		n.log.Warn("unread count", "user_id", note.UserID, "err", err)
	}
	m := Message{
		NotificationID: note.ID,
		UserID:         note.UserID,
		Type:           note.Type,
		Alert:          note.Message,
		Badge:          badge,
		Extra:          note.Payload,
	}
	if err := n.dispatcher.Dispatch(ctx, m); err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(note.Type), "failed").Inc()
		n.log.Error("notification dispatch", "user_id", note.UserID, "type", note.Type, "err", err)
		return
	}
	metrics.NotificationsTotal.WithLabelValues(string(note.Type), "sent").Inc()
	if note.ID == "" {
		return
	}
	if err := n.repo.MarkDelivered(ctx, note.ID); err != nil {
		n.log.Warn("mark delivered", "notification_id", note.ID, "err", err)
	}
}

func (n *Notifier) List(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	return n.repo.ListByUser(ctx, userID, limit, offset)
}

func (n *Notifier) UnreadCount(ctx context.Context, userID string) (int, error) {
	return n.repo.UnreadCount(ctx, userID)
}

func (n *Notifier) MarkRead(ctx context.Context, userID, id string) error {
	return n.repo.MarkRead(ctx, userID, id)
}
