package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/adledger/internal/models"
	"github.com/baharkarakas/adledger/internal/repository/memory"
)

type sentNote struct {
	UserID string
	Type   models.NotificationType
	Params []any
	Extra  map[string]any
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNote
}

func (r *recordingNotifier) Prepare(_ context.Context, u models.User, t models.NotificationType, params []any, extra map[string]any) (models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNote{UserID: u.ID, Type: t, Params: params, Extra: extra})
	return models.Notification{UserID: u.ID, Type: t}, nil
}

func (r *recordingNotifier) all() []sentNote {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentNote(nil), r.sent...)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedUser(t *testing.T, s *memory.Store, id, balance string, notify bool) models.User {
	t.Helper()
	u, err := s.Repositories().Users.Create(context.Background(), models.User{
		ID:                      id,
		Email:                   id + "@example.com",
		Balance:                 dec(balance),
		CanReceiveNotifications: true,
		NotifyBalanceChange:     notify,
	})
	require.NoError(t, err)
	return u
}

func balanceOf(t *testing.T, s *memory.Store, id string) decimal.Decimal {
	t.Helper()
	u, err := s.Repositories().Users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u.Balance
}

func assertBalance(t *testing.T, s *memory.Store, id, want string) {
	t.Helper()
	got := balanceOf(t, s, id)
	require.True(t, dec(want).Equal(got), "balance of %s: want %s, got %s", id, want, got)
}
