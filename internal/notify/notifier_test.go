package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/adledger/internal/models"
	"github.com/baharkarakas/adledger/internal/repository/memory"
)

type inline struct{}

func (inline) Submit(f func()) error { f(); return nil }

type closed struct{}

func (closed) Submit(func()) error { return errors.New("stopped") }

type mockDispatcher struct {
	mock.Mock
	mu   sync.Mutex
	sent []Message
}

func (m *mockDispatcher) Dispatch(ctx context.Context, msg Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return m.Called(msg.UserID, msg.Type).Error(0)
}

func TestPrepareSavesAndDispatches(t *testing.T) {
	ctx := context.Background()
	notes := memory.New().Repositories().Notifications
	d := &mockDispatcher{}
	d.On("Dispatch", "u1", models.NotifyFundsReceived).Return(nil).Once()

	n := NewNotifier(notes, d, inline{})
	u := models.User{ID: "u1", CanReceiveNotifications: true}

	got, err := n.Prepare(ctx, u, models.NotifyFundsReceived, []any{"25.00"}, map[string]any{"charge_id": "c1"})
	require.NoError(t, err)
	assert.Equal(t, "Your balance has been refilled by 25.00", got.Message)
	assert.NotEmpty(t, got.ID)

	d.AssertExpectations(t)
	require.Len(t, d.sent, 1)
	assert.Equal(t, 1, d.sent[0].Badge)
	assert.Equal(t, got.ID, d.sent[0].NotificationID)

	list, err := notes.ListByUser(ctx, "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Delivered)
}

func TestPrepareSkipsDispatchWhenUserOptedOut(t *testing.T) {
	d := &mockDispatcher{}
	n := NewNotifier(memory.New().Repositories().Notifications, d, inline{})

	_, err := n.Prepare(context.Background(), models.User{ID: "u1"}, models.NotifyBalanceChanged, []any{"5"}, nil)
	require.NoError(t, err)
	d.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestPrepareUnsavedTemplate(t *testing.T) {
	ctx := context.Background()
	notes := memory.New().Repositories().Notifications
	d := &mockDispatcher{}
	d.On("Dispatch", "u1", models.NotifyModerationRejected).Return(nil)

	n := NewNotifier(notes, d, inline{})
	got, err := n.Prepare(ctx, models.User{ID: "u1", CanReceiveNotifications: true}, models.NotifyModerationRejected, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got.ID)

	count, err := notes.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, count)
	d.AssertExpectations(t)
}

func TestDispatchFailureIsNotReturned(t *testing.T) {
	ctx := context.Background()
	notes := memory.New().Repositories().Notifications
	d := &mockDispatcher{}
	d.On("Dispatch", "u1", models.NotifyFundsReceived).Return(errors.New("broker down"))

	n := NewNotifier(notes, d, inline{})
	got, err := n.Prepare(ctx, models.User{ID: "u1", CanReceiveNotifications: true}, models.NotifyFundsReceived, []any{"1"}, nil)
	require.NoError(t, err)

	list, err := notes.ListByUser(ctx, "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, got.ID, list[0].ID)
	assert.False(t, list[0].Delivered)
}

func TestPrepareWhenPoolStopped(t *testing.T) {
	d := &mockDispatcher{}
	n := NewNotifier(memory.New().Repositories().Notifications, d, closed{})
	_, err := n.Prepare(context.Background(), models.User{ID: "u1", CanReceiveNotifications: true}, models.NotifyFundsReceived, []any{"1"}, nil)
	require.NoError(t, err)
	d.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestRenderUnknownType(t *testing.T) {
	_, _, err := DefaultCatalog.Render("nope")
	assert.Error(t, err)

	msg, _, err := DefaultCatalog.Render(models.NotifyModerationApproved, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "Your distribution has been approved and sent out", msg)
}
