package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/adledger/internal/models"
	"github.com/baharkarakas/adledger/internal/notify"
	repo "github.com/baharkarakas/adledger/internal/repository"
	"github.com/baharkarakas/adledger/internal/repository/memory"
)

func newPayments(t *testing.T) (*PaymentService, *memory.Store, *recordingNotifier) {
	t.Helper()
	s := memory.New()
	r := s.Repositories()
	n := &recordingNotifier{}
	return NewPaymentService(r.Charges, r.UoW, n, nil), s, n
}

func successfulCharge(t *testing.T, svc *PaymentService, s *memory.Store, userID, amount string) models.Charge {
	t.Helper()
	ctx := context.Background()
	c, err := svc.CreateCharge(ctx, userID, dec(amount), models.ProviderStripe)
	require.NoError(t, err)
	setChargeStatus(t, s, c.ID, models.ChargeSuccessful, true)
	return c
}

func setChargeStatus(t *testing.T, s *memory.Store, id string, status models.ChargeStatus, paid bool) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.WithTx(ctx, func(tx repo.Tx) error {
		return tx.SetChargeStatus(ctx, id, status, paid)
	}))
}

func TestSettleChargeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, s, n := newPayments(t)
	seedUser(t, s, "u1", "10", true)
	c := successfulCharge(t, svc, s, "u1", "25.50")

	credited, err := svc.SettleCharge(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, credited)

	credited, err = svc.SettleCharge(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, credited)

	assertBalance(t, s, "u1", "35.50")

	got, err := s.Repositories().Charges.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.BalanceRefilled)

	entries, err := s.Repositories().Ledger.ListByUser(ctx, "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.EntryRefill, entries[0].Kind)
	assert.Equal(t, "charge:"+c.ID, entries[0].EventID)

	sent := n.all()
	require.Len(t, sent, 1)
	assert.Equal(t, models.NotifyFundsReceived, sent[0].Type)
	assert.Equal(t, []any{"25.50"}, sent[0].Params)
}

func TestSettleChargeGuard(t *testing.T) {
	ctx := context.Background()
	svc, s, n := newPayments(t)
	seedUser(t, s, "u1", "0", true)

	pending, err := svc.CreateCharge(ctx, "u1", dec("5"), models.ProviderPayPal)
	require.NoError(t, err)

	unpaid, err := svc.CreateCharge(ctx, "u1", dec("5"), models.ProviderPayPal)
	require.NoError(t, err)
	setChargeStatus(t, s, unpaid.ID, models.ChargeSuccessful, false)

	failed, err := svc.CreateCharge(ctx, "u1", dec("5"), models.ProviderPayPal)
	require.NoError(t, err)
	setChargeStatus(t, s, failed.ID, models.ChargeFailed, true)

	for _, id := range []string{pending.ID, unpaid.ID, failed.ID} {
		credited, err := svc.SettleCharge(ctx, id)
		require.NoError(t, err)
		assert.False(t, credited)
	}

	assertBalance(t, s, "u1", "0")
	entries, err := s.Repositories().Ledger.ListByUser(ctx, "u1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, n.all())
}

func TestSettleChargeConcurrent(t *testing.T) {
	ctx := context.Background()
	svc, s, n := newPayments(t)
	seedUser(t, s, "u1", "0", true)
	c := successfulCharge(t, svc, s, "u1", "100")

	const callers = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		credits int
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := svc.SettleCharge(ctx, c.ID)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				credits++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, credits)
	assertBalance(t, s, "u1", "100")
	assert.Len(t, n.all(), 1)
}

func TestSettleChargeUnknown(t *testing.T) {
	svc, _, _ := newPayments(t)
	_, err := svc.SettleCharge(context.Background(), "missing")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.False(t, IsRetryable(err))
}

func TestCompleteCharge(t *testing.T) {
	ctx := context.Background()
	svc, s, _ := newPayments(t)
	seedUser(t, s, "u1", "0", true)

	c, err := svc.CreateCharge(ctx, "u1", dec("40"), models.ProviderRobokassa)
	require.NoError(t, err)

	got, credited, err := svc.CompleteCharge(ctx, c.ID, true)
	require.NoError(t, err)
	assert.True(t, credited)
	assert.Equal(t, models.ChargeSuccessful, got.Status)
	assert.True(t, got.BalanceRefilled)

	// a late failure signal does not undo a successful charge
	got, credited, err = svc.CompleteCharge(ctx, c.ID, false)
	require.NoError(t, err)
	assert.False(t, credited)
	assert.Equal(t, models.ChargeSuccessful, got.Status)
	assertBalance(t, s, "u1", "40")

	c2, err := svc.CreateCharge(ctx, "u1", dec("15"), models.ProviderRobokassa)
	require.NoError(t, err)
	got, credited, err = svc.CompleteCharge(ctx, c2.ID, false)
	require.NoError(t, err)
	assert.False(t, credited)
	assert.Equal(t, models.ChargeFailed, got.Status)
	assertBalance(t, s, "u1", "40")
}

func TestCompleteChargeConflictingSignals(t *testing.T) {
	ctx := context.Background()
	svc, s, n := newPayments(t)
	seedUser(t, s, "u1", "0", true)
	c, err := svc.CreateCharge(ctx, "u1", dec("20"), models.ProviderStripe)
	require.NoError(t, err)

	const rounds = 16
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func(paid bool) {
			defer wg.Done()
			<-start
			_, _, err := svc.CompleteCharge(ctx, c.ID, paid)
			assert.NoError(t, err)
		}(i%2 == 0)
	}
	close(start)
	wg.Wait()

	got, err := svc.GetCharge(ctx, c.ID)
	require.NoError(t, err)
	entries, err := s.Repositories().Ledger.ListByUser(ctx, "u1", 10, 0)
	require.NoError(t, err)

	// whichever signal came first decides; a refill only ever sits on a
	// successful charge
	switch got.Status {
	case models.ChargeSuccessful:
		assert.True(t, got.Paid)
		assert.True(t, got.BalanceRefilled)
		assertBalance(t, s, "u1", "20")
		assert.Len(t, entries, 1)
		assert.Len(t, n.all(), 1)
	case models.ChargeFailed:
		assert.False(t, got.BalanceRefilled)
		assertBalance(t, s, "u1", "0")
		assert.Empty(t, entries)
	default:
		t.Fatalf("charge left %s", got.Status)
	}
}

func TestLateFailureAfterRefillKeepsSuccess(t *testing.T) {
	ctx := context.Background()
	svc, s, _ := newPayments(t)
	seedUser(t, s, "u1", "0", true)
	c, err := svc.CreateCharge(ctx, "u1", dec("12"), models.ProviderPayPal)
	require.NoError(t, err)

	_, credited, err := svc.CompleteCharge(ctx, c.ID, true)
	require.NoError(t, err)
	require.True(t, credited)

	got, credited, err := svc.CompleteCharge(ctx, c.ID, false)
	require.NoError(t, err)
	assert.False(t, credited)
	assert.Equal(t, models.ChargeSuccessful, got.Status)
	assert.True(t, got.Paid)

	stored, err := svc.GetCharge(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChargeSuccessful, stored.Status)
	assert.True(t, stored.Paid)
	assert.True(t, stored.BalanceRefilled)
}

func TestCreateChargeValidation(t *testing.T) {
	svc, _, _ := newPayments(t)
	_, err := svc.CreateCharge(context.Background(), "u1", dec("0"), models.ProviderStripe)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.CreateCharge(context.Background(), "u1", dec("1"), "cash")
	assert.ErrorIs(t, err, ErrInvalidProvider)
}

type failingDispatcher struct{}

func (failingDispatcher) Dispatch(context.Context, notify.Message) error {
	return errors.New("push gateway down")
}

type inlineSubmitter struct{}

func (inlineSubmitter) Submit(f func()) error { f(); return nil }

func TestDispatchFailureKeepsSettlement(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	r := s.Repositories()
	notifier := notify.NewNotifier(r.Notifications, failingDispatcher{}, inlineSubmitter{})
	svc := NewPaymentService(r.Charges, r.UoW, notifier, nil)
	seedUser(t, s, "u1", "0", true)
	c := successfulCharge(t, svc, s, "u1", "9.99")

	credited, err := svc.SettleCharge(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, credited)
	assertBalance(t, s, "u1", "9.99")

	notes, err := r.Notifications.ListByUser(ctx, "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.False(t, notes[0].Delivered)
}

type brokenUoW struct{}

func (brokenUoW) WithTx(context.Context, func(repo.Tx) error) error {
	return errors.New("connection reset")
}

func TestSettlePersistenceFailureIsRetryable(t *testing.T) {
	svc := NewPaymentService(nil, brokenUoW{}, &recordingNotifier{}, nil)
	_, err := svc.SettleCharge(context.Background(), "c1")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}
