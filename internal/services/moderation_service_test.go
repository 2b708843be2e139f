package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/adledger/internal/models"
	repo "github.com/baharkarakas/adledger/internal/repository"
	"github.com/baharkarakas/adledger/internal/repository/memory"
)

func newModeration(t *testing.T) (*ModerationService, *memory.Store, *recordingNotifier) {
	t.Helper()
	s := memory.New()
	r := s.Repositories()
	n := &recordingNotifier{}
	return NewModerationService(r.Distributions, r.Users, r.UoW, n, inlineSubmitter{}, nil), s, n
}

func seedMember(t *testing.T, s *memory.Store, u models.User) models.User {
	t.Helper()
	if u.Email == "" {
		u.Email = u.ID + "@example.com"
	}
	u.Balance = dec("0")
	u.CanReceiveNotifications = true
	require.NoError(t, u.Validate())
	u, err := s.Repositories().Users.Create(context.Background(), u)
	require.NoError(t, err)
	return u
}

func ofType(notes []sentNote, t models.NotificationType) []sentNote {
	var out []sentNote
	for _, n := range notes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

func TestModerateNotifiesOnce(t *testing.T) {
	ctx := context.Background()
	svc, s, n := newModeration(t)
	seedMember(t, s, models.User{ID: "u1", IsActive: true, NotifyModeration: true})

	d, err := svc.Submit(ctx, models.Distribution{UserID: "u1", Message: "  spring sale  "})
	require.NoError(t, err)
	assert.Equal(t, "spring sale", d.Message)
	assert.Equal(t, models.DistributionPending, d.Status)

	got, err := svc.Moderate(ctx, d.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.DistributionApproved, got.Status)

	_, err = svc.Moderate(ctx, d.ID, true)
	require.NoError(t, err)

	_, err = svc.Moderate(ctx, d.ID, false)
	assert.ErrorIs(t, err, ErrAlreadyModerated)

	require.Len(t, n.all(), 1)
	assert.Equal(t, models.NotifyModerationApproved, n.all()[0].Type)
	assert.Equal(t, d.ID, n.all()[0].Extra["distribution_id"])
}

func TestModerateReject(t *testing.T) {
	ctx := context.Background()
	svc, s, n := newModeration(t)
	seedMember(t, s, models.User{ID: "u1", IsActive: true, NotifyModeration: true})
	seedMember(t, s, models.User{ID: "reader", IsActive: true})
	d, err := svc.Submit(ctx, models.Distribution{UserID: "u1", Message: "hello"})
	require.NoError(t, err)

	got, err := svc.Moderate(ctx, d.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.DistributionRejected, got.Status)
	require.Len(t, n.all(), 1)
	assert.Equal(t, models.NotifyModerationRejected, n.all()[0].Type)
}

func TestModerateRespectsOwnerPreference(t *testing.T) {
	ctx := context.Background()
	svc, s, n := newModeration(t)
	seedMember(t, s, models.User{ID: "u1", IsActive: true, NotifyModeration: false})
	d, err := svc.Submit(ctx, models.Distribution{UserID: "u1", Message: "hello"})
	require.NoError(t, err)

	_, err = svc.Moderate(ctx, d.ID, false)
	require.NoError(t, err)
	assert.Empty(t, n.all())
}

func TestApprovedDistributionReachesMatchingMembers(t *testing.T) {
	ctx := context.Background()
	svc, s, n := newModeration(t)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := start
	s.SetClock(func() time.Time { return now })

	seedMember(t, s, models.User{ID: "owner", DisplayName: "Ada", IsActive: true})
	seedMember(t, s, models.User{ID: "match", IsActive: true, IsPro: true, Country: "TR", City: "Izmir", Specializations: []string{"design", "seo"}})
	seedMember(t, s, models.User{ID: "other-city", IsActive: true, IsPro: true, Country: "TR", City: "Ankara", Specializations: []string{"seo"}})
	seedMember(t, s, models.User{ID: "not-pro", IsActive: true, Country: "TR", City: "Izmir", Specializations: []string{"seo"}})
	seedMember(t, s, models.User{ID: "no-skill", IsActive: true, IsPro: true, Country: "TR", City: "Izmir", Specializations: []string{"ads"}})
	seedMember(t, s, models.User{ID: "inactive", IsPro: true, Country: "TR", City: "Izmir", Specializations: []string{"seo"}})
	seedMember(t, s, models.User{ID: "staff", Role: models.RoleAdmin, IsActive: true, IsPro: true, Country: "TR", City: "Izmir", Specializations: []string{"seo"}})

	d, err := svc.Submit(ctx, models.Distribution{
		UserID:          "owner",
		Message:         "50% off",
		Specializations: []string{"seo"},
		Country:         "TR",
		City:            "Izmir",
		ProOnly:         true,
	})
	require.NoError(t, err)

	now = start.Add(time.Hour)
	seedMember(t, s, models.User{ID: "late", IsActive: true, IsPro: true, Country: "TR", City: "Izmir", Specializations: []string{"seo"}})

	_, err = svc.Moderate(ctx, d.ID, true)
	require.NoError(t, err)

	got := ofType(n.all(), models.NotifyDistribution)
	require.Len(t, got, 1)
	assert.Equal(t, "match", got[0].UserID)
	assert.Equal(t, []any{"50% off", "Ada"}, got[0].Params)
	assert.Equal(t, "owner", got[0].Extra["sender_id"])
	assert.Empty(t, ofType(n.all(), models.NotifyModerationApproved))
}

func TestUntargetedDistributionReachesEveryMember(t *testing.T) {
	ctx := context.Background()
	svc, s, n := newModeration(t)
	seedMember(t, s, models.User{ID: "owner", Email: "owner@example.com", IsActive: true})
	seedMember(t, s, models.User{ID: "a", IsActive: true})
	seedMember(t, s, models.User{ID: "b", IsActive: true, Country: "DE"})

	d, err := svc.Submit(ctx, models.Distribution{UserID: "owner", Message: "hi all"})
	require.NoError(t, err)
	_, err = svc.Moderate(ctx, d.ID, true)
	require.NoError(t, err)

	got := ofType(n.all(), models.NotifyDistribution)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].UserID)
	assert.Equal(t, "b", got[1].UserID)
	assert.Equal(t, "owner@example.com", got[0].Params[1])
}

func TestModerateErrors(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newModeration(t)

	_, err := svc.Submit(ctx, models.Distribution{UserID: "u1", Message: "   "})
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = svc.Moderate(ctx, "missing", true)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
