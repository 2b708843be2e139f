package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/baharkarakas/adledger/internal/models"
	repo "github.com/baharkarakas/adledger/internal/repository"
)

const fanoutTimeout = 2 * time.Minute

type ModerationService struct {
	dist     repo.Distributions
	users    repo.Users
	uow      repo.UnitOfWork
	notifier Notifier
	fanout   Submitter
	log      *slog.Logger
}

func NewModerationService(d repo.Distributions, u repo.Users, uow repo.UnitOfWork, n Notifier, fanout Submitter, log *slog.Logger) *ModerationService {
	if log == nil {
		log = slog.Default()
	}
	return &ModerationService{dist: d, users: u, uow: uow, notifier: n, fanout: fanout, log: log}
}

// Submit queues a distribution for moderation. Targeting fields are kept as
// given; empty ones match everybody.
func (s *ModerationService) Submit(ctx context.Context, d models.Distribution) (models.Distribution, error) {
	d.Message = strings.TrimSpace(d.Message)
	if d.UserID == "" || d.Message == "" {
		return models.Distribution{}, ErrInvalidEvent
	}
	d.ID = ""
	d.Status = models.DistributionPending
	d.Country = strings.TrimSpace(d.Country)
	d.City = strings.TrimSpace(d.City)
	return s.dist.Create(ctx, d)
}

// Moderate moves a pending distribution to approved or rejected. On approval
// the message is delivered to every recipient in the background. The owner
// hears about the decision only when NotifyModeration is on. Repeating the
// same decision is a no-op; reversing it fails with ErrAlreadyModerated.
func (s *ModerationService) Moderate(ctx context.Context, id string, approved bool) (models.Distribution, error) {
	want := models.DistributionRejected
	if approved {
		want = models.DistributionApproved
	}

	var (
		d       models.Distribution
		changed bool
	)
	err := s.uow.WithTx(ctx, func(tx repo.Tx) error {
		var err error
		if d, err = tx.DistributionForUpdate(ctx, id); err != nil {
			return err
		}
		switch d.Status {
		case want:
			return nil
		case models.DistributionPending:
		default:
			return ErrAlreadyModerated
		}
		if err := tx.SetDistributionStatus(ctx, id, want); err != nil {
			return err
		}
		d.Status, changed = want, true
		return nil
	})
	if err != nil {
		return models.Distribution{}, classify("moderate distribution", err)
	}
	if !changed {
		return d, nil
	}

	owner, err := s.users.GetByID(ctx, d.UserID)
	if err != nil {
		s.log.Error("moderation: load owner", "user_id", d.UserID, "err", err)
		owner = models.User{ID: d.UserID}
	}

	if approved {
		if err := s.fanout.Submit(func() { s.deliver(d, owner) }); err != nil {
			s.log.Error("distribution fan-out not scheduled", "distribution_id", d.ID, "err", err)
		}
	}

	if !owner.NotifyModeration {
		return d, nil
	}
	t := models.NotifyModerationRejected
	if approved {
		t = models.NotifyModerationApproved
	}
	if _, err := s.notifier.Prepare(ctx, owner, t, nil, map[string]any{"distribution_id": d.ID}); err != nil {
		s.log.Error("moderation notification", "distribution_id", d.ID, "err", err)
	}
	return d, nil
}

// deliver sends an approved distribution to its recipients. Failures for one
// recipient do not stop the rest.
func (s *ModerationService) deliver(d models.Distribution, owner models.User) {
	ctx, cancel := context.WithTimeout(context.Background(), fanoutTimeout)
	defer cancel()

	recipients, err := s.users.Recipients(ctx, d)
	if err != nil {
		s.log.Error("distribution fan-out: recipients", "distribution_id", d.ID, "err", err)
		return
	}

	sender := owner.DisplayName
	if sender == "" {
		sender = owner.Email
	}
	extra := map[string]any{"distribution_id": d.ID, "sender_id": owner.ID}

	failed := 0
	for _, u := range recipients {
		if _, err := s.notifier.Prepare(ctx, u, models.NotifyDistribution, []any{d.Message, sender}, extra); err != nil {
			failed++
			s.log.Warn("distribution fan-out: recipient", "distribution_id", d.ID, "user_id", u.ID, "err", err)
		}
	}
	s.log.Info("distribution delivered", "distribution_id", d.ID, "recipients", len(recipients), "failed", failed)
}
