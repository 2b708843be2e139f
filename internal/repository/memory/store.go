// Package memory is an in-process implementation of the repositories, used by
// tests and by STORE=memory. A unit of work holds the store lock for its whole
// duration and restores a snapshot when it fails.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/baharkarakas/adledger/internal/models"
	repo "github.com/baharkarakas/adledger/internal/repository"
)

type data struct {
	users         map[string]models.User
	charges       map[string]models.Charge
	entries       []models.LedgerEntry
	notifications []models.Notification
	banners       map[string]models.Banner
	orders        map[string]models.BannerOrder
	products      map[string]models.Product
	distributions map[string]models.Distribution
	ads           map[int64]struct{}
	services      map[int64]struct{}
}

func (d data) clone() data {
	c := data{
		users:         make(map[string]models.User, len(d.users)),
		charges:       make(map[string]models.Charge, len(d.charges)),
		entries:       append([]models.LedgerEntry(nil), d.entries...),
		notifications: append([]models.Notification(nil), d.notifications...),
		banners:       make(map[string]models.Banner, len(d.banners)),
		orders:        make(map[string]models.BannerOrder, len(d.orders)),
		products:      make(map[string]models.Product, len(d.products)),
		distributions: make(map[string]models.Distribution, len(d.distributions)),
		ads:           make(map[int64]struct{}, len(d.ads)),
		services:      make(map[int64]struct{}, len(d.services)),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.charges {
		c.charges[k] = v
	}
	for k, v := range d.banners {
		c.banners[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.distributions {
		c.distributions[k] = v
	}
	for k := range d.ads {
		c.ads[k] = struct{}{}
	}
	for k := range d.services {
		c.services[k] = struct{}{}
	}
	return c
}

type Store struct {
	mu  sync.Mutex
	d   data
	now func() time.Time
}

func New() *Store {
	return &Store{d: data{}.clone(), now: time.Now}
}

// SetClock replaces the source of CreatedAt/UpdatedAt stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Repositories() repo.Repositories {
	return repo.Repositories{
		Users:         &usersRepo{s},
		Charges:       &chargesRepo{s},
		Ledger:        &ledgerRepo{s},
		Notifications: &notificationsRepo{s},
		Banners:       &bannersRepo{s},
		Products:      &productsRepo{s},
		Distributions: &distributionsRepo{s},
		Listings:      &listingsRepo{s},
		UoW:           s,
	}
}

func (s *Store) WithTx(ctx context.Context, fn func(repo.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(&memTx{s: s}); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

// ---- seeding ----

func (s *Store) PutBanner(b models.Banner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.banners[b.ID] = b
}

func (s *Store) PutBannerOrder(o models.BannerOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.orders[o.ID] = o
}

func (s *Store) PutProduct(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.products[p.Code] = p
}

func (s *Store) PutAd(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.ads[id] = struct{}{}
}

func (s *Store) PutService(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.services[id] = struct{}{}
}

// ---- users ----

type usersRepo struct{ s *Store }

func (r *usersRepo) Create(_ context.Context, u models.User) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := r.s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.d.users[u.ID] = u
	return u, nil
}

func (r *usersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.d.users[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) List(_ context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.User, 0, len(r.s.d.users))
	for _, u := range r.s.d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *usersRepo) Recipients(_ context.Context, d models.Distribution) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.User
	for _, u := range r.s.d.users {
		if d.Reaches(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- charges ----

type chargesRepo struct{ s *Store }

func (r *chargesRepo) Create(_ context.Context, c models.Charge) (models.Charge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = models.ChargePending
	}
	now := r.s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.d.charges[c.ID] = c
	return c, nil
}

func (r *chargesRepo) GetByID(_ context.Context, id string) (models.Charge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.d.charges[id]
	if !ok {
		return models.Charge{}, repo.ErrNotFound
	}
	return c, nil
}

func (r *chargesRepo) DailyTotals(_ context.Context) ([]models.DailyTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byDay := map[time.Time]*models.DailyTotal{}
	for _, c := range r.s.d.charges {
		if c.Status != models.ChargeSuccessful {
			continue
		}
		y, m, d := c.CreatedAt.UTC().Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		t, ok := byDay[day]
		if !ok {
			t = &models.DailyTotal{Day: day, Amount: decimal.Zero}
			byDay[day] = t
		}
		t.Amount = t.Amount.Add(c.Amount)
		t.Count++
	}
	out := make([]models.DailyTotal, 0, len(byDay))
	for _, t := range byDay {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

// ---- ledger ----

type ledgerRepo struct{ s *Store }

func (r *ledgerRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []models.LedgerEntry
	for i := len(r.s.d.entries) - 1; i >= 0; i-- {
		if e := r.s.d.entries[i]; e.UserID == userID {
			all = append(all, e)
		}
	}
	return page(all, limit, offset), nil
}

func (r *ledgerRepo) GetByEvent(_ context.Context, userID, eventID string) (models.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.d.entries {
		if e.UserID == userID && e.EventID == eventID {
			return e, nil
		}
	}
	return models.LedgerEntry{}, repo.ErrNotFound
}

// ---- notifications ----

type notificationsRepo struct{ s *Store }

func (r *notificationsRepo) Create(_ context.Context, n models.Notification) (models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = r.s.now()
	r.s.d.notifications = append(r.s.d.notifications, n)
	return n, nil
}

func (r *notificationsRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []models.Notification
	for i := len(r.s.d.notifications) - 1; i >= 0; i-- {
		if n := r.s.d.notifications[i]; n.UserID == userID {
			all = append(all, n)
		}
	}
	return page(all, limit, offset), nil
}

func (r *notificationsRepo) UnreadCount(_ context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, x := range r.s.d.notifications {
		if x.UserID == userID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *notificationsRepo) MarkRead(_ context.Context, userID, id string) error {
	return r.update(id, func(n *models.Notification) bool {
		if n.UserID != userID {
			return false
		}
		n.IsRead = true
		return true
	})
}

func (r *notificationsRepo) MarkDelivered(_ context.Context, id string) error {
	return r.update(id, func(n *models.Notification) bool { n.Delivered = true; return true })
}

func (r *notificationsRepo) update(id string, fn func(*models.Notification) bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.d.notifications {
		if r.s.d.notifications[i].ID == id {
			if !fn(&r.s.d.notifications[i]) {
				return repo.ErrNotFound
			}
			return nil
		}
	}
	return repo.ErrNotFound
}

// ---- banners ----

type bannersRepo struct{ s *Store }

func (r *bannersRepo) Eligible(_ context.Context, place models.Place) ([]models.BannerOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.BannerOrder
	for _, o := range r.s.d.orders {
		b, ok := r.s.d.banners[o.BannerID]
		if !ok || b.Place != place {
			continue
		}
		if o.Checked && o.IsShown && o.Left > 0 {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *bannersRepo) Defaults(_ context.Context, place models.Place) ([]models.Banner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Banner
	for _, b := range r.s.d.banners {
		if b.IsDefault && b.Place == place {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordering < out[j].Ordering })
	return out, nil
}

func (r *bannersRepo) GetByID(_ context.Context, id string) (models.Banner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.d.banners[id]
	if !ok {
		return models.Banner{}, repo.ErrNotFound
	}
	return b, nil
}

func (r *bannersRepo) ConsumeImpression(_ context.Context, orderID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.d.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	if o.Left > 0 {
		o.Left--
		r.s.d.orders[orderID] = o
	}
	return nil
}

// ---- products, distributions, listings ----

type productsRepo struct{ s *Store }

func (r *productsRepo) GetByCode(_ context.Context, code string) (models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.d.products[code]
	if !ok {
		return models.Product{}, repo.ErrNotFound
	}
	return p, nil
}

type distributionsRepo struct{ s *Store }

func (r *distributionsRepo) Create(_ context.Context, d models.Distribution) (models.Distribution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = models.DistributionPending
	}
	now := r.s.now()
	d.CreatedAt, d.UpdatedAt = now, now
	r.s.d.distributions[d.ID] = d
	return d, nil
}

func (r *distributionsRepo) GetByID(_ context.Context, id string) (models.Distribution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.d.distributions[id]
	if !ok {
		return models.Distribution{}, repo.ErrNotFound
	}
	return d, nil
}

type listingsRepo struct{ s *Store }

func (r *listingsRepo) AdExists(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.d.ads[id]
	return ok, nil
}

func (r *listingsRepo) ServiceExists(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.d.services[id]
	return ok, nil
}

// ---- unit of work ----

// memTx runs with the store lock held.
type memTx struct{ s *Store }

func (t *memTx) ChargeForUpdate(_ context.Context, id string) (models.Charge, error) {
	c, ok := t.s.d.charges[id]
	if !ok {
		return models.Charge{}, repo.ErrNotFound
	}
	return c, nil
}

func (t *memTx) MarkChargeRefilled(_ context.Context, id string) error {
	c, ok := t.s.d.charges[id]
	if !ok {
		return repo.ErrNotFound
	}
	c.BalanceRefilled, c.UpdatedAt = true, t.s.now()
	t.s.d.charges[id] = c
	return nil
}

func (t *memTx) SetChargeStatus(_ context.Context, id string, status models.ChargeStatus, paid bool) error {
	c, ok := t.s.d.charges[id]
	if !ok {
		return repo.ErrNotFound
	}
	c.Status, c.Paid, c.UpdatedAt = status, paid, t.s.now()
	t.s.d.charges[id] = c
	return nil
}

func (t *memTx) UserForUpdate(_ context.Context, id string) (models.User, error) {
	u, ok := t.s.d.users[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (t *memTx) AddBalance(_ context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	u, ok := t.s.d.users[userID]
	if !ok {
		return decimal.Zero, repo.ErrNotFound
	}
	u.Balance, u.UpdatedAt = u.Balance.Add(delta), t.s.now()
	t.s.d.users[userID] = u
	return u.Balance, nil
}

func (t *memTx) EntryByEvent(_ context.Context, userID, eventID string) (models.LedgerEntry, bool, error) {
	for _, e := range t.s.d.entries {
		if e.UserID == userID && e.EventID == eventID {
			return e, true, nil
		}
	}
	return models.LedgerEntry{}, false, nil
}

func (t *memTx) AppendEntry(ctx context.Context, e models.LedgerEntry) (models.LedgerEntry, error) {
	if _, ok, _ := t.EntryByEvent(ctx, e.UserID, e.EventID); ok {
		return models.LedgerEntry{}, repo.ErrDuplicateEvent
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = t.s.now()
	t.s.d.entries = append(t.s.d.entries, e)
	return e, nil
}

func (t *memTx) DistributionForUpdate(_ context.Context, id string) (models.Distribution, error) {
	d, ok := t.s.d.distributions[id]
	if !ok {
		return models.Distribution{}, repo.ErrNotFound
	}
	return d, nil
}

func (t *memTx) SetDistributionStatus(_ context.Context, id string, status models.DistributionStatus) error {
	d, ok := t.s.d.distributions[id]
	if !ok {
		return repo.ErrNotFound
	}
	d.Status, d.UpdatedAt = status, t.s.now()
	t.s.d.distributions[id] = d
	return nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

var (
	_ repo.UnitOfWork = (*Store)(nil)
	_ repo.Tx         = (*memTx)(nil)
)
