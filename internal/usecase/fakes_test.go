package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/gateway"

	"go.uber.org/zap"
)

// memStore backs every fake repository. WithinTransaction snapshots it and
// restores the snapshot when fn fails, which is enough to observe rollbacks.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]entity.User
	sessions map[string]entity.Session
	cars     map[int64]entity.Car
	rentals  map[int64]entity.Rental
	payments map[int64]entity.Payment

	carLookups int
}

func newMemStore() *memStore {
	return &memStore{
		nextID:   100,
		users:    map[int64]entity.User{},
		sessions: map[string]entity.Session{},
		cars:     map[int64]entity.Car{},
		rentals:  map[int64]entity.Rental{},
		payments: map[int64]entity.Payment{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) repository() *repository.Repository {
	repo := &repository.Repository{
		User:    &fakeUsers{m},
		Session: &fakeSessions{m},
		Car:     &fakeCars{m},
		Rental:  &fakeRentals{m},
		Payment: &fakePayments{m},
	}
	repo.Tx = &fakeTx{store: m, repo: repo}
	return repo
}

func (m *memStore) snapshot() *memStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := &memStore{
		nextID:   m.nextID,
		users:    map[int64]entity.User{},
		sessions: map[string]entity.Session{},
		cars:     map[int64]entity.Car{},
		rentals:  map[int64]entity.Rental{},
		payments: map[int64]entity.Payment{},
	}
	for k, v := range m.users {
		cp.users[k] = v
	}
	for k, v := range m.sessions {
		cp.sessions[k] = v
	}
	for k, v := range m.cars {
		cp.cars[k] = v
	}
	for k, v := range m.rentals {
		cp.rentals[k] = v
	}
	for k, v := range m.payments {
		cp.payments[k] = v
	}
	return cp
}

func (m *memStore) restore(from *memStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID = from.nextID
	m.users = from.users
	m.sessions = from.sessions
	m.cars = from.cars
	m.rentals = from.rentals
	m.payments = from.payments
}

type fakeTx struct {
	store *memStore
	repo  *repository.Repository
	calls int
}

func (t *fakeTx) WithinTransaction(ctx context.Context, fn func(tx *repository.Repository) error) error {
	t.calls++
	snap := t.store.snapshot()
	if err := fn(t.repo); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// ---- users / sessions ----

type fakeUsers struct{ m *memStore }

func (f *fakeUsers) Create(ctx context.Context, user *entity.User) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, u := range f.m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	user.ID = f.m.id()
	f.m.users[user.ID] = *user
	return nil
}

func (f *fakeUsers) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	u, ok := f.m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, u := range f.m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

type fakeSessions struct{ m *memStore }

func (f *fakeSessions) Create(ctx context.Context, session *entity.Session) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	f.m.sessions[session.Token.String()] = *session
	return nil
}

func (f *fakeSessions) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	s, ok := f.m.sessions[token]
	if !ok || s.RevokedAt != nil || time.Now().After(s.ExpiresAt) {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeSessions) Revoke(ctx context.Context, token string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	s, ok := f.m.sessions[token]
	if !ok || s.RevokedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	f.m.sessions[token] = s
	return nil
}

func (f *fakeSessions) CleanExpiredSessions(ctx context.Context) (int64, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var n int64
	for k, s := range f.m.sessions {
		if s.ExpiresAt.Before(time.Now().Add(-7 * 24 * time.Hour)) {
			delete(f.m.sessions, k)
			n++
		}
	}
	return n, nil
}

// ---- cars ----

type fakeCars struct{ m *memStore }

func (f *fakeCars) Create(ctx context.Context, car *entity.Car) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	car.ID = f.m.id()
	f.m.cars[car.ID] = *car
	return nil
}

func (f *fakeCars) FindByID(ctx context.Context, id int64) (*entity.Car, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	f.m.carLookups++
	c, ok := f.m.cars[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeCars) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Car, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeCars) sorted() []*entity.Car {
	out := make([]*entity.Car, 0, len(f.m.cars))
	for _, c := range f.m.cars {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeCars) FindAll(ctx context.Context, limit, offset int) ([]*entity.Car, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return page(f.sorted(), limit, offset), nil
}

func (f *fakeCars) CountAll(ctx context.Context) (int64, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return int64(len(f.m.cars)), nil
}

func (f *fakeCars) Search(ctx context.Context, query string) ([]*entity.Car, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	out := []*entity.Car{}
	for _, c := range f.sorted() {
		if strings.Contains(strings.ToLower(c.Brand+" "+c.Model), strings.ToLower(query)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCars) Update(ctx context.Context, car *entity.Car) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.cars[car.ID]; !ok {
		return repository.ErrNotFound
	}
	f.m.cars[car.ID] = *car
	return nil
}

func (f *fakeCars) Patch(ctx context.Context, id int64, patch repository.CarPatch) (*entity.Car, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	c, ok := f.m.cars[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Brand != nil {
		c.Brand = *patch.Brand
	}
	if patch.Model != nil {
		c.Model = *patch.Model
	}
	if patch.Year != nil {
		c.Year = *patch.Year
	}
	if patch.PricePerDay != nil {
		c.PricePerDay = *patch.PricePerDay
	}
	if patch.IsAvailable != nil {
		c.IsAvailable = *patch.IsAvailable
	}
	f.m.cars[id] = c
	return &c, nil
}

func (f *fakeCars) Delete(ctx context.Context, id int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.cars[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.m.cars, id)
	return nil
}

// ---- rentals ----

type fakeRentals struct{ m *memStore }

func (f *fakeRentals) Create(ctx context.Context, rental *entity.Rental) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.cars[rental.CarID]; !ok {
		return repository.ErrForeignKey
	}
	rental.ID = f.m.id()
	f.m.rentals[rental.ID] = *rental
	return nil
}

func (f *fakeRentals) FindByID(ctx context.Context, id int64) (*entity.Rental, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	r, ok := f.m.rentals[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeRentals) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Rental, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeRentals) filter(keep func(entity.Rental) bool) []*entity.Rental {
	out := []*entity.Rental{}
	for _, r := range f.m.rentals {
		if keep(r) {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeRentals) FindAll(ctx context.Context, limit, offset int) ([]*entity.Rental, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return page(f.filter(func(entity.Rental) bool { return true }), limit, offset), nil
}

func (f *fakeRentals) CountAll(ctx context.Context) (int64, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return int64(len(f.m.rentals)), nil
}

func (f *fakeRentals) FindByUserID(ctx context.Context, userID int64) ([]*entity.Rental, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return f.filter(func(r entity.Rental) bool { return r.UserID == userID }), nil
}

func (f *fakeRentals) FindByCarID(ctx context.Context, carID int64) ([]*entity.Rental, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return f.filter(func(r entity.Rental) bool { return r.CarID == carID }), nil
}

func (f *fakeRentals) HasOverlap(ctx context.Context, carID int64, start, end, pendingSince time.Time) (bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, r := range f.m.rentals {
		if r.CarID != carID || !r.StartDate.Before(end) || !r.EndDate.After(start) {
			continue
		}
		if r.Status == entity.RentalStatusConfirmed ||
			(r.Status == entity.RentalStatusPending && r.CreatedAt.After(pendingSince)) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRentals) SetCheckoutSession(ctx context.Context, id int64, sessionID string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	r, ok := f.m.rentals[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.CheckoutSessionID = &sessionID
	f.m.rentals[id] = r
	return nil
}

func (f *fakeRentals) UpdateStatus(ctx context.Context, id int64, status entity.RentalStatus) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	r, ok := f.m.rentals[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Status = status
	f.m.rentals[id] = r
	return nil
}

func (f *fakeRentals) Delete(ctx context.Context, id int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.rentals[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.m.rentals, id)
	for pid, p := range f.m.payments {
		if p.RentalID == id {
			delete(f.m.payments, pid)
		}
	}
	return nil
}

func (f *fakeRentals) DeleteStalePending(ctx context.Context, createdBefore time.Time) ([]*entity.Rental, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	stale := f.filter(func(r entity.Rental) bool {
		return r.Status == entity.RentalStatusPending && r.CreatedAt.Before(createdBefore)
	})
	for _, r := range stale {
		delete(f.m.rentals, r.ID)
	}
	return stale, nil
}

// ---- payments ----

type fakePayments struct{ m *memStore }

func (f *fakePayments) Create(ctx context.Context, payment *entity.Payment) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.rentals[payment.RentalID]; !ok {
		return repository.ErrForeignKey
	}
	payment.ID = f.m.id()
	f.m.payments[payment.ID] = *payment
	return nil
}

func (f *fakePayments) FindByID(ctx context.Context, id int64) (*entity.Payment, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	p, ok := f.m.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakePayments) all(keep func(entity.Payment) bool) []*entity.Payment {
	out := []*entity.Payment{}
	for _, p := range f.m.payments {
		if keep(p) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakePayments) FindAll(ctx context.Context, limit, offset int) ([]*entity.Payment, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return page(f.all(func(entity.Payment) bool { return true }), limit, offset), nil
}

func (f *fakePayments) CountAll(ctx context.Context) (int64, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return int64(len(f.m.payments)), nil
}

func (f *fakePayments) FindByRentalID(ctx context.Context, rentalID int64) ([]*entity.Payment, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return f.all(func(p entity.Payment) bool { return p.RentalID == rentalID }), nil
}

func (f *fakePayments) FindPaidByRentalID(ctx context.Context, rentalID int64) (*entity.Payment, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	paid := f.all(func(p entity.Payment) bool {
		return p.RentalID == rentalID && p.Status == entity.PaymentStatusPaid
	})
	if len(paid) == 0 {
		return nil, nil
	}
	return paid[0], nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ---- gateway ----

type fakeGateway struct {
	createFn func(ctx context.Context, req gateway.CheckoutRequest) (*gateway.CheckoutSession, error)
	requests []gateway.CheckoutRequest
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req gateway.CheckoutRequest) (*gateway.CheckoutSession, error) {
	g.requests = append(g.requests, req)
	if g.createFn != nil {
		return g.createFn(ctx, req)
	}
	return &gateway.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.test/cs_test_1"}, nil
}

type fakeVerifier struct {
	verifyFn func(payload []byte, sig string) (*gateway.Event, error)
}

func (v *fakeVerifier) VerifyWebhook(payload []byte, sig string) (*gateway.Event, error) {
	return v.verifyFn(payload, sig)
}

// ---- cache ----

type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memCache) Close() error { return nil }

var testLog = zap.NewNop()
