package booking_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"provider-booking-api/internal/booking"
	"provider-booking-api/internal/model"
)

// memStore mimics the partial unique index on (provider_id, date).
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	appts   []model.Appointment
	users   map[int64]*model.User
	failIns error
	inserts int
}

func newMemStore(users ...*model.User) *memStore {
	m := &memStore{users: make(map[int64]*model.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memStore) CreateAppointment(_ context.Context, a *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.failIns != nil {
		return m.failIns
	}
	for _, e := range m.appts {
		if e.ProviderID == a.ProviderID && e.CanceledAt == nil && e.Date.Equal(a.Date) {
			return booking.ErrUnavailable
		}
	}
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.appts = append(m.appts, *a)
	return nil
}

func (m *memStore) BookedHours(_ context.Context, providerID int64, from, to time.Time) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []time.Time
	for _, e := range m.appts {
		if e.ProviderID == providerID && e.CanceledAt == nil && !e.Date.Before(from) && e.Date.Before(to) {
			out = append(out, e.Date.UTC())
		}
	}
	return out, nil
}

func (m *memStore) UserByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return u, nil
}

func (m *memStore) active(providerID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.appts {
		if e.ProviderID == providerID && e.CanceledAt == nil {
			n++
		}
	}
	return n
}

type sentNote struct {
	userID  int64
	content string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNote
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, userID int64, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentNote{userID, content})
	return nil
}

type countingRecorder struct {
	mu        sync.Mutex
	bookings  map[string]int
	notes     map[string]int
	available int
}

func newRecorder() *countingRecorder {
	return &countingRecorder{bookings: map[string]int{}, notes: map[string]int{}}
}

func (r *countingRecorder) ObserveBooking(o string) {
	r.mu.Lock()
	r.bookings[o]++
	r.mu.Unlock()
}

func (r *countingRecorder) ObserveNotification(s string) {
	r.mu.Lock()
	r.notes[s]++
	r.mu.Unlock()
}

func (r *countingRecorder) ObserveAvailability(time.Duration) {
	r.mu.Lock()
	r.available++
	r.mu.Unlock()
}

var errStoreDown = errors.New("connection refused")
