package booking_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"provider-booking-api/internal/booking"
	"provider-booking-api/internal/model"
	"provider-booking-api/pkg/logging"
)

var (
	now      = time.Date(2024, 2, 28, 9, 0, 0, 0, time.UTC)
	provider = &model.User{ID: 7, Name: "Dr. Ana", Provider: true}
	client   = &model.User{ID: 2, Name: "Bruno"}
)

func TestCreateAppointment(t *testing.T) {
	st := newMemStore(provider, client)
	notes := &fakeNotifier{}
	rec := newRecorder()
	sched, _ := booking.NewSchedule(time.UTC, 8, 18, -1, nil)
	svc := booking.NewService(st, st, notes, sched,
		booking.WithClock(booking.FixedClock(now)),
		booking.WithLogger(logging.Discard()),
		booking.WithRecorder(rec),
	)

	a, err := svc.CreateAppointment(context.Background(), booking.CreateRequest{
		RequesterID: 2, ProviderID: 7, Date: "2024-03-01T14:30:00Z",
	})
	require.NoError(t, err)

	assert.NotZero(t, a.ID)
	assert.Equal(t, int64(2), a.UserID)
	assert.Equal(t, int64(7), a.ProviderID)
	assert.True(t, a.Date.Equal(time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)))

	require.Len(t, notes.sent, 1)
	assert.Equal(t, int64(7), notes.sent[0].userID)
	assert.Equal(t, "New appointment from Bruno for Friday, March 1 at 14:00", notes.sent[0].content)
	assert.Equal(t, 1, rec.bookings["created"])
	assert.Equal(t, 1, rec.notes["sent"])
}

func TestCreateAppointmentErrors(t *testing.T) {
	nonProvider := &model.User{ID: 3, Name: "Carla"}

	tests := []struct {
		name string
		req  booking.CreateRequest
		want *booking.Error
		kind booking.Kind
	}{
		{"missing provider", booking.CreateRequest{RequesterID: 2, Date: "2024-03-01T14:00:00Z"}, booking.ErrValidation, booking.KindValidation},
		{"negative provider", booking.CreateRequest{RequesterID: 2, ProviderID: -4, Date: "2024-03-01T14:00:00Z"}, booking.ErrValidation, booking.KindValidation},
		{"missing date", booking.CreateRequest{RequesterID: 2, ProviderID: 7}, booking.ErrValidation, booking.KindValidation},
		{"garbage date", booking.CreateRequest{RequesterID: 2, ProviderID: 7, Date: "next friday"}, nil, booking.KindFormat},
		{"unknown provider", booking.CreateRequest{RequesterID: 2, ProviderID: 99, Date: "2024-03-01T14:00:00Z"}, booking.ErrNotProvider, booking.KindAuthorization},
		{"not a provider", booking.CreateRequest{RequesterID: 2, ProviderID: 3, Date: "2024-03-01T14:00:00Z"}, booking.ErrNotProvider, booking.KindAuthorization},
		{"not a provider with past date", booking.CreateRequest{RequesterID: 2, ProviderID: 3, Date: "2020-01-01T10:00:00Z"}, booking.ErrNotProvider, booking.KindAuthorization},
		{"past date", booking.CreateRequest{RequesterID: 2, ProviderID: 7, Date: "2024-02-27T10:00:00Z"}, booking.ErrPastDate, booking.KindValidation},
		{"earlier this hour", booking.CreateRequest{RequesterID: 2, ProviderID: 7, Date: "2024-02-28T08:59:00Z"}, booking.ErrPastDate, booking.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newMemStore(provider, client, nonProvider)
			notes := &fakeNotifier{}
			svc := newService(t, st, notes, now, -1)

			_, err := svc.CreateAppointment(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, booking.KindOf(err))
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Zero(t, st.inserts, "no insert expected")
			assert.Empty(t, notes.sent)
		})
	}
}

func TestCreateAppointmentCurrentHourAllowed(t *testing.T) {
	st := newMemStore(provider, client)
	svc := newService(t, st, nil, now, -1)

	// 09:00 exactly is not before now.
	_, err := svc.CreateAppointment(context.Background(), booking.CreateRequest{RequesterID: 2, ProviderID: 7, Date: "2024-02-28T09:40:00Z"})
	assert.NoError(t, err)
}

func TestCreateAppointmentConflictAfterNormalizing(t *testing.T) {
	st := newMemStore(provider, client)
	st.appts = append(st.appts, model.Appointment{ID: 1, ProviderID: 7, UserID: 5, Date: time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)})
	notes := &fakeNotifier{}
	svc := newService(t, st, notes, now, -1)

	_, err := svc.CreateAppointment(context.Background(), booking.CreateRequest{RequesterID: 2, ProviderID: 7, Date: "2024-03-01T14:30:00Z"})
	assert.ErrorIs(t, err, booking.ErrUnavailable)
	assert.Equal(t, booking.KindConflict, booking.KindOf(err))
	assert.Empty(t, notes.sent)
}

func TestCreateAppointmentSequentialDoubleBooking(t *testing.T) {
	st := newMemStore(provider, client)
	svc := newService(t, st, nil, now, -1)
	req := booking.CreateRequest{RequesterID: 2, ProviderID: 7, Date: "2024-03-01T10:00:00Z"}

	_, err := svc.CreateAppointment(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.CreateAppointment(context.Background(), req)
	assert.ErrorIs(t, err, booking.ErrUnavailable)
	assert.Equal(t, 1, st.active(7))
}

func TestCreateAppointmentSlotFreedByCancellation(t *testing.T) {
	canceled := now
	st := newMemStore(provider, client)
	st.appts = append(st.appts, model.Appointment{ID: 1, ProviderID: 7, Date: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), CanceledAt: &canceled})
	svc := newService(t, st, nil, now, -1)

	_, err := svc.CreateAppointment(context.Background(), booking.CreateRequest{RequesterID: 2, ProviderID: 7, Date: "2024-03-01T10:00:00Z"})
	assert.NoError(t, err)
}

func TestConcurrentBooking(t *testing.T) {
	st := newMemStore(provider, client)
	rec := newRecorder()
	sched, _ := booking.NewSchedule(time.UTC, 8, 18, -1, nil)
	svc := booking.NewService(st, st, &fakeNotifier{}, sched,
		booking.WithClock(booking.FixedClock(now)),
		booking.WithLogger(logging.Discard()),
		booking.WithRecorder(rec),
	)

	const n = 20
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// different minutes, same hour
			_, err := svc.CreateAppointment(context.Background(), booking.CreateRequest{
				RequesterID: 2, ProviderID: 7, Date: fmt.Sprintf("2024-03-01T15:%02d:00Z", i),
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case booking.KindOf(err) == booking.KindConflict:
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, 1, st.active(7))
	assert.Equal(t, n-1, rec.bookings["conflict"])
}

func TestNotificationFailureKeepsAppointment(t *testing.T) {
	st := newMemStore(provider, client)
	notes := &fakeNotifier{err: fmt.Errorf("mongo down")}
	rec := newRecorder()
	sched, _ := booking.NewSchedule(time.UTC, 8, 18, -1, nil)
	svc := booking.NewService(st, st, notes, sched,
		booking.WithClock(booking.FixedClock(now)),
		booking.WithLogger(logging.Discard()),
		booking.WithRecorder(rec),
	)

	a, err := svc.CreateAppointment(context.Background(), booking.CreateRequest{RequesterID: 2, ProviderID: 7, Date: "2024-03-01T11:00:00Z"})
	require.NoError(t, err)
	assert.NotZero(t, a.ID)
	assert.Equal(t, 1, st.active(7))
	assert.Equal(t, 1, rec.notes["failed"])
}

func TestStoreFailureIsNotBusinessError(t *testing.T) {
	st := newMemStore(provider, client)
	st.failIns = errStoreDown
	svc := newService(t, st, nil, now, -1)

	_, err := svc.CreateAppointment(context.Background(), booking.CreateRequest{RequesterID: 2, ProviderID: 7, Date: "2024-03-01T11:00:00Z"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Zero(t, booking.KindOf(err))
}

func TestNotificationContentUsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	got := booking.NotificationContent("Bruno", time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, "New appointment from Bruno for Friday, March 1 at 14:00", got)
}
