package booking_test

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"provider-booking-api/internal/booking"
	"provider-booking-api/internal/model"
	"provider-booking-api/pkg/logging"
)

func newService(t *testing.T, st *memStore, n booking.Notifier, now time.Time, lunch int) *booking.Service {
	t.Helper()
	sched, err := booking.NewSchedule(time.UTC, 8, 18, lunch,
		[]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday})
	require.NoError(t, err)
	return booking.NewService(st, st, n, sched,
		booking.WithClock(booking.FixedClock(now)),
		booking.WithLogger(logging.Discard()),
	)
}

func TestAvailabilityMarksBookedSlot(t *testing.T) {
	st := newMemStore(&model.User{ID: 7, Name: "Dr. Ana", Provider: true})
	st.appts = append(st.appts, model.Appointment{ID: 1, ProviderID: 7, UserID: 2, Date: time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)})
	svc := newService(t, st, nil, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), -1)

	seq, err := svc.Availability(context.Background(), 7, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	slots := slices.Collect(seq)
	require.Len(t, slots, 10)
	for _, s := range slots {
		if s.Date.Hour() == 14 {
			assert.False(t, s.Available, "14:00 should be taken")
		} else {
			assert.True(t, s.Available, "%s should be free", s.Date)
		}
	}
}

func TestAvailabilityIgnoresCancelledAndOtherProviders(t *testing.T) {
	canceled := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	st := newMemStore()
	st.appts = append(st.appts,
		model.Appointment{ProviderID: 7, Date: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), CanceledAt: &canceled},
		model.Appointment{ProviderID: 8, Date: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
	)
	svc := newService(t, st, nil, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), -1)

	seq, err := svc.Availability(context.Background(), 7, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	for s := range seq {
		assert.True(t, s.Available, s.Date.String())
	}
}

func TestAvailabilityPastSlotsUnavailable(t *testing.T) {
	st := newMemStore()
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	svc := newService(t, st, nil, now, -1)

	seq, err := svc.Availability(context.Background(), 7, now)
	require.NoError(t, err)
	for s := range seq {
		assert.Equal(t, s.Date.Hour() >= 13, s.Available, s.Date.String())
	}
}

func TestAvailabilityAscendingWithinWindow(t *testing.T) {
	st := newMemStore()
	svc := newService(t, st, nil, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 12)

	for d := 0; d < 14; d++ {
		day := time.Date(2024, 3, 1+d, 0, 0, 0, 0, time.UTC)
		seq, err := svc.Availability(context.Background(), 7, day)
		require.NoError(t, err)

		var prev time.Time
		for s := range seq {
			require.True(t, s.Date.After(prev), "not ascending at %s", s.Date)
			require.GreaterOrEqual(t, s.Date.Hour(), 8)
			require.Less(t, s.Date.Hour(), 18)
			require.NotEqual(t, 12, s.Date.Hour())
			require.Equal(t, day.YearDay(), s.Date.YearDay())
			prev = s.Date
		}
	}
}

func TestAvailabilityNonWorkingDayIsEmpty(t *testing.T) {
	svc := newService(t, newMemStore(), nil, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), -1)

	seq, err := svc.Availability(context.Background(), 7, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, slices.Collect(seq))
}

func TestAvailabilityIsRestartable(t *testing.T) {
	st := newMemStore()
	st.appts = append(st.appts, model.Appointment{ProviderID: 7, Date: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)})
	svc := newService(t, st, nil, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), -1)

	seq, err := svc.Availability(context.Background(), 7, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)

	// early break
	n := 0
	for range seq {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestAvailabilityRejectsBadProvider(t *testing.T) {
	svc := newService(t, newMemStore(), nil, time.Now(), -1)
	_, err := svc.Availability(context.Background(), 0, time.Now())
	assert.ErrorIs(t, err, booking.ErrValidation)
}
