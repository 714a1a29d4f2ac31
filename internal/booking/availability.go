package booking

import (
	"context"
	"fmt"
	"iter"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

type Slot struct {
	Date      time.Time `json:"date"`
	Available bool      `json:"available"`
}

// Availability returns the provider's slots for the calendar day of day.
// The booked hours are read once; the returned sequence can be ranged over
// any number of times and always yields the same slots in ascending order.
func (s *Service) Availability(ctx context.Context, providerID int64, day time.Time) (iter.Seq[Slot], error) {
	ctx, span := tracer.Start(ctx, "booking.availability")
	defer span.End()
	span.SetAttributes(attribute.Int64("booking.provider_id", providerID))

	if providerID <= 0 {
		return nil, ErrValidation
	}

	began := time.Now()
	defer func() { s.rec.ObserveAvailability(time.Since(began)) }()

	hours := s.schedule.Hours(day)
	if len(hours) == 0 {
		return func(func(Slot) bool) {}, nil
	}

	from, to := s.schedule.Window(day)
	booked, err := s.appts.BookedHours(ctx, providerID, from, to)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("booking: booked hours: %w", err)
	}
	taken := make(map[int64]struct{}, len(booked))
	for _, b := range booked {
		taken[b.Unix()] = struct{}{}
	}
	now := s.clock.Now()

	return func(yield func(Slot) bool) {
		for _, h := range hours {
			_, isTaken := taken[h.Unix()]
			if !yield(Slot{Date: h, Available: !isTaken && !h.Before(now)}) {
				return
			}
		}
	}, nil
}
