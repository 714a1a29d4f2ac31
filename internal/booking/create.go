package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"provider-booking-api/internal/model"
)

type CreateRequest struct {
	RequesterID int64
	ProviderID  int64
	Date        string
}

// CreateAppointment books the hour containing req.Date with the provider.
//
// Checks run in a fixed order: request shape, provider eligibility, past
// date, slot conflict. Eligibility comes before the date rules so an
// invalid provider never reveals anything about slots.
func (s *Service) CreateAppointment(ctx context.Context, req CreateRequest) (*model.Appointment, error) {
	ctx, span := tracer.Start(ctx, "booking.create")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("booking.requester_id", req.RequesterID),
		attribute.Int64("booking.provider_id", req.ProviderID),
	)

	a, err := s.create(ctx, req)
	s.rec.ObserveBooking(outcome(err))
	if err != nil {
		span.RecordError(err)
		if KindOf(err) == 0 {
			span.SetStatus(codes.Error, "store failure")
		}
		return nil, err
	}
	return a, nil
}

func (s *Service) create(ctx context.Context, req CreateRequest) (*model.Appointment, error) {
	if req.ProviderID <= 0 || req.Date == "" {
		return nil, ErrValidation
	}
	raw, err := ParseInstant(req.Date, s.schedule.Location())
	if err != nil {
		return nil, err
	}

	provider, err := s.users.UserByID(ctx, req.ProviderID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrNotProvider
	}
	if err != nil {
		return nil, fmt.Errorf("booking: load provider: %w", err)
	}
	if !provider.Provider {
		return nil, ErrNotProvider
	}

	hourStart := StartOfHour(raw)
	if hourStart.Before(s.clock.Now()) {
		return nil, ErrPastDate
	}

	a := &model.Appointment{
		Date:       hourStart,
		UserID:     req.RequesterID,
		ProviderID: provider.ID,
	}
	// The store's partial unique index on active (provider, date) pairs is
	// the conflict check; no read precedes the insert.
	if err := s.appts.CreateAppointment(ctx, a); err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, ErrUnavailable
		}
		return nil, fmt.Errorf("booking: insert appointment: %w", err)
	}

	s.notify(ctx, a, provider)
	return a, nil
}

// notify is best effort: the appointment is already committed.
func (s *Service) notify(ctx context.Context, a *model.Appointment, provider *model.User) {
	if s.notifier == nil {
		return
	}
	fields := logrus.Fields{
		"appointment_id": a.ID,
		"provider_id":    provider.ID,
		"requester_id":   a.UserID,
	}

	name := "a client"
	if requester, err := s.users.UserByID(ctx, a.UserID); err == nil {
		name = requester.Name
	} else {
		s.log.WithFields(fields).WithError(err).Warn("load requester for notification")
	}

	if err := s.notifier.Notify(ctx, provider.ID, NotificationContent(name, a.Date, s.schedule.Location())); err != nil {
		s.rec.ObserveNotification("failed")
		s.log.WithFields(fields).WithError(err).Error("emit booking notification")
		return
	}
	s.rec.ObserveNotification("sent")
}

// NotificationContent renders the provider-facing text for a new booking.
func NotificationContent(requester string, at time.Time, loc *time.Location) string {
	if loc != nil {
		at = at.In(loc)
	}
	return fmt.Sprintf("New appointment from %s for %s", requester, at.Format("Monday, January 2 at 15:04"))
}

func outcome(err error) string {
	switch KindOf(err) {
	case 0:
		if err == nil {
			return "created"
		}
		return "error"
	case KindFormat, KindValidation:
		return "invalid"
	case KindAuthorization:
		return "not_provider"
	case KindConflict:
		return "conflict"
	}
	return "error"
}
