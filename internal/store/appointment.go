package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"provider-booking-api/internal/booking"
	"provider-booking-api/internal/model"
)

const PageSize = 10

// CreateAppointment relies on the partial unique index over active
// (provider_id, date) pairs; a violation surfaces as booking.ErrUnavailable.
func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO appointments (date, user_id, provider_id)
		 VALUES ($1,$2,$3)
		 RETURNING id, created_at, updated_at`,
		a.Date, a.UserID, a.ProviderID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if violates(err, activeSlotConstraint) {
		return booking.ErrUnavailable
	}
	if err != nil {
		return fmt.Errorf("store: create appointment: %w", err)
	}
	return nil
}

// BookedHours returns the dates of the provider's active appointments in [from, to).
func (s *Store) BookedHours(ctx context.Context, providerID int64, from, to time.Time) ([]time.Time, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT date FROM appointments
		 WHERE provider_id = $1
		   AND canceled_at IS NULL
		   AND date >= $2 AND date < $3
		 ORDER BY date`, providerID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("store: booked hours: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListAppointments pages through the requester's active appointments, oldest first.
// page is 1-based.
func (s *Store) ListAppointments(ctx context.Context, userID int64, page int) ([]model.AppointmentListing, error) {
	if page < 1 {
		page = 1
	}
	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.date, p.id, p.name, f.id, f.name, f.path
		 FROM appointments a
		 JOIN users p ON p.id = a.provider_id
		 LEFT JOIN files f ON f.id = p.avatar_id
		 WHERE a.user_id = $1 AND a.canceled_at IS NULL
		 ORDER BY a.date
		 LIMIT $2 OFFSET $3`, userID, PageSize, (page-1)*PageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list appointments: %w", err)
	}
	defer rows.Close()

	out := []model.AppointmentListing{}
	for rows.Next() {
		var (
			l  model.AppointmentListing
			av nullFile
		)
		if err := rows.Scan(&l.ID, &l.Date, &l.Provider.ID, &l.Provider.Name, &av.id, &av.name, &av.path); err != nil {
			return nil, err
		}
		l.Provider.Avatar = av.file()
		out = append(out, l)
	}
	return out, rows.Err()
}

// ProviderSchedule lists the provider's active appointments in [from, to) with the requester.
func (s *Store) ProviderSchedule(ctx context.Context, providerID int64, from, to time.Time) ([]model.ScheduleEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.date, u.id, u.name, f.id, f.name, f.path
		 FROM appointments a
		 JOIN users u ON u.id = a.user_id
		 LEFT JOIN files f ON f.id = u.avatar_id
		 WHERE a.provider_id = $1
		   AND a.canceled_at IS NULL
		   AND a.date >= $2 AND a.date < $3
		 ORDER BY a.date`, providerID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("store: provider schedule: %w", err)
	}
	defer rows.Close()

	out := []model.ScheduleEntry{}
	for rows.Next() {
		var (
			e  model.ScheduleEntry
			av nullFile
		)
		if err := rows.Scan(&e.ID, &e.Date, &e.User.ID, &e.User.Name, &av.id, &av.name, &av.path); err != nil {
			return nil, err
		}
		e.User.Avatar = av.file()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, date, user_id, provider_id, canceled_at, created_at, updated_at
		 FROM appointments WHERE id = $1`, id,
	).Scan(&a.ID, &a.Date, &a.UserID, &a.ProviderID, &a.CanceledAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get appointment: %w", err)
	}
	return a, nil
}

// CancelAppointment soft-deletes; rows are never removed.
func (s *Store) CancelAppointment(ctx context.Context, a *model.Appointment, at time.Time) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE appointments SET canceled_at=$1, updated_at=NOW()
		 WHERE id=$2 AND canceled_at IS NULL
		 RETURNING canceled_at, updated_at`, at, a.ID,
	).Scan(&a.CanceledAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: cancel appointment: %w", err)
	}
	return nil
}
