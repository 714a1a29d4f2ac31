package model

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Provider     bool
	AvatarID     *int64
	Avatar       *File
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// File is an uploaded object. Path is the storage key; URL is derived.
type File struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"-"`
}

type Appointment struct {
	ID         int64      `json:"id"`
	Date       time.Time  `json:"date"`
	UserID     int64      `json:"user_id"`
	ProviderID int64      `json:"provider_id"`
	CanceledAt *time.Time `json:"canceled_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Cancelable reports whether the appointment is still at least
// CancelLeadTime ahead of now.
func (a *Appointment) Cancelable(now time.Time) bool {
	return a.CanceledAt == nil && !now.Add(CancelLeadTime).After(a.Date)
}

const CancelLeadTime = 2 * time.Hour

// Participant is the minimal projection of a user attached to listings.
type Participant struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Avatar *File  `json:"avatar"`
}

// AppointmentListing is one row of the requester's appointment list.
type AppointmentListing struct {
	ID       int64       `json:"id"`
	Date     time.Time   `json:"date"`
	Provider Participant `json:"provider"`
}

// ScheduleEntry is one row of a provider's daily schedule.
type ScheduleEntry struct {
	ID   int64       `json:"id"`
	Date time.Time   `json:"date"`
	User Participant `json:"user"`
}

// ProviderSummary is the public view of a provider in listings.
type ProviderSummary struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar *File  `json:"avatar"`
}
