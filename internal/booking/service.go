package booking

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"provider-booking-api/internal/model"
)

var tracer = otel.Tracer("provider-booking-api/internal/booking")

// Appointments is the slice of the appointment store the core needs.
type Appointments interface {
	// CreateAppointment inserts a, filling ID and timestamps. It must fail
	// with ErrUnavailable when a non-cancelled appointment already holds
	// the same provider and date.
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	BookedHours(ctx context.Context, providerID int64, from, to time.Time) ([]time.Time, error)
}

type Directory interface {
	UserByID(ctx context.Context, id int64) (*model.User, error)
}

type Notifier interface {
	Notify(ctx context.Context, userID int64, content string) error
}

type Recorder interface {
	ObserveBooking(outcome string)
	ObserveNotification(status string)
	ObserveAvailability(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveBooking(string)             {}
func (nopRecorder) ObserveNotification(string)        {}
func (nopRecorder) ObserveAvailability(time.Duration) {}

type Service struct {
	appts    Appointments
	users    Directory
	notifier Notifier
	schedule *Schedule
	clock    Clock
	log      *logrus.Logger
	rec      Recorder
}

type Option func(*Service)

func WithClock(c Clock) Option { return func(s *Service) { s.clock = c } }

func WithLogger(l *logrus.Logger) Option { return func(s *Service) { s.log = l } }

func WithRecorder(r Recorder) Option { return func(s *Service) { s.rec = r } }

func NewService(appts Appointments, users Directory, notifier Notifier, schedule *Schedule, opts ...Option) *Service {
	if appts == nil || users == nil || schedule == nil {
		panic("booking: appointments, directory and schedule required")
	}
	s := &Service{
		appts:    appts,
		users:    users,
		notifier: notifier,
		schedule: schedule,
		clock:    SystemClock,
		log:      logrus.StandardLogger(),
		rec:      nopRecorder{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Schedule() *Schedule { return s.schedule }
