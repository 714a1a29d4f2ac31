package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"provider-booking-api/internal/booking"
	"provider-booking-api/internal/cache"
	"provider-booking-api/internal/model"
	"provider-booking-api/internal/notification"
	"provider-booking-api/internal/storage"
	"provider-booking-api/internal/store"
)

type Handler struct {
	store         *store.Store
	booking       *booking.Service
	notifications *notification.Service
	providers     *cache.ProviderCache
	files         *storage.Bucket
	log           *logrus.Logger
	opts          Options
	now           func() time.Time
}

// Options carries token and upload settings.
type Options struct {
	Secret         string
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	MaxUploadBytes int64
}

type Deps struct {
	Store         *store.Store
	Booking       *booking.Service
	Notifications *notification.Service
	Providers     *cache.ProviderCache
	Files         *storage.Bucket
	Log           *logrus.Logger
}

func New(d Deps, opts Options) *Handler {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}
	return &Handler{
		store:         d.Store,
		booking:       d.Booking,
		notifications: d.Notifications,
		providers:     d.Providers,
		files:         d.Files,
		log:           d.Log,
		opts:          opts,
		now:           time.Now,
	}
}

const errInternal = "Internal server error"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps err to a response. Business-rule errors carry their own
// message; anything else is logged and hidden behind a 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var be *booking.Error
	if errors.As(err, &be) {
		switch be.Kind {
		case booking.KindAuthorization:
			writeError(w, http.StatusUnauthorized, be.Message)
		default:
			writeError(w, http.StatusBadRequest, be.Message)
		}
		return
	}
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	h.log.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).WithError(err).Error("request failed")
	writeError(w, http.StatusInternalServerError, errInternal)
}

// decode reads a JSON body into v; false means a 400 was already written.
func decode(w http.ResponseWriter, r *http.Request, v any, msg string) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

// withURL fills the public URL of an avatar.
func (h *Handler) withURL(f *model.File) *model.File {
	if f == nil {
		return nil
	}
	out := *f
	out.URL = h.files.URL(f.Path)
	return &out
}
