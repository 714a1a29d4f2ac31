package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"provider-booking-api/internal/booking"
	"provider-booking-api/internal/middleware"
	"provider-booking-api/internal/model"
)

const (
	errCancelForbidden = "You don't have permission to cancel this appointment."
	errCancelTooLate   = "You can only cancel appointments 2 hours in advance."
	errNotProvider     = "User is not a provider"
)

// ListAppointments pages through the caller's active appointments.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, booking.ErrValidation.Message)
			return
		}
		page = n
	}

	ctx := r.Context()
	list, err := h.store.ListAppointments(ctx, middleware.UserID(ctx), page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for i := range list {
		list[i].Provider.Avatar = h.withURL(list[i].Provider.Avatar)
	}
	writeJSON(w, http.StatusOK, list)
}

type createAppointmentRequest struct {
	ProviderID json.Number `json:"provider_id"`
	Date       string      `json:"date"`
}

// providerID accepts a JSON number or a numeric string, as older clients send both.
func (req createAppointmentRequest) providerID() (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(req.ProviderID.String()), 10, 64)
	return n, err == nil
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if !decode(w, r, &req, booking.ErrValidation.Message) {
		return
	}
	pid, ok := req.providerID()
	if !ok {
		writeError(w, http.StatusBadRequest, booking.ErrValidation.Message)
		return
	}

	ctx := r.Context()
	a, err := h.booking.CreateAppointment(ctx, booking.CreateRequest{
		RequesterID: middleware.UserID(ctx),
		ProviderID:  pid,
		Date:        req.Date,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// CancelAppointment marks the caller's appointment as canceled.
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, booking.ErrValidation.Message)
		return
	}

	ctx := r.Context()
	a, err := h.store.GetAppointment(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if a.UserID != middleware.UserID(ctx) {
		writeError(w, http.StatusUnauthorized, errCancelForbidden)
		return
	}
	now := h.now()
	if !a.Cancelable(now) {
		writeError(w, http.StatusUnauthorized, errCancelTooLate)
		return
	}
	if err := h.store.CancelAppointment(ctx, a, now); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Availability lists the provider's slots for ?date=, given as YYYY-MM-DD
// or as epoch milliseconds.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.ParseInt(chi.URLParam(r, "providerId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, booking.ErrValidation.Message)
		return
	}
	day, err := h.parseDay(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date")
		return
	}

	slots, err := h.booking.Availability(r.Context(), providerID, day)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := []booking.Slot{}
	for s := range slots {
		out = append(out, s)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) parseDay(raw string) (time.Time, error) {
	loc := h.booking.Schedule().Location()
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).In(loc), nil
	}
	return booking.ParseDay(raw, loc)
}

// Schedule lists the calling provider's appointments for ?date=.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, err := h.store.UserByID(ctx, middleware.UserID(ctx))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		h.fail(w, r, err)
		return
	}
	if u == nil || !u.Provider {
		writeError(w, http.StatusUnauthorized, errNotProvider)
		return
	}

	day, err := h.parseDay(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date")
		return
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	entries, err := h.store.ProviderSchedule(ctx, u.ID, from, from.AddDate(0, 0, 1))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for i := range entries {
		entries[i].User.Avatar = h.withURL(entries[i].User.Avatar)
	}
	writeJSON(w, http.StatusOK, entries)
}
