package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"provider-booking-api/internal/middleware"
	"provider-booking-api/internal/model"
)

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := middleware.UserID(ctx)
	u, err := h.store.UserByID(ctx, uid)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		h.fail(w, r, err)
		return
	}
	if u == nil || !u.Provider {
		writeError(w, http.StatusUnauthorized, "Only provider can load notifications")
		return
	}

	list, err := h.notifications.List(ctx, uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n, err := h.notifications.MarkRead(ctx, chi.URLParam(r, "id"), middleware.UserID(ctx))
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.log.WithError(err).Warn("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
