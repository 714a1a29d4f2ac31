package handler

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"provider-booking-api/internal/auth"
	"provider-booking-api/internal/middleware"
	"provider-booking-api/internal/model"
	"provider-booking-api/internal/store"
)

const (
	minPasswordLen  = 6
	errValidation   = "Validation fails"
	errUserExists   = "User already exists."
	errPasswordBad  = "Password does not match"
	errUserNotFound = "User not found"
)

type userView struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Provider bool        `json:"provider"`
	Avatar   *model.File `json:"avatar,omitempty"`
}

func (h *Handler) view(u *model.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Provider: u.Provider, Avatar: h.withURL(u.Avatar)}
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Provider bool   `json:"provider"`
}

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decode(w, r, &req, errValidation) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || !validEmail(req.Email) || len(req.Password) < minPasswordLen {
		writeError(w, http.StatusBadRequest, errValidation)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	u := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Provider:     req.Provider,
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, errUserExists)
			return
		}
		h.fail(w, r, err)
		return
	}
	if u.Provider {
		h.invalidateProviders(r)
	}

	writeJSON(w, http.StatusOK, h.view(u))
}

type updateUserRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	OldPassword     string  `json:"old_password"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirm_password"`
	AvatarID        *int64  `json:"avatar_id"`
}

func (req *updateUserRequest) valid() bool {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return false
	}
	if req.Email != nil && !validEmail(strings.ToLower(strings.TrimSpace(*req.Email))) {
		return false
	}
	if req.Password != "" {
		if req.OldPassword == "" || len(req.Password) < minPasswordLen || req.ConfirmPassword != req.Password {
			return false
		}
	}
	return true
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !decode(w, r, &req, errValidation) {
		return
	}
	if !req.valid() {
		writeError(w, http.StatusBadRequest, errValidation)
		return
	}

	ctx := r.Context()
	u, err := h.store.UserByID(ctx, middleware.UserID(ctx))
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, errUserNotFound)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if req.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.OldPassword != "" && !auth.CheckPassword(u.PasswordHash, req.OldPassword) {
		writeError(w, http.StatusUnauthorized, errPasswordBad)
		return
	}
	if req.Password != "" {
		if u.PasswordHash, err = auth.HashPassword(req.Password); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	if req.AvatarID != nil {
		f, err := h.store.FileByID(ctx, *req.AvatarID)
		if errors.Is(err, model.ErrNotFound) {
			writeError(w, http.StatusBadRequest, errValidation)
			return
		}
		if err != nil {
			h.fail(w, r, err)
			return
		}
		u.AvatarID, u.Avatar = &f.ID, f
	}

	if err := h.store.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, errUserExists)
			return
		}
		h.fail(w, r, err)
		return
	}
	if u.Provider {
		h.invalidateProviders(r)
	}

	writeJSON(w, http.StatusOK, h.view(u))
}

func (h *Handler) invalidateProviders(r *http.Request) {
	if err := h.providers.Invalidate(r.Context()); err != nil {
		h.log.WithError(err).Warn("invalidate provider cache")
	}
}

// ListProviders serves from the cache when it can; a broken cache only
// costs a database read.
func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if cached, ok, err := h.providers.Get(ctx); err != nil {
		h.log.WithError(err).Warn("read provider cache")
	} else if ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	users, err := h.store.ListProviders(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]model.ProviderSummary, 0, len(users))
	for i := range users {
		u := &users[i]
		out = append(out, model.ProviderSummary{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: h.withURL(u.Avatar)})
	}
	if err := h.providers.Set(ctx, out); err != nil {
		h.log.WithError(err).Warn("write provider cache")
	}
	writeJSON(w, http.StatusOK, out)
}
