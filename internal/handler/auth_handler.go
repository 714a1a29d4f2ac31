package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"provider-booking-api/internal/auth"
	"provider-booking-api/internal/model"
)

const errTokenInvalid = "Token invalid"

type sessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User         userView `json:"user"`
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token"`
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decode(w, r, &req, errValidation) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !validEmail(req.Email) || req.Password == "" {
		writeError(w, http.StatusBadRequest, errValidation)
		return
	}

	u, err := h.store.UserByEmail(r.Context(), req.Email)
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, errUserNotFound)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, errPasswordBad)
		return
	}

	tok, err := auth.MakeToken(u.ID, h.opts.Secret, h.opts.AccessTTL)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.store.CreateRefreshToken(r.Context(), u.ID, hash, h.now().Add(h.opts.RefreshTTL)); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{User: h.view(u), Token: tok, RefreshToken: raw})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshSession swaps a refresh token for a new pair. Presenting a
// token that was already rotated revokes every token of that user.
func (h *Handler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decode(w, r, &req, errValidation) {
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, errValidation)
		return
	}

	ctx := r.Context()
	old, err := h.store.GetRefreshTokenByHash(ctx, auth.HashRefreshToken(req.RefreshToken))
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, errTokenInvalid)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if old.Revoked {
		// reuse of a rotated token: assume theft
		if err := h.store.RevokeAllRefreshTokens(ctx, old.UserID); err != nil {
			h.log.WithError(err).WithField("user_id", old.UserID).Error("revoke refresh tokens")
		}
		h.log.WithField("user_id", old.UserID).Warn("refresh token reuse")
		writeError(w, http.StatusUnauthorized, errTokenInvalid)
		return
	}
	if !h.now().Before(old.ExpiresAt) {
		writeError(w, http.StatusUnauthorized, errTokenInvalid)
		return
	}

	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	err = h.store.RotateRefreshToken(ctx, old.ID, uuid.NewString(), old.UserID, hash, h.now().Add(h.opts.RefreshTTL))
	if errors.Is(err, model.ErrNotFound) {
		// lost a race with a concurrent refresh of the same token
		writeError(w, http.StatusUnauthorized, errTokenInvalid)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	tok, err := auth.MakeToken(old.UserID, h.opts.Secret, h.opts.AccessTTL)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok, "refresh_token": raw})
}
