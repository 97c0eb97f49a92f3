package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/service"
	"github.com/forkful/menuboard/pkg/adminsdk"
	"github.com/forkful/menuboard/pkg/httpx"
	"github.com/forkful/menuboard/pkg/slogx"
)

// AuthHandler serves the authentication endpoints.
type AuthHandler struct {
	AuthService *service.AuthService

	// ExposeResetTokens returns the reset token in the forgot-password
	// response. Only for deployments without a mail transport (dev, tests).
	ExposeResetTokens bool
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		adminsdk.ErrBadRequest.WriteError(w)
		return
	}

	ip, userAgent := clientMeta(r)
	result, err := h.AuthService.Login(r.Context(), req.Email, req.Password, ip, userAgent)
	if err != nil {
		writeAuthError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.Expires,
		Actor:     toActorResponse(result.Actor),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := TokenFromContext(r.Context())
	if token == "" {
		token = bearerToken(r)
	}
	if token == "" {
		adminsdk.ErrUnauthorized.WriteError(w)
		return
	}

	if err := h.AuthService.Logout(r.Context(), token); err != nil {
		slogx.FromContext(r.Context()).Error("logout failed", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := TokenFromContext(r.Context())

	fresh, err := h.AuthService.Tokens.Refresh(token)
	if err != nil {
		adminsdk.ErrUnauthorized.WriteError(w)
		return
	}

	// The old session keeps its expiry; the refreshed token gets its own row
	// so either credential can be revoked independently.
	actor, _ := ActorFromContext(r.Context())
	ip, userAgent := clientMeta(r)
	if err := h.AuthService.AdoptToken(r.Context(), actor.ID, fresh, ip, userAgent); err != nil {
		slogx.FromContext(r.Context()).Error("failed to store refreshed session", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.RefreshResponse{Token: fresh})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	httpx.WriteJSON(w, http.StatusOK, toActorResponse(actor.Public()))
}

func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.RequestPasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		adminsdk.ErrBadRequest.WriteError(w)
		return
	}

	token, err := h.AuthService.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		slogx.FromContext(r.Context()).Error("password reset request failed", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	// Success regardless of whether the account exists.
	resp := adminsdk.RequestPasswordResetResponse{Success: true}
	if h.ExposeResetTokens {
		resp.ResetToken = token
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		adminsdk.ErrBadRequest.WriteError(w)
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeAuthError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	var req adminsdk.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		adminsdk.ErrBadRequest.WriteError(w)
		return
	}

	if err := h.AuthService.ChangePassword(r.Context(), actor.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeAuthError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var weak *service.WeakPasswordError

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		adminsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrAccountDisabled):
		adminsdk.ErrAccountDisabled.WriteError(w)
	case errors.Is(err, service.ErrWrongPassword):
		adminsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrInvalidResetToken):
		adminsdk.ErrUnauthorized.WriteError(w)
	case errors.Is(err, service.ErrDuplicateEmail):
		adminsdk.ErrConflict.WriteError(w)
	case errors.As(err, &weak):
		adminsdk.ErrWeakPassword.WithDetails(weak.Violations...).WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("auth operation failed", "error", err)
		adminsdk.ErrServerError.WriteError(w)
	}
}

func toActorResponse(a domain.PublicActor) adminsdk.ActorResponse {
	return adminsdk.ActorResponse{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Role:        string(a.Role),
		Status:      string(a.Status),
		TenantIDs:   a.TenantIDs,
		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
	}
}
