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

// UsersHandler serves user administration: the roster, invitations, removal
// and role changes.
type UsersHandler struct {
	UserAdminService *service.UserAdminService
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	tenantID := r.URL.Query().Get("tenantId")

	actors, err := h.UserAdminService.List(r.Context(), actor, tenantID)
	if err != nil {
		writeUserAdminError(w, r, err)
		return
	}

	resp := adminsdk.ListActorsResponse{Actors: make([]adminsdk.ActorResponse, len(actors))}
	for i, a := range actors {
		resp.Actors[i] = toActorResponse(a)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *UsersHandler) Invite(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	var req adminsdk.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Role == "" {
		adminsdk.ErrBadRequest.WriteError(w)
		return
	}

	result, err := h.UserAdminService.Invite(r.Context(), actor, req.Email, domain.Role(req.Role), req.TenantIDs)
	if err != nil {
		writeUserAdminError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, adminsdk.InviteResponse{
		InvitationID: result.Invitation.ID,
		Email:        result.Invitation.Email,
		Role:         string(result.Invitation.Role),
		Token:        result.Token,
		ExpiresAt:    result.Invitation.ExpiresAt,
	})
}

func (h *UsersHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.AcceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		adminsdk.ErrBadRequest.WriteError(w)
		return
	}

	actor, err := h.UserAdminService.AcceptInvite(r.Context(), req.Token, req.Name, req.Password)
	if err != nil {
		writeUserAdminError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toActorResponse(actor.Public()))
}

func (h *UsersHandler) Remove(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	targetID := r.PathValue("id")

	if err := h.UserAdminService.Remove(r.Context(), actor, targetID); err != nil {
		writeUserAdminError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UsersHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	targetID := r.PathValue("id")

	var req adminsdk.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Role == "" {
		adminsdk.ErrBadRequest.WriteError(w)
		return
	}

	if err := h.UserAdminService.UpdateRole(r.Context(), actor, targetID, domain.Role(req.Role)); err != nil {
		writeUserAdminError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeUserAdminError(w http.ResponseWriter, r *http.Request, err error) {
	var weak *service.WeakPasswordError

	switch {
	case errors.Is(err, service.ErrForbidden):
		adminsdk.ErrForbidden.WriteError(w)
	case errors.Is(err, service.ErrSelfRemoval):
		adminsdk.ErrBadRequest.WithDetails("you cannot remove your own account").WriteError(w)
	case errors.Is(err, service.ErrSelfDemotion):
		adminsdk.ErrBadRequest.WithDetails("you cannot demote your own account").WriteError(w)
	case errors.Is(err, service.ErrLastAdminProtected):
		adminsdk.ErrConflict.WithDetails("the last remaining admin cannot be removed").WriteError(w)
	case errors.Is(err, service.ErrAlreadyExists):
		adminsdk.ErrConflict.WriteError(w)
	case errors.Is(err, service.ErrInvalidInvitation):
		adminsdk.ErrUnauthorized.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		adminsdk.ErrNotFound.WriteError(w)
	case errors.As(err, &weak):
		adminsdk.ErrWeakPassword.WithDetails(weak.Violations...).WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("user administration failed", "error", err)
		adminsdk.ErrServerError.WriteError(w)
	}
}
