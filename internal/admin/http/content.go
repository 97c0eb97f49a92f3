package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/service"
	"github.com/forkful/menuboard/internal/admin/store"
	"github.com/forkful/menuboard/pkg/adminsdk"
	"github.com/forkful/menuboard/pkg/httpx"
	"github.com/forkful/menuboard/pkg/slogx"
)

// ContentHandler serves the content mutation surface. Each request gets a
// DataManager bound to the authenticated actor and the target tenant, so
// every mutation carries attribution.
type ContentHandler struct {
	Store        store.Store
	AuditService *service.AuditService
}

// manager binds a DataManager for the request, resolving and authorizing the
// target tenant. Admins with no tenant scope may act on any tenant; everyone
// else is confined to their assigned restaurants.
func (h *ContentHandler) manager(w http.ResponseWriter, r *http.Request) (*service.DataManager, bool) {
	actor, _ := ActorFromContext(r.Context())

	tenantID := r.URL.Query().Get("tenantId")
	if tenantID == "" {
		adminsdk.ErrBadRequest.WithDetails("tenantId is required").WriteError(w)
		return nil, false
	}
	if !tenantAllowed(actor, tenantID) {
		adminsdk.ErrForbidden.WriteError(w)
		return nil, false
	}

	ip, userAgent := clientMeta(r)
	return service.NewDataManager(h.Store, h.AuditService, service.MutationContext{
		ActorID:   actor.ID,
		TenantID:  tenantID,
		IPAddress: ip,
		UserAgent: userAgent,
	}), true
}

func tenantAllowed(actor domain.Actor, tenantID string) bool {
	if len(actor.TenantIDs) == 0 {
		return actor.Role == domain.RoleAdmin
	}
	for _, id := range actor.TenantIDs {
		if id == tenantID {
			return true
		}
	}
	return false
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	dm, ok := h.manager(w, r)
	if !ok {
		return
	}

	t := domain.ContentType(r.URL.Query().Get("type"))
	if !domain.KnownContentType(t) {
		adminsdk.ErrBadRequest.WithDetails("unknown content type").WriteError(w)
		return
	}

	items, err := h.Store.Content().ListByType(r.Context(), dm.Ctx.TenantID, t)
	if err != nil {
		slogx.FromContext(r.Context()).Error("content list failed", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	out := make([]adminsdk.ContentItemResponse, len(items))
	for i, item := range items {
		out[i] = toContentResponse(item)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	dm, ok := h.manager(w, r)
	if !ok {
		return
	}

	var req adminsdk.CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Type == "" {
		adminsdk.ErrBadRequest.WriteError(w)
		return
	}

	item, err := dm.Create(r.Context(), domain.ContentType(req.Type), req.Attrs)
	if err != nil {
		writeContentError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toContentResponse(item))
}

func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	dm, ok := h.manager(w, r)
	if !ok {
		return
	}

	var req adminsdk.UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Patch) == 0 {
		adminsdk.ErrBadRequest.WriteError(w)
		return
	}

	item, err := dm.Update(r.Context(), r.PathValue("id"), req.Patch)
	if err != nil {
		writeContentError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toContentResponse(item))
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	dm, ok := h.manager(w, r)
	if !ok {
		return
	}

	if err := dm.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeContentError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	dm, ok := h.manager(w, r)
	if !ok {
		return
	}

	var req adminsdk.BulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.IDs) == 0 || len(req.Patch) == 0 {
		adminsdk.ErrBadRequest.WriteError(w)
		return
	}

	updated, err := dm.BulkUpdate(r.Context(), req.IDs, req.Patch)
	if err != nil {
		writeContentError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, adminsdk.BulkUpdateResponse{Updated: updated})
}

func (h *ContentHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	dm, ok := h.manager(w, r)
	if !ok {
		return
	}

	var req adminsdk.ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Type == "" || len(req.Updates) == 0 {
		adminsdk.ErrBadRequest.WriteError(w)
		return
	}

	updates := make([]store.SortUpdate, len(req.Updates))
	for i, u := range req.Updates {
		updates[i] = store.SortUpdate{ID: u.ID, SortOrder: u.SortOrder}
	}

	if err := dm.Reorder(r.Context(), domain.ContentType(req.Type), updates); err != nil {
		writeContentError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) GetWithHistory(w http.ResponseWriter, r *http.Request) {
	dm, ok := h.manager(w, r)
	if !ok {
		return
	}

	got, err := dm.GetWithHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeContentError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.ContentWithHistoryResponse{
		Current:  toContentResponse(got.Current),
		History:  toAuditEntries(got.History),
		Versions: got.Versions,
	})
}

func writeContentError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		adminsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrUnknownContentType):
		adminsdk.ErrBadRequest.WithDetails("unknown content type").WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("content mutation failed", "error", err)
		adminsdk.ErrServerError.WriteError(w)
	}
}

func toContentResponse(item domain.ContentItem) adminsdk.ContentItemResponse {
	return adminsdk.ContentItemResponse{
		ID:        item.ID,
		TenantID:  item.TenantID,
		Type:      string(item.Type),
		SortOrder: item.SortOrder,
		Attrs:     item.Attrs,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}
