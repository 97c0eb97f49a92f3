package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/service"
	"github.com/forkful/menuboard/internal/admin/store"
	"github.com/forkful/menuboard/pkg/adminsdk"
	"github.com/forkful/menuboard/pkg/httpx"
	"github.com/forkful/menuboard/pkg/slogx"
)

// AuditHandler serves read access to the audit trail plus rollback.
type AuditHandler struct {
	AuditService *service.AuditService
}

func (h *AuditHandler) Logs(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseAuditFilter(r)
	if !ok {
		adminsdk.ErrBadRequest.WriteError(w)
		return
	}

	entries, err := h.AuditService.Logs(r.Context(), filter)
	if err != nil {
		slogx.FromContext(r.Context()).Error("audit query failed", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.AuditLogsResponse{Entries: toAuditEntries(entries)})
}

func (h *AuditHandler) EntityHistory(w http.ResponseWriter, r *http.Request) {
	entityType := r.PathValue("type")
	entityID := r.PathValue("id")

	entries, err := h.AuditService.EntityHistory(r.Context(), entityType, entityID)
	if err != nil {
		slogx.FromContext(r.Context()).Error("entity history query failed", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.AuditLogsResponse{Entries: toAuditEntries(entries)})
}

func (h *AuditHandler) UserActivity(w http.ResponseWriter, r *http.Request) {
	actorID := r.PathValue("actorId")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			adminsdk.ErrBadRequest.WriteError(w)
			return
		}
		limit = n
	}

	entries, err := h.AuditService.UserActivity(r.Context(), actorID, limit)
	if err != nil {
		slogx.FromContext(r.Context()).Error("activity query failed", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.AuditLogsResponse{Entries: toAuditEntries(entries)})
}

func (h *AuditHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	entryID := r.PathValue("entryId")

	ok, err := h.AuditService.Rollback(r.Context(), entryID, actor.ID)
	if err != nil {
		slogx.FromContext(r.Context()).Error("rollback failed", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}
	if !ok {
		adminsdk.ErrNotFound.WithDetails("no entry with a restorable previous value").WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.RollbackResponse{RolledBack: true})
}

func (h *AuditHandler) Report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tenantID := q.Get("tenantId")

	from, okFrom := parseTime(q.Get("from"))
	to, okTo := parseTime(q.Get("to"))
	if tenantID == "" || !okFrom || !okTo {
		adminsdk.ErrBadRequest.WriteError(w)
		return
	}

	report, err := h.AuditService.GenerateReport(r.Context(), tenantID, from, to, q.Get("groupBy"))
	if err != nil {
		slogx.FromContext(r.Context()).Error("report generation failed", "error", err)
		adminsdk.ErrServerError.WriteError(w)
		return
	}

	resp := adminsdk.ReportResponse{
		TenantID:     report.TenantID,
		From:         report.From,
		To:           report.To,
		TotalActions: report.TotalActions,
		ActorCount:   report.ActorCount,
		Entries:      toAuditEntries(report.Entries),
	}
	if report.Groups != nil {
		resp.Groups = make(map[string][]adminsdk.AuditEntryResponse, len(report.Groups))
		for k, v := range report.Groups {
			resp.Groups[k] = toAuditEntries(v)
		}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func parseAuditFilter(r *http.Request) (store.AuditFilter, bool) {
	q := r.URL.Query()
	filter := store.AuditFilter{
		TenantID:   q.Get("tenantId"),
		ActorID:    q.Get("userId"),
		EntityType: q.Get("entityType"),
		EntityID:   q.Get("entityId"),
		Action:     domain.Action(q.Get("action")),
	}

	if raw := q.Get("startDate"); raw != "" {
		t, ok := parseTime(raw)
		if !ok {
			return store.AuditFilter{}, false
		}
		filter.From = &t
	}
	if raw := q.Get("endDate"); raw != "" {
		t, ok := parseTime(raw)
		if !ok {
			return store.AuditFilter{}, false
		}
		filter.To = &t
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return store.AuditFilter{}, false
		}
		filter.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return store.AuditFilter{}, false
		}
		filter.Offset = n
	}

	return filter, true
}

func parseTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func toAuditEntries(entries []domain.AuditEntry) []adminsdk.AuditEntryResponse {
	if entries == nil {
		return nil
	}
	out := make([]adminsdk.AuditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = toAuditEntry(e)
	}
	return out
}

func toAuditEntry(e domain.AuditEntry) adminsdk.AuditEntryResponse {
	resp := adminsdk.AuditEntryResponse{
		ID:         e.ID,
		TenantID:   e.TenantID,
		ActorID:    e.ActorID,
		Action:     string(e.Action),
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		OldValue:   e.OldValue,
		NewValue:   e.NewValue,
		Metadata:   e.Metadata,
		IPAddress:  e.IPAddress,
		CreatedAt:  e.CreatedAt,
	}
	if e.Changes != nil {
		resp.Changes = make(map[string]adminsdk.FieldChange, len(e.Changes))
		for k, c := range e.Changes {
			resp.Changes[k] = adminsdk.FieldChange{From: c.From, To: c.To}
		}
	}
	return resp
}
