package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/obs"
	"github.com/forkful/menuboard/internal/admin/store"
	"github.com/forkful/menuboard/pkg/idx"
	"github.com/forkful/menuboard/pkg/slogx"
)

// DefaultAuditLimit bounds audit queries that don't request a page size.
const DefaultAuditLimit = 50

// AuditService owns the append-only audit trail. It is the only component
// that writes audit rows.
//
// Writes are fail-open: a failed insert is logged and counted but never
// surfaced to the caller, so a degraded audit store cannot block content
// edits. The admin_audit_write_failures_total metric is the signal that the
// trail has gaps.
type AuditService struct {
	Store store.Store
}

// Record appends one audit entry, filling in id and timestamp and computing
// the field-level diff when both old and new snapshots are present.
//
// Record never returns an error for a storage failure. This applies to role
// changes and removals too; whether those should instead fail closed is an
// open policy question, tracked in DESIGN.md.
func (s *AuditService) Record(ctx context.Context, e domain.AuditEntry) {
	if e.ID == "" {
		e.ID = idx.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Changes == nil && e.OldValue != nil && e.NewValue != nil {
		e.Changes = ComputeChanges(e.OldValue, e.NewValue)
	}

	if err := s.Store.Audit().Insert(ctx, e); err != nil {
		slogx.FromContext(ctx).Error("audit write failed, entry dropped",
			"error", err,
			"action", string(e.Action),
			"entity_type", e.EntityType,
			"entity_id", e.EntityID,
		)
		obs.AuditWriteFailures.WithLabelValues(string(e.Action)).Inc()
	}
}

// Logs returns entries matching the filter, newest first. Limit defaults to
// DefaultAuditLimit when unset.
func (s *AuditService) Logs(ctx context.Context, f store.AuditFilter) ([]domain.AuditEntry, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultAuditLimit
	}
	return s.Store.Audit().List(ctx, f)
}

// EntityHistory returns the full newest-first history of one entity.
func (s *AuditService) EntityHistory(ctx context.Context, entityType, entityID string) ([]domain.AuditEntry, error) {
	return s.Logs(ctx, store.AuditFilter{EntityType: entityType, EntityID: entityID})
}

// UserActivity returns an actor's most recent entries.
func (s *AuditService) UserActivity(ctx context.Context, actorID string, limit int) ([]domain.AuditEntry, error) {
	return s.Logs(ctx, store.AuditFilter{ActorID: actorID, Limit: limit})
}

// Rollback records the intent to roll an entity back to the pre-image of a
// prior entry. It appends a RESTORE entry whose new value is the original
// entry's old value; applying that value to the live entity is the caller's
// job. Returns false when the entry is missing or carries no old value.
func (s *AuditService) Rollback(ctx context.Context, entryID, actorID string) (bool, error) {
	orig, err := s.Store.Audit().GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if orig.OldValue == nil {
		return false, nil
	}

	s.Record(ctx, domain.AuditEntry{
		TenantID:   orig.TenantID,
		ActorID:    actorID,
		Action:     domain.ActionRestore,
		EntityType: orig.EntityType,
		EntityID:   orig.EntityID,
		NewValue:   orig.OldValue,
		Metadata: map[string]any{
			"rollbackOf": orig.ID,
		},
	})
	return true, nil
}

// Report summarizes a tenant's audit activity over a time range.
type Report struct {
	TenantID     string                    `json:"tenantId"`
	From         time.Time                 `json:"from"`
	To           time.Time                 `json:"to"`
	TotalActions int                       `json:"totalActions"`
	ActorCount   int                       `json:"actorCount"`
	Entries      []domain.AuditEntry       `json:"entries,omitempty"`
	Groups       map[string][]domain.AuditEntry `json:"groups,omitempty"`
}

// GenerateReport builds a summary of tenant activity between from and to.
// groupBy may be "actor", "action" or "entityType"; any other value yields
// the flat entry list.
func (s *AuditService) GenerateReport(ctx context.Context, tenantID string, from, to time.Time, groupBy string) (Report, error) {
	entries, err := s.Store.Audit().List(ctx, store.AuditFilter{
		TenantID: tenantID,
		From:     &from,
		To:       &to,
	})
	if err != nil {
		return Report{}, err
	}

	actors := make(map[string]struct{})
	for _, e := range entries {
		actors[e.ActorID] = struct{}{}
	}

	report := Report{
		TenantID:     tenantID,
		From:         from,
		To:           to,
		TotalActions: len(entries),
		ActorCount:   len(actors),
	}

	switch groupBy {
	case "actor":
		report.Groups = groupEntries(entries, func(e domain.AuditEntry) string { return e.ActorID })
	case "action":
		report.Groups = groupEntries(entries, func(e domain.AuditEntry) string { return string(e.Action) })
	case "entityType":
		report.Groups = groupEntries(entries, func(e domain.AuditEntry) string { return e.EntityType })
	default:
		report.Entries = entries
	}

	return report, nil
}

func groupEntries(entries []domain.AuditEntry, key func(domain.AuditEntry) string) map[string][]domain.AuditEntry {
	groups := make(map[string][]domain.AuditEntry)
	for _, e := range entries {
		k := key(e)
		groups[k] = append(groups[k], e)
	}
	return groups
}

// ComputeChanges diffs two loosely-typed snapshots. It unions the keys of
// both maps and records a from/to pair for every key whose serialized values
// differ. The comparison is best effort for nested structures: array order
// and numeric representation matter, so a reshuffled list reads as a change.
func ComputeChanges(oldValue, newValue map[string]any) map[string]domain.FieldChange {
	changes := make(map[string]domain.FieldChange)

	keys := make(map[string]struct{}, len(oldValue)+len(newValue))
	for k := range oldValue {
		keys[k] = struct{}{}
	}
	for k := range newValue {
		keys[k] = struct{}{}
	}

	for k := range keys {
		from, fromOK := oldValue[k]
		to, toOK := newValue[k]
		if fromOK && toOK && serializedEqual(from, to) {
			continue
		}
		changes[k] = domain.FieldChange{From: from, To: to}
	}

	if len(changes) == 0 {
		return nil
	}
	return changes
}

func serializedEqual(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ab) == string(bb)
}
