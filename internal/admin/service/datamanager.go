package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/store"
	"github.com/forkful/menuboard/pkg/idx"
)

var (
	ErrNotFound           = errors.New("not_found")
	ErrUnknownContentType = errors.New("unknown_content_type")
)

// SortOrderGap is the spacing between freshly allocated sort orders. New
// items land at max+gap so staff can slot an item between two others without
// renumbering the rest.
const SortOrderGap = 10

// MutationContext binds every mutation to the actor and tenant performing
// it. A DataManager is constructed per request with the authenticated
// actor's context, which guarantees every content write is attributable.
type MutationContext struct {
	ActorID   string
	TenantID  string
	IPAddress string
	UserAgent string
}

// DataManager is the single entry point for content mutations. Every write
// goes through it so every write gets a before/after audit record. It never
// holds content state itself; items live in the content store and are only
// touched here.
type DataManager struct {
	Store store.Store
	Audit *AuditService
	Ctx   MutationContext
}

// NewDataManager binds a manager to one actor/tenant context.
func NewDataManager(st store.Store, audit *AuditService, mc MutationContext) *DataManager {
	return &DataManager{Store: st, Audit: audit, Ctx: mc}
}

// Create inserts a content item of the given type, allocating the next sort
// order slot, and audits the creation with the full new snapshot.
func (m *DataManager) Create(ctx context.Context, t domain.ContentType, attrs map[string]any) (domain.ContentItem, error) {
	if !domain.KnownContentType(t) {
		return domain.ContentItem{}, fmt.Errorf("%w: %q", ErrUnknownContentType, t)
	}

	maxOrder, err := m.Store.Content().MaxSortOrder(ctx, m.Ctx.TenantID, t)
	if err != nil {
		return domain.ContentItem{}, err
	}

	now := time.Now().UTC()
	item := domain.ContentItem{
		ID:        idx.New().String(),
		TenantID:  m.Ctx.TenantID,
		Type:      t,
		SortOrder: maxOrder + SortOrderGap,
		Attrs:     attrs,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.Store.Content().Create(ctx, item); err != nil {
		return domain.ContentItem{}, err
	}

	m.record(ctx, createAction(t), string(t), item.ID, nil, item.Snapshot(), nil)
	return item, nil
}

// Update applies a patch to one item and audits old and new snapshots. The
// diff between them is computed at record time. Last writer wins on
// concurrent updates of the same item.
func (m *DataManager) Update(ctx context.Context, id string, patch map[string]any) (domain.ContentItem, error) {
	item, err := m.getOwned(ctx, id)
	if err != nil {
		return domain.ContentItem{}, err
	}

	oldSnap := item.Snapshot()
	applyPatch(&item, patch)
	item.UpdatedAt = time.Now().UTC()

	if err := m.Store.Content().Update(ctx, item); err != nil {
		return domain.ContentItem{}, mapStoreNotFound(err)
	}

	m.record(ctx, updateAction(item.Type, patch), string(item.Type), item.ID, oldSnap, item.Snapshot(), nil)
	return item, nil
}

// Delete removes one item, auditing only the pre-image.
func (m *DataManager) Delete(ctx context.Context, id string) error {
	item, err := m.getOwned(ctx, id)
	if err != nil {
		return err
	}

	if err := m.Store.Content().Delete(ctx, id); err != nil {
		return mapStoreNotFound(err)
	}

	m.record(ctx, deleteAction(item.Type), string(item.Type), item.ID, item.Snapshot(), nil, nil)
	return nil
}

// BulkUpdate applies one patch to many items inside a single transaction.
// After commit it writes one audit entry per affected item, each flagged as
// part of the bulk operation, so per-item history stays complete. Returns
// the number of items updated.
func (m *DataManager) BulkUpdate(ctx context.Context, ids []string, patch map[string]any) (int, error) {
	type pair struct {
		action     domain.Action
		entityType string
		id         string
		oldValue   map[string]any
		newValue   map[string]any
	}
	var audited []pair

	err := m.Store.WithTx(ctx, func(tx store.Tx) error {
		audited = audited[:0]
		for _, id := range ids {
			item, err := tx.Content().GetByID(ctx, id)
			if err != nil {
				return mapStoreNotFound(err)
			}
			if item.TenantID != m.Ctx.TenantID {
				return ErrNotFound
			}

			oldSnap := item.Snapshot()
			applyPatch(&item, patch)
			item.UpdatedAt = time.Now().UTC()

			if err := tx.Content().Update(ctx, item); err != nil {
				return mapStoreNotFound(err)
			}
			audited = append(audited, pair{
				action:     updateAction(item.Type, patch),
				entityType: string(item.Type),
				id:         item.ID,
				oldValue:   oldSnap,
				newValue:   item.Snapshot(),
			})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	// Audit entries go out after the commit. A crash in between leaves the
	// content change unaudited, which is the accepted gap of the fail-open
	// policy.
	for _, p := range audited {
		m.record(ctx, p.action, p.entityType, p.id, p.oldValue, p.newValue, map[string]any{
			"bulkOperation": true,
			"batchSize":     len(ids),
		})
	}
	return len(audited), nil
}

// Reorder applies a batch of sort-order changes atomically and audits the
// batch as one event with entity id "multiple".
func (m *DataManager) Reorder(ctx context.Context, t domain.ContentType, updates []store.SortUpdate) error {
	if !domain.KnownContentType(t) {
		return fmt.Errorf("%w: %q", ErrUnknownContentType, t)
	}

	err := m.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, u := range updates {
			item, err := tx.Content().GetByID(ctx, u.ID)
			if err != nil {
				return mapStoreNotFound(err)
			}
			if item.TenantID != m.Ctx.TenantID || item.Type != t {
				return ErrNotFound
			}
			if err := tx.Content().UpdateSortOrder(ctx, u.ID, u.SortOrder); err != nil {
				return mapStoreNotFound(err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	ids := make([]string, len(updates))
	for i, u := range updates {
		ids[i] = u.ID
	}
	m.record(ctx, domain.ActionUpdate, string(t), "multiple", nil, nil, map[string]any{
		"reorder":     true,
		"affectedIds": ids,
	})
	return nil
}

// WithHistory pairs a live item with its audit trail.
type WithHistory struct {
	Current  domain.ContentItem  `json:"current"`
	History  []domain.AuditEntry `json:"history"`
	Versions int                 `json:"versions"`
}

// GetWithHistory returns an item alongside its full newest-first history.
// Versions counts the live state plus one per recorded change.
func (m *DataManager) GetWithHistory(ctx context.Context, id string) (WithHistory, error) {
	item, err := m.getOwned(ctx, id)
	if err != nil {
		return WithHistory{}, err
	}

	history, err := m.Audit.EntityHistory(ctx, string(item.Type), item.ID)
	if err != nil {
		return WithHistory{}, err
	}

	return WithHistory{Current: item, History: history, Versions: len(history) + 1}, nil
}

// CreateMenuItem, UpdateMenuItem and friends are thin typed veneers kept for
// handler readability; the loosely-typed Create/Update/Delete carry the
// actual behavior.

func (m *DataManager) CreateMenuItem(ctx context.Context, attrs map[string]any) (domain.ContentItem, error) {
	return m.Create(ctx, domain.ContentMenuItem, attrs)
}

func (m *DataManager) UpdateHours(ctx context.Context, id string, patch map[string]any) (domain.ContentItem, error) {
	return m.Update(ctx, id, patch)
}

func (m *DataManager) UploadImage(ctx context.Context, attrs map[string]any) (domain.ContentItem, error) {
	return m.Create(ctx, domain.ContentImage, attrs)
}

func (m *DataManager) getOwned(ctx context.Context, id string) (domain.ContentItem, error) {
	item, err := m.Store.Content().GetByID(ctx, id)
	if err != nil {
		return domain.ContentItem{}, mapStoreNotFound(err)
	}
	// Cross-tenant ids read as absent, not forbidden.
	if item.TenantID != m.Ctx.TenantID {
		return domain.ContentItem{}, ErrNotFound
	}
	return item, nil
}

func (m *DataManager) record(ctx context.Context, action domain.Action, entityType, entityID string, oldValue, newValue, metadata map[string]any) {
	m.Audit.Record(ctx, domain.AuditEntry{
		TenantID:   m.Ctx.TenantID,
		ActorID:    m.Ctx.ActorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValue:   oldValue,
		NewValue:   newValue,
		Metadata:   metadata,
		IPAddress:  m.Ctx.IPAddress,
		UserAgent:  m.Ctx.UserAgent,
	})
}

func applyPatch(item *domain.ContentItem, patch map[string]any) {
	if item.Attrs == nil {
		item.Attrs = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		if k == "sortOrder" {
			if n, ok := toInt(v); ok {
				item.SortOrder = n
			}
			continue
		}
		item.Attrs[k] = v
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func createAction(t domain.ContentType) domain.Action {
	switch t {
	case domain.ContentMenuItem:
		return domain.ActionMenuItemAdded
	case domain.ContentImage:
		return domain.ActionImageUploaded
	}
	return domain.ActionCreate
}

func updateAction(t domain.ContentType, patch map[string]any) domain.Action {
	switch t {
	case domain.ContentMenuItem:
		if len(patch) == 1 {
			if _, ok := patch["isAvailable"]; ok {
				return domain.ActionMenuItemStockChanged
			}
		}
		return domain.ActionMenuItemUpdated
	case domain.ContentHours:
		return domain.ActionHoursUpdated
	case domain.ContentContact:
		return domain.ActionContactUpdated
	}
	return domain.ActionUpdate
}

func deleteAction(t domain.ContentType) domain.Action {
	switch t {
	case domain.ContentMenuItem:
		return domain.ActionMenuItemRemoved
	case domain.ContentImage:
		return domain.ActionImageDeleted
	}
	return domain.ActionDelete
}

func mapStoreNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
