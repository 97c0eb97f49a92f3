package service

import (
	"context"
	"testing"
	"time"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/store"
	"github.com/stretchr/testify/require"
)

func TestComputeChanges(t *testing.T) {
	t.Parallel()

	t.Run("only differing keys appear", func(t *testing.T) {
		changes := ComputeChanges(
			map[string]any{"a": 1, "b": 2},
			map[string]any{"a": 1, "b": 3},
		)
		require.Len(t, changes, 1)
		require.NotContains(t, changes, "a")
		require.Equal(t, domain.FieldChange{From: 2, To: 3}, changes["b"])
	})

	t.Run("added and removed keys are changes", func(t *testing.T) {
		changes := ComputeChanges(
			map[string]any{"gone": "x"},
			map[string]any{"added": "y"},
		)
		require.Len(t, changes, 2)
		require.Equal(t, "x", changes["gone"].From)
		require.Nil(t, changes["gone"].To)
		require.Equal(t, "y", changes["added"].To)
	})

	t.Run("identical snapshots yield nil", func(t *testing.T) {
		snap := map[string]any{"a": []any{1, 2, 3}}
		require.Nil(t, ComputeChanges(snap, snap))
	})

	t.Run("array order matters", func(t *testing.T) {
		changes := ComputeChanges(
			map[string]any{"tags": []any{"a", "b"}},
			map[string]any{"tags": []any{"b", "a"}},
		)
		require.Contains(t, changes, "tags")
	})
}

func TestAuditRecord(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &AuditService{Store: st}

	t.Run("computes and persists the diff", func(t *testing.T) {
		svc.Record(ctx, domain.AuditEntry{
			TenantID:   "t1",
			ActorID:    "actor-1",
			Action:     domain.ActionUpdate,
			EntityType: "menu_item",
			EntityID:   "item-1",
			OldValue:   map[string]any{"a": 1, "b": 2},
			NewValue:   map[string]any{"a": 1, "b": 3},
		})

		entries, err := svc.EntityHistory(ctx, "menu_item", "item-1")
		require.NoError(t, err)
		require.Len(t, entries, 1)

		changes := entries[0].Changes
		require.Len(t, changes, 1)
		require.NotContains(t, changes, "a")
		// Values round-trip through JSON, so numbers come back as float64.
		require.Equal(t, float64(2), changes["b"].From)
		require.Equal(t, float64(3), changes["b"].To)
	})

	t.Run("storage failure is swallowed", func(t *testing.T) {
		require.NoError(t, st.Close())
		require.NotPanics(t, func() {
			svc.Record(ctx, domain.AuditEntry{Action: domain.ActionUpdate})
		})
	})
}

func TestAuditQueries(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &AuditService{Store: st}

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		svc.Record(ctx, domain.AuditEntry{
			TenantID:   "t1",
			ActorID:    "actor-1",
			Action:     domain.ActionUpdate,
			EntityType: "menu_item",
			EntityID:   "item-1",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}
	svc.Record(ctx, domain.AuditEntry{
		TenantID:   "t2",
		ActorID:    "actor-2",
		Action:     domain.ActionDelete,
		EntityType: "image",
		EntityID:   "img-1",
		CreatedAt:  base.Add(10 * time.Minute),
	})

	t.Run("newest first", func(t *testing.T) {
		entries, err := svc.Logs(ctx, store.AuditFilter{TenantID: "t1"})
		require.NoError(t, err)
		require.Len(t, entries, 3)
		require.True(t, entries[0].CreatedAt.After(entries[2].CreatedAt))
	})

	t.Run("filter by action and actor", func(t *testing.T) {
		entries, err := svc.Logs(ctx, store.AuditFilter{Action: domain.ActionDelete})
		require.NoError(t, err)
		require.Len(t, entries, 1)

		entries, err = svc.UserActivity(ctx, "actor-2", 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "img-1", entries[0].EntityID)
	})

	t.Run("time range is inclusive", func(t *testing.T) {
		from := base
		to := base.Add(time.Minute)
		entries, err := svc.Logs(ctx, store.AuditFilter{From: &from, To: &to})
		require.NoError(t, err)
		require.Len(t, entries, 2)
	})

	t.Run("limit and offset paginate", func(t *testing.T) {
		page, err := svc.Logs(ctx, store.AuditFilter{TenantID: "t1", Limit: 2})
		require.NoError(t, err)
		require.Len(t, page, 2)

		rest, err := svc.Logs(ctx, store.AuditFilter{TenantID: "t1", Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, rest, 1)
	})
}

func TestAuditRollback(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &AuditService{Store: st}

	svc.Record(ctx, domain.AuditEntry{
		ID:         "entry-1",
		TenantID:   "t1",
		ActorID:    "actor-1",
		Action:     domain.ActionUpdate,
		EntityType: "menu_item",
		EntityID:   "item-1",
		OldValue:   map[string]any{"price": 10},
		NewValue:   map[string]any{"price": 12},
	})
	svc.Record(ctx, domain.AuditEntry{
		ID:         "entry-2",
		Action:     domain.ActionCreate,
		EntityType: "menu_item",
		EntityID:   "item-2",
		NewValue:   map[string]any{"price": 5},
	})

	t.Run("appends a RESTORE carrying the pre-image", func(t *testing.T) {
		ok, err := svc.Rollback(ctx, "entry-1", "actor-9")
		require.NoError(t, err)
		require.True(t, ok)

		entries, err := svc.Logs(ctx, store.AuditFilter{Action: domain.ActionRestore})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "item-1", entries[0].EntityID)
		require.Equal(t, float64(10), entries[0].NewValue["price"])
		require.Equal(t, "entry-1", entries[0].Metadata["rollbackOf"])

		// The original entry is untouched.
		orig, err := st.Audit().GetByID(ctx, "entry-1")
		require.NoError(t, err)
		require.Equal(t, domain.ActionUpdate, orig.Action)
	})

	t.Run("no old value means nothing to restore", func(t *testing.T) {
		ok, err := svc.Rollback(ctx, "entry-2", "actor-9")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("unknown entry", func(t *testing.T) {
		ok, err := svc.Rollback(ctx, "missing", "actor-9")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestGenerateReport(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &AuditService{Store: st}

	now := time.Now().UTC()
	svc.Record(ctx, domain.AuditEntry{TenantID: "t1", ActorID: "a1", Action: domain.ActionCreate, EntityType: "menu_item", EntityID: "m1", CreatedAt: now})
	svc.Record(ctx, domain.AuditEntry{TenantID: "t1", ActorID: "a1", Action: domain.ActionUpdate, EntityType: "menu_item", EntityID: "m1", CreatedAt: now})
	svc.Record(ctx, domain.AuditEntry{TenantID: "t1", ActorID: "a2", Action: domain.ActionDelete, EntityType: "image", EntityID: "i1", CreatedAt: now})

	from := now.Add(-time.Hour)
	to := now.Add(time.Hour)

	t.Run("flat summary", func(t *testing.T) {
		report, err := svc.GenerateReport(ctx, "t1", from, to, "")
		require.NoError(t, err)
		require.Equal(t, 3, report.TotalActions)
		require.Equal(t, 2, report.ActorCount)
		require.Len(t, report.Entries, 3)
		require.Nil(t, report.Groups)
	})

	t.Run("grouped by actor", func(t *testing.T) {
		report, err := svc.GenerateReport(ctx, "t1", from, to, "actor")
		require.NoError(t, err)
		require.Nil(t, report.Entries)
		require.Len(t, report.Groups["a1"], 2)
		require.Len(t, report.Groups["a2"], 1)
	})

	t.Run("grouped by action", func(t *testing.T) {
		report, err := svc.GenerateReport(ctx, "t1", from, to, "action")
		require.NoError(t, err)
		require.Len(t, report.Groups, 3)
	})
}
