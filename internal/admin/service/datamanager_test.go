package service

import (
	"context"
	"testing"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/store"
	"github.com/forkful/menuboard/internal/admin/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*DataManager, *sqlite.Store) {
	t.Helper()

	st := newTestStore(t)
	audit := &AuditService{Store: st}
	dm := NewDataManager(st, audit, MutationContext{
		ActorID:   "actor-1",
		TenantID:  "t1",
		IPAddress: "203.0.113.9",
		UserAgent: "tests",
	})
	return dm, st
}

func TestDataManagerCreate(t *testing.T) {
	ctx := context.Background()
	dm, st := newTestManager(t)

	t.Run("first item lands at the first gap", func(t *testing.T) {
		item, err := dm.Create(ctx, domain.ContentMenuItem, map[string]any{"name": "Garlic Bread", "price": 6.5})
		require.NoError(t, err)
		require.Equal(t, SortOrderGap, item.SortOrder)
		require.Equal(t, "t1", item.TenantID)
	})

	t.Run("subsequent items leave gaps", func(t *testing.T) {
		item, err := dm.Create(ctx, domain.ContentMenuItem, map[string]any{"name": "Bruschetta"})
		require.NoError(t, err)
		require.Equal(t, 2*SortOrderGap, item.SortOrder)
	})

	t.Run("creation is audited with the new snapshot", func(t *testing.T) {
		entries, err := st.Audit().List(ctx, store.AuditFilter{Action: domain.ActionMenuItemAdded})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.Equal(t, "actor-1", entries[0].ActorID)
		require.Nil(t, entries[0].OldValue)
		require.NotNil(t, entries[0].NewValue)
	})

	t.Run("unknown content type is rejected", func(t *testing.T) {
		_, err := dm.Create(ctx, domain.ContentType("blog_post"), nil)
		require.ErrorIs(t, err, ErrUnknownContentType)
	})
}

func TestDataManagerUpdate(t *testing.T) {
	ctx := context.Background()
	dm, st := newTestManager(t)

	item, err := dm.Create(ctx, domain.ContentMenuItem, map[string]any{"name": "Carbonara", "price": 18.0})
	require.NoError(t, err)

	t.Run("patch applies and both snapshots are audited", func(t *testing.T) {
		updated, err := dm.Update(ctx, item.ID, map[string]any{"price": 19.5})
		require.NoError(t, err)
		require.Equal(t, 19.5, updated.Attrs["price"])
		require.Equal(t, "Carbonara", updated.Attrs["name"])

		entries, err := st.Audit().List(ctx, store.AuditFilter{Action: domain.ActionMenuItemUpdated})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Contains(t, entries[0].Changes, "price")
		require.NotContains(t, entries[0].Changes, "name")
	})

	t.Run("availability-only patch audits as stock change", func(t *testing.T) {
		_, err := dm.Update(ctx, item.ID, map[string]any{"isAvailable": false})
		require.NoError(t, err)

		entries, err := st.Audit().List(ctx, store.AuditFilter{Action: domain.ActionMenuItemStockChanged})
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := dm.Update(ctx, "missing", map[string]any{"price": 1})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cross-tenant ids read as absent", func(t *testing.T) {
		other := NewDataManager(st, dm.Audit, MutationContext{ActorID: "actor-2", TenantID: "t2"})
		_, err := other.Update(ctx, item.ID, map[string]any{"price": 1})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDataManagerDelete(t *testing.T) {
	ctx := context.Background()
	dm, st := newTestManager(t)

	item, err := dm.Create(ctx, domain.ContentImage, map[string]any{"url": "/img/interior.jpg"})
	require.NoError(t, err)

	require.NoError(t, dm.Delete(ctx, item.ID))

	_, err = st.Content().GetByID(ctx, item.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	entries, err := st.Audit().List(ctx, store.AuditFilter{Action: domain.ActionImageDeleted})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].OldValue)
	require.Nil(t, entries[0].NewValue)

	require.ErrorIs(t, dm.Delete(ctx, item.ID), ErrNotFound)
}

func TestDataManagerBulkUpdate(t *testing.T) {
	ctx := context.Background()
	dm, st := newTestManager(t)

	first, err := dm.Create(ctx, domain.ContentMenuItem, map[string]any{"name": "One", "isAvailable": true})
	require.NoError(t, err)
	second, err := dm.Create(ctx, domain.ContentMenuItem, map[string]any{"name": "Two", "isAvailable": true})
	require.NoError(t, err)

	t.Run("one audit entry per entity, each flagged", func(t *testing.T) {
		updated, err := dm.BulkUpdate(ctx, []string{first.ID, second.ID}, map[string]any{"isAvailable": false})
		require.NoError(t, err)
		require.Equal(t, 2, updated)

		entries, err := st.Audit().List(ctx, store.AuditFilter{Action: domain.ActionMenuItemStockChanged})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		for _, e := range entries {
			require.Equal(t, true, e.Metadata["bulkOperation"])
			require.Equal(t, float64(2), e.Metadata["batchSize"])
		}
	})

	t.Run("per-entity history includes the bulk edit", func(t *testing.T) {
		history, err := dm.Audit.EntityHistory(ctx, string(domain.ContentMenuItem), first.ID)
		require.NoError(t, err)
		require.Len(t, history, 2) // create + bulk update
	})

	t.Run("a missing id rolls back the whole batch", func(t *testing.T) {
		before, err := st.Content().GetByID(ctx, first.ID)
		require.NoError(t, err)

		_, err = dm.BulkUpdate(ctx, []string{first.ID, "missing"}, map[string]any{"isAvailable": true})
		require.ErrorIs(t, err, ErrNotFound)

		after, err := st.Content().GetByID(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, before.Attrs["isAvailable"], after.Attrs["isAvailable"])
	})
}

func TestDataManagerReorder(t *testing.T) {
	ctx := context.Background()
	dm, st := newTestManager(t)

	first, err := dm.Create(ctx, domain.ContentMenuItem, map[string]any{"name": "One"})
	require.NoError(t, err)
	second, err := dm.Create(ctx, domain.ContentMenuItem, map[string]any{"name": "Two"})
	require.NoError(t, err)

	t.Run("swaps orders atomically and audits one event", func(t *testing.T) {
		err := dm.Reorder(ctx, domain.ContentMenuItem, []store.SortUpdate{
			{ID: first.ID, SortOrder: second.SortOrder},
			{ID: second.ID, SortOrder: first.SortOrder},
		})
		require.NoError(t, err)

		items, err := st.Content().ListByType(ctx, "t1", domain.ContentMenuItem)
		require.NoError(t, err)
		require.Equal(t, second.ID, items[0].ID)

		entries, err := st.Audit().List(ctx, store.AuditFilter{Action: domain.ActionUpdate, EntityID: "multiple"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, true, entries[0].Metadata["reorder"])
		require.ElementsMatch(t, []any{first.ID, second.ID}, entries[0].Metadata["affectedIds"])
	})

	t.Run("a bad id leaves every order untouched", func(t *testing.T) {
		before, err := st.Content().ListByType(ctx, "t1", domain.ContentMenuItem)
		require.NoError(t, err)

		err = dm.Reorder(ctx, domain.ContentMenuItem, []store.SortUpdate{
			{ID: first.ID, SortOrder: 999},
			{ID: "missing", SortOrder: 1},
		})
		require.ErrorIs(t, err, ErrNotFound)

		after, err := st.Content().ListByType(ctx, "t1", domain.ContentMenuItem)
		require.NoError(t, err)
		require.Equal(t, before, after)
	})
}

func TestGetWithHistory(t *testing.T) {
	ctx := context.Background()
	dm, _ := newTestManager(t)

	item, err := dm.Create(ctx, domain.ContentMenuItem, map[string]any{"name": "One", "price": 10.0})
	require.NoError(t, err)
	_, err = dm.Update(ctx, item.ID, map[string]any{"price": 11.0})
	require.NoError(t, err)
	_, err = dm.Update(ctx, item.ID, map[string]any{"price": 12.0})
	require.NoError(t, err)

	got, err := dm.GetWithHistory(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, 12.0, got.Current.Attrs["price"])
	require.Len(t, got.History, 3)
	require.Equal(t, 4, got.Versions)
}
