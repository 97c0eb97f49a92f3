package rbac_test

import (
	"testing"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/rbac"
	"github.com/stretchr/testify/require"
)

func TestRankOrdering(t *testing.T) {
	t.Parallel()
	m := rbac.ThreeTier()

	require.Less(t, m.Rank(domain.RoleViewer), m.Rank(domain.RoleEditor))
	require.Less(t, m.Rank(domain.RoleEditor), m.Rank(domain.RoleAdmin))
	require.Equal(t, -1, m.Rank(domain.Role("SOUS_CHEF")))
}

func TestHasRole(t *testing.T) {
	t.Parallel()
	m := rbac.ThreeTier()

	require.True(t, m.HasRole(domain.RoleAdmin, domain.RoleViewer))
	require.False(t, m.HasRole(domain.RoleViewer, domain.RoleAdmin))

	// Every role satisfies itself.
	for _, r := range m.Roles() {
		require.True(t, m.HasRole(r, r), "role %s", r)
	}

	require.False(t, m.HasRole(domain.Role("SOUS_CHEF"), domain.RoleViewer))
	require.False(t, m.HasRole(domain.RoleAdmin, domain.Role("SOUS_CHEF")))
}

func TestCheckPermission(t *testing.T) {
	t.Parallel()
	m := rbac.ThreeTier()

	admin := &domain.Actor{Role: domain.RoleAdmin, Status: domain.ActorActive}
	editor := &domain.Actor{Role: domain.RoleEditor, Status: domain.ActorActive}
	viewer := &domain.Actor{Role: domain.RoleViewer, Status: domain.ActorActive}

	require.True(t, m.CheckPermission(admin, rbac.PermUserInvite))
	require.False(t, m.CheckPermission(editor, rbac.PermUserInvite))
	require.True(t, m.CheckPermission(editor, rbac.PermMenuUpdate))
	require.False(t, m.CheckPermission(viewer, rbac.PermMenuUpdate))
	require.True(t, m.CheckPermission(viewer, rbac.PermMenuView))
	require.False(t, m.CheckPermission(nil, rbac.PermMenuView))

	// Membership is exact: everything granted is reported, nothing else.
	for _, p := range m.PermissionsOf(domain.RoleViewer) {
		require.True(t, m.CheckPermission(viewer, p))
	}
}

func TestThreeTierIsHierarchical(t *testing.T) {
	t.Parallel()
	m := rbac.ThreeTier()

	editorPerms := m.PermissionsOf(domain.RoleEditor)
	admin := &domain.Actor{Role: domain.RoleAdmin, Status: domain.ActorActive}
	for _, p := range editorPerms {
		require.True(t, m.CheckPermission(admin, p), "admin missing editor permission %s", p)
	}
}

func TestTwoTierSharesContentSurface(t *testing.T) {
	t.Parallel()
	m := rbac.TwoTier()

	editor := &domain.Actor{Role: domain.RoleEditor, Status: domain.ActorActive}
	require.True(t, m.CheckPermission(editor, rbac.PermMenuUpdate))
	require.True(t, m.CheckPermission(editor, rbac.PermContactUpdate))
	require.False(t, m.CheckPermission(editor, rbac.PermUserInvite))
	require.False(t, m.Valid(domain.RoleViewer))
	require.Equal(t, domain.RoleAdmin, m.TopRole())
	require.Equal(t, domain.RoleEditor, m.LowestRole())
}

func TestCanAssignRole(t *testing.T) {
	t.Parallel()
	m := rbac.ThreeTier()

	require.True(t, m.CanAssignRole(domain.RoleAdmin, domain.RoleAdmin))
	require.True(t, m.CanAssignRole(domain.RoleAdmin, domain.RoleEditor))
	require.True(t, m.CanAssignRole(domain.RoleAdmin, domain.RoleViewer))
	require.False(t, m.CanAssignRole(domain.RoleEditor, domain.RoleViewer))
	require.False(t, m.CanAssignRole(domain.RoleViewer, domain.RoleViewer))
	require.False(t, m.CanAssignRole(domain.RoleAdmin, domain.Role("SOUS_CHEF")))
}
