package service

import (
	"context"
	"testing"
	"time"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/rbac"
	"github.com/forkful/menuboard/internal/admin/store"
	"github.com/forkful/menuboard/internal/admin/store/drivers/sqlite"
	"github.com/forkful/menuboard/pkg/cryptox"
	"github.com/forkful/menuboard/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestUserAdmin(t *testing.T) (*UserAdminService, *sqlite.Store) {
	t.Helper()

	st := newTestStore(t)
	svc := &UserAdminService{
		Store: st,
		Audit: &AuditService{Store: st},
		Roles: rbac.ThreeTier(),
	}
	return svc, st
}

func seedActor(t *testing.T, st *sqlite.Store, email string, role domain.Role) domain.Actor {
	t.Helper()

	now := time.Now().UTC()
	actor := domain.Actor{
		ID:           idx.New().String(),
		Email:        email,
		Name:         email,
		PasswordHash: "x",
		Role:         role,
		Status:       domain.ActorActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Actors().Create(context.Background(), actor))
	return actor
}

func TestInvite(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestUserAdmin(t)

	admin := seedActor(t, st, "admin@example.com", domain.RoleAdmin)
	editor := seedActor(t, st, "editor@example.com", domain.RoleEditor)

	t.Run("editors may not invite", func(t *testing.T) {
		_, err := svc.Invite(ctx, editor, "new@example.com", domain.RoleViewer, nil)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin invites with token and audit entry", func(t *testing.T) {
		result, err := svc.Invite(ctx, admin, "new@example.com", domain.RoleEditor, []string{"t1"})
		require.NoError(t, err)
		require.NotEmpty(t, result.Token)
		require.Equal(t, domain.InvitationPending, result.Invitation.Status)
		require.WithinDuration(t, time.Now().Add(InvitationTTL), result.Invitation.ExpiresAt, time.Minute)

		entries, err := st.Audit().List(ctx, store.AuditFilter{Action: domain.ActionInviteSent})
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})

	t.Run("existing actor email is rejected", func(t *testing.T) {
		_, err := svc.Invite(ctx, admin, "editor@example.com", domain.RoleViewer, nil)
		require.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("live pending invitation blocks a second one", func(t *testing.T) {
		_, err := svc.Invite(ctx, admin, "new@example.com", domain.RoleViewer, nil)
		require.ErrorIs(t, err, ErrAlreadyExists)
	})
}

func TestAcceptInvite(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestUserAdmin(t)

	admin := seedActor(t, st, "admin@example.com", domain.RoleAdmin)

	result, err := svc.Invite(ctx, admin, "new@example.com", domain.RoleEditor, []string{"t1"})
	require.NoError(t, err)

	t.Run("weak password is rejected before consumption", func(t *testing.T) {
		_, err := svc.AcceptInvite(ctx, result.Token, "New Staff", "weak")

		var weak *WeakPasswordError
		require.ErrorAs(t, err, &weak)
	})

	t.Run("creates the actor with the preassigned role", func(t *testing.T) {
		actor, err := svc.AcceptInvite(ctx, result.Token, "New Staff", testPassword)
		require.NoError(t, err)
		require.Equal(t, "new@example.com", actor.Email)
		require.Equal(t, domain.RoleEditor, actor.Role)
		require.Equal(t, []string{"t1"}, actor.TenantIDs)
		require.NoError(t, cryptox.VerifyPassword(testPassword, actor.PasswordHash))

		entries, err := st.Audit().List(ctx, store.AuditFilter{Action: domain.ActionInviteAccepted})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, admin.ID, entries[0].Metadata["invitedBy"])
	})

	t.Run("second acceptance fails", func(t *testing.T) {
		_, err := svc.AcceptInvite(ctx, result.Token, "Imposter", testPassword)
		require.ErrorIs(t, err, ErrInvalidInvitation)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.AcceptInvite(ctx, "nope", "X", testPassword)
		require.ErrorIs(t, err, ErrInvalidInvitation)
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestUserAdmin(t)

	admin := seedActor(t, st, "admin@example.com", domain.RoleAdmin)
	editor := seedActor(t, st, "editor@example.com", domain.RoleEditor)

	t.Run("self removal is refused regardless of role", func(t *testing.T) {
		require.ErrorIs(t, svc.Remove(ctx, admin, admin.ID), ErrSelfRemoval)
	})

	t.Run("last admin is protected", func(t *testing.T) {
		// admin is the sole active ADMIN here. The remover only needs the
		// permission, not a row of its own, so an unpersisted admin-role
		// caller exercises the protection without changing the count.
		caller := domain.Actor{
			ID:     idx.New().String(),
			Email:  "caller@example.com",
			Role:   domain.RoleAdmin,
			Status: domain.ActorActive,
		}
		require.ErrorIs(t, svc.Remove(ctx, caller, admin.ID), ErrLastAdminProtected)

		// A second active admin lifts the protection.
		second := seedActor(t, st, "admin2@example.com", domain.RoleAdmin)
		require.NoError(t, svc.Remove(ctx, admin, second.ID))

		got, err := st.Actors().GetByID(ctx, second.ID)
		require.NoError(t, err)
		require.Equal(t, domain.ActorSuspended, got.Status)
	})

	t.Run("suspended admin can be removed past the last active one", func(t *testing.T) {
		stale := seedActor(t, st, "admin3@example.com", domain.RoleAdmin)
		require.NoError(t, st.Actors().UpdateStatus(ctx, stale.ID, domain.ActorSuspended))

		// admin is again the only active ADMIN; the suspended target does
		// not count towards the protection.
		require.NoError(t, svc.Remove(ctx, admin, stale.ID))
	})

	t.Run("removal purges sessions and audits the status flip", func(t *testing.T) {
		now := time.Now().UTC()
		session := domain.Session{
			ID:             idx.New().String(),
			TokenHash:      cryptox.FingerprintToken("some-token"),
			ActorID:        editor.ID,
			ExpiresAt:      now.Add(time.Hour),
			LastActivityAt: now,
			CreatedAt:      now,
		}
		require.NoError(t, st.Sessions().Create(ctx, session))

		require.NoError(t, svc.Remove(ctx, admin, editor.ID))

		_, err := st.Sessions().GetByTokenHash(ctx, session.TokenHash)
		require.ErrorIs(t, err, store.ErrNotFound)

		entries, err := st.Audit().List(ctx, store.AuditFilter{Action: domain.ActionUserRemoved, EntityID: editor.ID})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Contains(t, entries[0].Changes, "status")
		require.NotContains(t, entries[0].Changes, "role")
	})

	t.Run("editors may not remove", func(t *testing.T) {
		other := seedActor(t, st, "editor2@example.com", domain.RoleEditor)
		require.ErrorIs(t, svc.Remove(ctx, other, admin.ID), ErrForbidden)
	})
}

func TestUpdateRole(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestUserAdmin(t)

	admin := seedActor(t, st, "admin@example.com", domain.RoleAdmin)
	editor := seedActor(t, st, "editor@example.com", domain.RoleEditor)

	t.Run("only the top role assigns roles", func(t *testing.T) {
		require.ErrorIs(t, svc.UpdateRole(ctx, editor, editor.ID, domain.RoleAdmin), ErrForbidden)
	})

	t.Run("self demotion is refused", func(t *testing.T) {
		require.ErrorIs(t, svc.UpdateRole(ctx, admin, admin.ID, domain.RoleEditor), ErrSelfDemotion)
	})

	t.Run("promotion is applied and audited", func(t *testing.T) {
		require.NoError(t, svc.UpdateRole(ctx, admin, editor.ID, domain.RoleAdmin))

		got, err := st.Actors().GetByID(ctx, editor.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, got.Role)

		entries, err := st.Audit().List(ctx, store.AuditFilter{Action: domain.ActionRoleChanged})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "EDITOR", entries[0].Changes["role"].From)
		require.Equal(t, "ADMIN", entries[0].Changes["role"].To)
	})
}

func TestListActors(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestUserAdmin(t)

	admin := seedActor(t, st, "admin@example.com", domain.RoleAdmin)
	editor := seedActor(t, st, "editor@example.com", domain.RoleEditor)
	editor.TenantIDs = nil

	scoped := domain.Actor{
		ID:           idx.New().String(),
		Email:        "scoped@example.com",
		PasswordHash: "x",
		Role:         domain.RoleViewer,
		Status:       domain.ActorActive,
		TenantIDs:    []string{"t1"},
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, st.Actors().Create(ctx, scoped))

	suspended := seedActor(t, st, "gone@example.com", domain.RoleViewer)
	require.NoError(t, st.Actors().UpdateStatus(ctx, suspended.ID, domain.ActorSuspended))

	t.Run("suspended actors are hidden", func(t *testing.T) {
		actors, err := svc.List(ctx, admin, "")
		require.NoError(t, err)
		require.Len(t, actors, 3)
	})

	t.Run("tenant scoping", func(t *testing.T) {
		actors, err := svc.List(ctx, admin, "t1")
		require.NoError(t, err)
		require.Len(t, actors, 1)
		require.Equal(t, scoped.ID, actors[0].ID)
	})

	t.Run("viewers may not list users", func(t *testing.T) {
		viewer := seedActor(t, st, "viewer@example.com", domain.RoleViewer)
		_, err := svc.List(ctx, viewer, "")
		require.ErrorIs(t, err, ErrForbidden)
	})
}
