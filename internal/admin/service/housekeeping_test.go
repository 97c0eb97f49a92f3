package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/store"
	"github.com/forkful/menuboard/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingSweep(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	actor := seedActor(t, st, "staff@example.com", domain.RoleEditor)

	now := time.Now().UTC()

	live := domain.Session{
		ID: idx.New().String(), TokenHash: "live", ActorID: actor.ID,
		ExpiresAt: now.Add(time.Hour), LastActivityAt: now, CreatedAt: now,
	}
	dead := domain.Session{
		ID: idx.New().String(), TokenHash: "dead", ActorID: actor.ID,
		ExpiresAt: now.Add(-time.Hour), LastActivityAt: now, CreatedAt: now,
	}
	require.NoError(t, st.Sessions().Create(ctx, live))
	require.NoError(t, st.Sessions().Create(ctx, dead))

	stale := domain.Invitation{
		ID: idx.New().String(), Email: "stale@example.com", Role: domain.RoleViewer,
		InvitedBy: actor.ID, TokenHash: "stale-invite",
		ExpiresAt: now.Add(-time.Hour), Status: domain.InvitationPending,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, st.Invitations().Create(ctx, stale))

	hk := NewHousekeepingService(st, slog.Default(), time.Hour)
	hk.Sweep(ctx)

	_, err := st.Sessions().GetByTokenHash(ctx, "live")
	require.NoError(t, err)
	_, err = st.Sessions().GetByTokenHash(ctx, "dead")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Invitations().GetLiveByEmail(ctx, "stale@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestHousekeepingStartStop(t *testing.T) {
	st := newTestStore(t)

	hk := NewHousekeepingService(st, slog.Default(), time.Hour)
	hk.Start()
	hk.Stop()
}
