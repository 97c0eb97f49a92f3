package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/rbac"
	"github.com/forkful/menuboard/internal/admin/store"
	"github.com/forkful/menuboard/pkg/cryptox"
	"github.com/forkful/menuboard/pkg/idx"
)

var (
	ErrForbidden          = errors.New("forbidden")
	ErrAlreadyExists      = errors.New("already_exists")
	ErrSelfRemoval        = errors.New("self_removal")
	ErrLastAdminProtected = errors.New("last_admin_protected")
	ErrSelfDemotion       = errors.New("self_demotion")
	ErrInvalidInvitation  = errors.New("invalid_or_expired_invitation")
)

// InvitationTTL is how long an invitation can be accepted.
const InvitationTTL = 7 * 24 * time.Hour

// UserAdminService manages the actor roster: invitations, soft removal and
// role reassignment. Every operation is permission-checked against the
// caller and audited.
type UserAdminService struct {
	Store store.Store
	Audit *AuditService
	Roles *rbac.Model
}

// InviteResult pairs the stored invitation with the raw single-use token.
// The token is only ever available here; the store keeps its fingerprint.
type InviteResult struct {
	Invitation domain.Invitation
	Token      string
}

// Invite creates a pending invitation for an email.
//
// The inviter needs the user:invite permission and must be allowed to assign
// the target role (only the top role assigns roles, and never above its own
// rank). An email already held by an actor, or covered by a live pending
// invitation, is rejected with ErrAlreadyExists.
func (s *UserAdminService) Invite(ctx context.Context, inviter domain.Actor, email string, role domain.Role, tenantIDs []string) (InviteResult, error) {
	if !s.Roles.CheckPermission(&inviter, rbac.PermUserInvite) {
		return InviteResult{}, ErrForbidden
	}
	if !s.Roles.CanAssignRole(inviter.Role, role) {
		return InviteResult{}, ErrForbidden
	}

	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.Store.Actors().GetByEmail(ctx, email); err == nil {
		return InviteResult{}, ErrAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return InviteResult{}, err
	}

	if _, err := s.Store.Invitations().GetLiveByEmail(ctx, email); err == nil {
		return InviteResult{}, ErrAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return InviteResult{}, err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return InviteResult{}, err
	}

	now := time.Now().UTC()
	inv := domain.Invitation{
		ID:        idx.New().String(),
		Email:     email,
		Role:      role,
		TenantIDs: tenantIDs,
		InvitedBy: inviter.ID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(InvitationTTL),
		Status:    domain.InvitationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Invitations().Create(ctx, inv); err != nil {
		return InviteResult{}, err
	}

	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:    inviter.ID,
		Action:     domain.ActionInviteSent,
		EntityType: "invitation",
		EntityID:   inv.ID,
		NewValue: map[string]any{
			"email": email,
			"role":  string(role),
		},
	})

	return InviteResult{Invitation: inv, Token: token}, nil
}

// AcceptInvite consumes a pending invitation exactly once, creating an
// active actor with the preassigned role and tenants. The password is
// subject to the usual strength policy.
func (s *UserAdminService) AcceptInvite(ctx context.Context, token, name, password string) (domain.Actor, error) {
	inv, err := s.Store.Invitations().GetLiveByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Actor{}, ErrInvalidInvitation
		}
		return domain.Actor{}, err
	}

	if result := cryptox.ValidateStrength(password); !result.Valid {
		return domain.Actor{}, &WeakPasswordError{Violations: result.Violations}
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Actor{}, err
	}

	now := time.Now().UTC()
	actor := domain.Actor{
		ID:           idx.New().String(),
		Email:        inv.Email,
		Name:         name,
		PasswordHash: hash,
		Role:         inv.Role,
		Status:       domain.ActorActive,
		TenantIDs:    inv.TenantIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Actor creation and invitation consumption are one unit: a raced
	// second acceptance loses on MarkAccepted and rolls the actor back.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Actors().Create(ctx, actor); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAlreadyExists
			}
			return err
		}
		if err := tx.Invitations().MarkAccepted(ctx, inv.ID, actor.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidInvitation
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Actor{}, err
	}

	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:    actor.ID,
		Action:     domain.ActionInviteAccepted,
		EntityType: "invitation",
		EntityID:   inv.ID,
		Metadata: map[string]any{
			"invitedBy": inv.InvitedBy,
		},
	})

	return actor, nil
}

// Remove soft-removes an actor: status flips to SUSPENDED and every session
// is purged, so the removal takes effect immediately. The row itself stays
// so audit references remain resolvable.
//
// Removing yourself and removing the last active top-role actor are both
// refused regardless of permissions.
func (s *UserAdminService) Remove(ctx context.Context, remover domain.Actor, targetID string) error {
	if !s.Roles.CheckPermission(&remover, rbac.PermUserRemove) {
		return ErrForbidden
	}
	if remover.ID == targetID {
		return ErrSelfRemoval
	}

	target, err := s.Store.Actors().GetByID(ctx, targetID)
	if err != nil {
		return mapStoreNotFound(err)
	}

	// Only an active top-role target can be the last one standing; removing
	// an already suspended admin never changes the active count.
	if target.Role == s.Roles.TopRole() && target.Status == domain.ActorActive {
		count, err := s.Store.Actors().CountActiveWithRole(ctx, s.Roles.TopRole())
		if err != nil {
			return err
		}
		if count <= 1 {
			return ErrLastAdminProtected
		}
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Actors().UpdateStatus(ctx, targetID, domain.ActorSuspended); err != nil {
			return err
		}
		return tx.Sessions().DeleteForActor(ctx, targetID)
	})
	if err != nil {
		return err
	}

	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:    remover.ID,
		Action:     domain.ActionUserRemoved,
		EntityType: "actor",
		EntityID:   targetID,
		OldValue: map[string]any{
			"status": string(target.Status),
			"role":   string(target.Role),
		},
		NewValue: map[string]any{
			"status": string(domain.ActorSuspended),
			"role":   string(target.Role),
		},
	})
	return nil
}

// UpdateRole reassigns an actor's role. Only the top role may do this, and
// it may not demote itself (so a deployment always keeps an actor able to
// manage roles).
func (s *UserAdminService) UpdateRole(ctx context.Context, updater domain.Actor, targetID string, newRole domain.Role) error {
	if updater.Role != s.Roles.TopRole() {
		return ErrForbidden
	}
	if !s.Roles.Valid(newRole) {
		return fmt.Errorf("unknown role %q", newRole)
	}
	if updater.ID == targetID && newRole != s.Roles.TopRole() {
		return ErrSelfDemotion
	}

	target, err := s.Store.Actors().GetByID(ctx, targetID)
	if err != nil {
		return mapStoreNotFound(err)
	}
	if target.Role == newRole {
		return nil
	}

	if err := s.Store.Actors().UpdateRole(ctx, targetID, newRole); err != nil {
		return err
	}

	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:    updater.ID,
		Action:     domain.ActionRoleChanged,
		EntityType: "actor",
		EntityID:   targetID,
		OldValue:   map[string]any{"role": string(target.Role)},
		NewValue:   map[string]any{"role": string(newRole)},
	})
	return nil
}

// List returns the non-suspended roster, optionally scoped to one tenant.
// Output uses public fields only.
func (s *UserAdminService) List(ctx context.Context, viewer domain.Actor, tenantID string) ([]domain.PublicActor, error) {
	if !s.Roles.CheckPermission(&viewer, rbac.PermUserView) {
		return nil, ErrForbidden
	}

	actors, err := s.Store.Actors().List(ctx, tenantID, false)
	if err != nil {
		return nil, err
	}

	out := make([]domain.PublicActor, len(actors))
	for i, a := range actors {
		out[i] = a.Public()
	}
	return out, nil
}
