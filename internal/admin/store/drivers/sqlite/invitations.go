package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/store"
)

type invitationsRepo struct {
	q querier
}

const invitationColumns = `id, email, role, tenant_ids, invited_by, token_hash,
	expires_at, status, accepted_by, created_at, updated_at`

func scanInvitation(row interface{ Scan(...any) error }) (domain.Invitation, error) {
	var (
		inv      domain.Invitation
		role     string
		tenants  string
		status   string
		accepted sql.NullString
	)
	err := row.Scan(
		&inv.ID, &inv.Email, &role, &tenants, &inv.InvitedBy, &inv.TokenHash,
		&inv.ExpiresAt, &status, &accepted, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return domain.Invitation{}, err
	}

	inv.Role = domain.Role(role)
	inv.TenantIDs = splitList(tenants)
	inv.Status = domain.InvitationStatus(status)
	inv.AcceptedBy = mapNullString(accepted)
	return inv, nil
}

func (r *invitationsRepo) Create(ctx context.Context, inv domain.Invitation) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO invitations (id, email, role, tenant_ids, invited_by, token_hash,
			expires_at, status, accepted_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		inv.ID, normalizeEmail(inv.Email), string(inv.Role), joinList(inv.TenantIDs),
		inv.InvitedBy, inv.TokenHash, inv.ExpiresAt.UTC(), string(inv.Status), now, now,
	)
	return mapConflict(err)
}

func (r *invitationsRepo) GetLiveByTokenHash(ctx context.Context, tokenHash string) (domain.Invitation, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE token_hash = ? AND status = ? AND expires_at > ?`,
		tokenHash, string(domain.InvitationPending), time.Now().UTC())
	inv, err := scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) GetLiveByEmail(ctx context.Context, email string) (domain.Invitation, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE email = ? AND status = ? AND expires_at > ?
		 ORDER BY created_at DESC LIMIT 1`,
		normalizeEmail(email), string(domain.InvitationPending), time.Now().UTC())
	inv, err := scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) MarkAccepted(ctx context.Context, invitationID, actorID string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE invitations SET status = ?, accepted_by = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(domain.InvitationAccepted), actorID, time.Now().UTC(),
		invitationID, string(domain.InvitationPending),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *invitationsRepo) ExpirePending(ctx context.Context) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		UPDATE invitations SET status = ?, updated_at = ?
		WHERE status = ? AND expires_at <= ?`,
		string(domain.InvitationExpired), now, string(domain.InvitationPending), now,
	)
	return err
}
