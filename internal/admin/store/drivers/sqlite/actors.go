package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/store"
)

type actorsRepo struct {
	q querier
}

const actorColumns = `id, email, name, password_hash, role, status, tenant_ids,
	reset_token_hash, reset_token_expires_at, last_login_at, created_at, updated_at`

func scanActor(row interface{ Scan(...any) error }) (domain.Actor, error) {
	var (
		a          domain.Actor
		role       string
		status     string
		tenants    string
		resetHash  sql.NullString
		resetExp   sql.NullTime
		lastLogin  sql.NullTime
	)
	err := row.Scan(
		&a.ID, &a.Email, &a.Name, &a.PasswordHash, &role, &status, &tenants,
		&resetHash, &resetExp, &lastLogin, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Actor{}, err
	}

	a.Role = domain.Role(role)
	a.Status = domain.ActorStatus(status)
	a.TenantIDs = splitList(tenants)
	a.ResetTokenHash = mapNullStringPtr(resetHash)
	a.ResetTokenExpires = mapNullTimePtr(resetExp)
	a.LastLoginAt = mapNullTimePtr(lastLogin)
	return a, nil
}

func (r *actorsRepo) GetByID(ctx context.Context, id string) (domain.Actor, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+actorColumns+` FROM actors WHERE id = ?`, id)
	a, err := scanActor(row)
	if err != nil {
		return domain.Actor{}, mapNotFound(err)
	}
	return a, nil
}

func (r *actorsRepo) GetByEmail(ctx context.Context, email string) (domain.Actor, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+actorColumns+` FROM actors WHERE email = ?`, normalizeEmail(email))
	a, err := scanActor(row)
	if err != nil {
		return domain.Actor{}, mapNotFound(err)
	}
	return a, nil
}

func (r *actorsRepo) Create(ctx context.Context, a domain.Actor) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO actors (id, email, name, password_hash, role, status, tenant_ids,
			reset_token_hash, reset_token_expires_at, last_login_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, normalizeEmail(a.Email), a.Name, a.PasswordHash,
		string(a.Role), string(a.Status), joinList(a.TenantIDs),
		mapOptionalString(a.ResetTokenHash), mapOptionalTime(a.ResetTokenExpires),
		mapOptionalTime(a.LastLoginAt), now, now,
	)
	return mapConflict(err)
}

func (r *actorsRepo) List(ctx context.Context, tenantID string, includeSuspended bool) ([]domain.Actor, error) {
	query := `SELECT ` + actorColumns + ` FROM actors`
	var args []any
	if !includeSuspended {
		query += ` WHERE status != ?`
		args = append(args, string(domain.ActorSuspended))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Actor
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, err
		}
		// Tenant scoping is a list membership test, so it happens here
		// rather than in SQL against the space-delimited column.
		if tenantID != "" && !containsString(a.TenantIDs, tenantID) {
			continue
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *actorsRepo) CountActiveWithRole(ctx context.Context, role domain.Role) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM actors WHERE role = ? AND status = ?`,
		string(role), string(domain.ActorActive),
	).Scan(&count)
	return count, err
}

func (r *actorsRepo) UpdatePasswordHash(ctx context.Context, actorID, newHash string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE actors SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), actorID)
	return err
}

func (r *actorsRepo) UpdateRole(ctx context.Context, actorID string, role domain.Role) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE actors SET role = ?, updated_at = ? WHERE id = ?`,
		string(role), time.Now().UTC(), actorID)
	return err
}

func (r *actorsRepo) UpdateStatus(ctx context.Context, actorID string, status domain.ActorStatus) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE actors SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), actorID)
	return err
}

func (r *actorsRepo) UpdateLastLogin(ctx context.Context, actorID string, at time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE actors SET last_login_at = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), time.Now().UTC(), actorID)
	return err
}

func (r *actorsRepo) SetResetToken(ctx context.Context, actorID, tokenHash string, expiresAt time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE actors SET reset_token_hash = ?, reset_token_expires_at = ?, updated_at = ?
		 WHERE id = ?`,
		tokenHash, expiresAt.UTC(), time.Now().UTC(), actorID)
	return err
}

func (r *actorsRepo) GetByResetTokenHash(ctx context.Context, tokenHash string) (domain.Actor, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+actorColumns+` FROM actors
		 WHERE reset_token_hash = ? AND reset_token_expires_at > ?`,
		tokenHash, time.Now().UTC())
	a, err := scanActor(row)
	if err != nil {
		return domain.Actor{}, mapNotFound(err)
	}
	return a, nil
}

func (r *actorsRepo) ClearResetToken(ctx context.Context, actorID string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE actors SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = ?
		 WHERE id = ?`,
		time.Now().UTC(), actorID)
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func containsString(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

func mapConflict(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}
