package sqlite

import (
	"context"
	"time"

	"github.com/forkful/menuboard/internal/admin/domain"
)

type sessionsRepo struct {
	q querier
}

const sessionColumns = `id, token_hash, actor_id, expires_at, last_activity_at,
	ip_address, user_agent, created_at`

func scanSession(row interface{ Scan(...any) error }) (domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID, &s.TokenHash, &s.ActorID, &s.ExpiresAt, &s.LastActivityAt,
		&s.IPAddress, &s.UserAgent, &s.CreatedAt,
	)
	return s, err
}

func (r *sessionsRepo) Create(ctx context.Context, s domain.Session) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sessions (id, token_hash, actor_id, expires_at, last_activity_at,
			ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.TokenHash, s.ActorID, s.ExpiresAt.UTC(), s.LastActivityAt.UTC(),
		s.IPAddress, s.UserAgent, time.Now().UTC(),
	)
	return mapConflict(err)
}

func (r *sessionsRepo) GetByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token_hash = ?`, tokenHash)
	s, err := scanSession(row)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) UpdateLastActivity(ctx context.Context, sessionID string, at time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET last_activity_at = ? WHERE id = ?`,
		at.UTC(), sessionID)
	return err
}

func (r *sessionsRepo) Delete(ctx context.Context, sessionID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

func (r *sessionsRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *sessionsRepo) DeleteForActor(ctx context.Context, actorID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE actor_id = ?`, actorID)
	return err
}

func (r *sessionsRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
