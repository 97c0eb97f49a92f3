package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/obs"
	"github.com/forkful/menuboard/internal/admin/rbac"
	"github.com/forkful/menuboard/internal/admin/store"
	"github.com/forkful/menuboard/pkg/cryptox"
	"github.com/forkful/menuboard/pkg/idx"
	"github.com/forkful/menuboard/pkg/slogx"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// Callers must surface it verbatim in both cases so responses don't
	// reveal which accounts exist.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	ErrAccountDisabled     = errors.New("account_disabled")
	ErrDuplicateEmail      = errors.New("duplicate_email")
	ErrSessionNotFound     = errors.New("session_not_found")
	ErrSessionExpired      = errors.New("session_expired")
	ErrWrongPassword       = errors.New("wrong_current_password")
	ErrInvalidResetToken   = errors.New("invalid_or_expired_reset_token")
)

// WeakPasswordError carries every violated strength rule so a client can
// render a complete checklist in one round trip.
type WeakPasswordError struct {
	Violations []string
}

func (e *WeakPasswordError) Error() string {
	return fmt.Sprintf("weak_password: %s", strings.Join(e.Violations, "; "))
}

const (
	// DefaultSessionTTL is the absolute session lifetime.
	DefaultSessionTTL = 24 * time.Hour

	// ResetTokenTTL bounds how long a password reset link stays live.
	ResetTokenTTL = time.Hour
)

// AuthService handles authentication and credential lifecycle: registration,
// login/logout, session validation, reset and change of passwords. It is the
// only writer of session rows.
type AuthService struct {
	Store  store.Store
	Tokens *TokenService
	Audit  *AuditService
	Roles  *rbac.Model

	SessionTTL time.Duration
}

// Register creates a new active actor. Role defaults to the model's lowest
// privilege tier when empty. Returns ErrDuplicateEmail when the email is
// taken and *WeakPasswordError when the password fails policy.
func (s *AuthService) Register(ctx context.Context, email, password, name string, role domain.Role) (domain.Actor, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if role == "" {
		role = s.Roles.LowestRole()
	}
	if !s.Roles.Valid(role) {
		return domain.Actor{}, fmt.Errorf("unknown role %q", role)
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
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.ActorActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Actors().Create(ctx, actor); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Actor{}, ErrDuplicateEmail
		}
		return domain.Actor{}, err
	}

	return actor, nil
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token   string
	Actor   domain.PublicActor
	Expires time.Time
}

// Login authenticates an email/password pair and opens a session.
//
// Steps:
//  1. Look up the actor; unknown email falls through to the same
//     ErrInvalidCredentials as a wrong password.
//  2. Verify the password before the status check so timing and errors stay
//     uniform for attackers probing account state.
//  3. Reject suspended accounts.
//  4. Issue a signed token, persist a session keyed by its fingerprint,
//     stamp last_login_at and append a LOGIN audit entry.
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (LoginResult, error) {
	log := slogx.FromContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))

	actor, err := s.Store.Actors().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			obs.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if cryptox.VerifyPassword(password, actor.PasswordHash) != nil {
		obs.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		return LoginResult{}, ErrInvalidCredentials
	}

	if !actor.IsActive() {
		obs.LoginAttempts.WithLabelValues("disabled").Inc()
		return LoginResult{}, ErrAccountDisabled
	}

	now := time.Now().UTC()
	expires := now.Add(s.sessionTTL())

	token, err := s.Tokens.Issue(actor, s.sessionTTL())
	if err != nil {
		return LoginResult{}, err
	}

	session := domain.Session{
		ID:             idx.New().String(),
		TokenHash:      cryptox.FingerprintToken(token),
		ActorID:        actor.ID,
		ExpiresAt:      expires,
		LastActivityAt: now,
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
		CreatedAt:      now,
	}
	if err := s.Store.Sessions().Create(ctx, session); err != nil {
		return LoginResult{}, err
	}

	if err := s.Store.Actors().UpdateLastLogin(ctx, actor.ID, now); err != nil {
		log.Warn("failed to stamp last login", "error", err, "actor_id", actor.ID)
	}

	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:    actor.ID,
		Action:     domain.ActionLogin,
		EntityType: "actor",
		EntityID:   actor.ID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	})
	obs.LoginAttempts.WithLabelValues("success").Inc()

	return LoginResult{Token: token, Actor: actor.Public(), Expires: expires}, nil
}

// AdoptToken opens a session row for an externally issued token (token
// refresh). The old session is untouched so either credential can be revoked
// on its own.
func (s *AuthService) AdoptToken(ctx context.Context, actorID, token, ipAddress, userAgent string) error {
	now := time.Now().UTC()
	return s.Store.Sessions().Create(ctx, domain.Session{
		ID:             idx.New().String(),
		TokenHash:      cryptox.FingerprintToken(token),
		ActorID:        actorID,
		ExpiresAt:      now.Add(s.sessionTTL()),
		LastActivityAt: now,
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
		CreatedAt:      now,
	})
}

// Logout deletes the session for a token. It is idempotent: logging out an
// absent session still succeeds, and only a real deletion is audited.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	hash := cryptox.FingerprintToken(token)

	session, err := s.Store.Sessions().GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	deleted, err := s.Store.Sessions().DeleteByTokenHash(ctx, hash)
	if err != nil {
		return err
	}
	if deleted {
		s.Audit.Record(ctx, domain.AuditEntry{
			ActorID:    session.ActorID,
			Action:     domain.ActionLogout,
			EntityType: "actor",
			EntityID:   session.ActorID,
		})
	}
	return nil
}

// ValidateSession resolves a bearer token to its actor. The token signature
// is checked first (cheap, no I/O), then the session row is loaded by token
// fingerprint. Expired sessions are deleted as a side effect. On success the
// session's last-activity timestamp is bumped.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (domain.Actor, error) {
	if _, err := s.Tokens.Verify(token); err != nil {
		if errors.Is(err, ErrExpiredToken) {
			// Token expiry and session expiry coincide; clean up the row.
			_, _ = s.Store.Sessions().DeleteByTokenHash(ctx, cryptox.FingerprintToken(token))
			return domain.Actor{}, ErrSessionExpired
		}
		return domain.Actor{}, ErrSessionNotFound
	}

	hash := cryptox.FingerprintToken(token)
	session, err := s.Store.Sessions().GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Actor{}, ErrSessionNotFound
		}
		return domain.Actor{}, err
	}

	now := time.Now().UTC()
	if session.Expired(now) {
		_ = s.Store.Sessions().Delete(ctx, session.ID)
		return domain.Actor{}, ErrSessionExpired
	}

	actor, err := s.Store.Actors().GetByID(ctx, session.ActorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Actor{}, ErrSessionNotFound
		}
		return domain.Actor{}, err
	}
	if !actor.IsActive() {
		return domain.Actor{}, ErrAccountDisabled
	}

	if err := s.Store.Sessions().UpdateLastActivity(ctx, session.ID, now); err != nil {
		slogx.FromContext(ctx).Warn("failed to bump session activity", "error", err, "session_id", session.ID)
	}

	return actor, nil
}

// RequestPasswordReset starts a reset flow. It always succeeds from the
// caller's perspective; a token is only minted when the account exists, so
// the response never reveals registration state. The raw token is returned
// to the caller for delivery (mail transport is outside this service).
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	actor, err := s.Store.Actors().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	expires := time.Now().UTC().Add(ResetTokenTTL)
	if err := s.Store.Actors().SetResetToken(ctx, actor.ID, cryptox.FingerprintToken(token), expires); err != nil {
		return "", err
	}

	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:    actor.ID,
		Action:     domain.ActionPasswordResetRequest,
		EntityType: "actor",
		EntityID:   actor.ID,
	})

	return token, nil
}

// ResetPassword completes a reset flow. On success the hash is replaced, the
// reset token is cleared and every existing session for the actor is deleted
// so the credential change takes effect everywhere at once.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	actor, err := s.Store.Actors().GetByResetTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	if result := cryptox.ValidateStrength(newPassword); !result.Valid {
		return &WeakPasswordError{Violations: result.Violations}
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Actors().UpdatePasswordHash(ctx, actor.ID, hash); err != nil {
			return err
		}
		if err := tx.Actors().ClearResetToken(ctx, actor.ID); err != nil {
			return err
		}
		return tx.Sessions().DeleteForActor(ctx, actor.ID)
	})
	if err != nil {
		return err
	}

	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:    actor.ID,
		Action:     domain.ActionPasswordReset,
		EntityType: "actor",
		EntityID:   actor.ID,
	})
	return nil
}

// ChangePassword replaces an actor's password after verifying the current
// one. Existing sessions stay live; the actor proved possession of the old
// credential, so there is no takeover to contain (contrast ResetPassword).
func (s *AuthService) ChangePassword(ctx context.Context, actorID, currentPassword, newPassword string) error {
	actor, err := s.Store.Actors().GetByID(ctx, actorID)
	if err != nil {
		return err
	}

	if cryptox.VerifyPassword(currentPassword, actor.PasswordHash) != nil {
		return ErrWrongPassword
	}

	if result := cryptox.ValidateStrength(newPassword); !result.Valid {
		return &WeakPasswordError{Violations: result.Violations}
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Actors().UpdatePasswordHash(ctx, actorID, hash); err != nil {
		return err
	}

	s.Audit.Record(ctx, domain.AuditEntry{
		ActorID:    actorID,
		Action:     domain.ActionPasswordChange,
		EntityType: "actor",
		EntityID:   actorID,
	})
	return nil
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return DefaultSessionTTL
}
