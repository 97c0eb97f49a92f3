package store

import (
	"context"
	"errors"
	"time"

	"github.com/forkful/menuboard/internal/admin/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and to make the single-writer rule enforceable: only the auth
// service touches Sessions(), only the audit service touches Audit().
type Store interface {
	Actors() Actors
	Sessions() Sessions
	Invitations() Invitations
	Audit() Audit
	Content() Content

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to run multi-step atomic operations (bulk updates,
	// reorders, invite acceptance).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Actors interface {
	// GetByID returns an actor by id, suspended or not.
	GetByID(ctx context.Context, id string) (domain.Actor, error)

	// GetByEmail looks up an actor by its unique email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (domain.Actor, error)

	// Create inserts a new actor (id is provided by app via ULID).
	// Returns ErrAlreadyExists if the email is taken.
	Create(ctx context.Context, a domain.Actor) error

	// List returns actors ordered by creation date. A non-empty tenantID
	// restricts to actors scoped to that tenant; includeSuspended controls
	// whether soft-removed actors appear.
	List(ctx context.Context, tenantID string, includeSuspended bool) ([]domain.Actor, error)

	// CountActiveWithRole counts non-suspended actors holding the role.
	// Used for the last-admin protection.
	CountActiveWithRole(ctx context.Context, role domain.Role) (int, error)

	// UpdatePasswordHash sets the password hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, actorID, newHash string) error

	// UpdateRole reassigns the actor's role.
	UpdateRole(ctx context.Context, actorID string, role domain.Role) error

	// UpdateStatus flips the active/suspended state.
	UpdateStatus(ctx context.Context, actorID string, status domain.ActorStatus) error

	// UpdateLastLogin stamps last_login_at.
	UpdateLastLogin(ctx context.Context, actorID string, at time.Time) error

	// SetResetToken stores a fingerprinted reset token with its expiry.
	SetResetToken(ctx context.Context, actorID, tokenHash string, expiresAt time.Time) error

	// GetByResetTokenHash returns the actor holding an unexpired reset token.
	GetByResetTokenHash(ctx context.Context, tokenHash string) (domain.Actor, error)

	// ClearResetToken removes any reset token state.
	ClearResetToken(ctx context.Context, actorID string) error
}

type Sessions interface {
	// Create stores a new session row.
	Create(ctx context.Context, s domain.Session) error

	// GetByTokenHash returns the session for a fingerprinted bearer token.
	GetByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error)

	// UpdateLastActivity bumps last_activity_at.
	UpdateLastActivity(ctx context.Context, sessionID string, at time.Time) error

	// Delete removes one session. Deleting an absent session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// DeleteByTokenHash removes the session matching the token, reporting
	// whether a row existed.
	DeleteByTokenHash(ctx context.Context, tokenHash string) (bool, error)

	// DeleteForActor removes every session owned by the actor (suspension,
	// password reset).
	DeleteForActor(ctx context.Context, actorID string) error

	// DeleteExpired is housekeeping.
	DeleteExpired(ctx context.Context) error
}

type Invitations interface {
	// Create writes a new invitation (token_hash is the fingerprint of the
	// opaque invitation token).
	Create(ctx context.Context, inv domain.Invitation) error

	// GetLiveByTokenHash returns a pending, unexpired invitation by hash.
	GetLiveByTokenHash(ctx context.Context, tokenHash string) (domain.Invitation, error)

	// GetLiveByEmail returns a pending, unexpired invitation for the email.
	GetLiveByEmail(ctx context.Context, email string) (domain.Invitation, error)

	// MarkAccepted flips status to ACCEPTED exactly once; returns
	// ErrNotFound if the invitation is no longer pending.
	MarkAccepted(ctx context.Context, invitationID, actorID string) error

	// ExpirePending marks pending invitations past their expiry as EXPIRED.
	ExpirePending(ctx context.Context) error
}

// AuditFilter narrows audit queries. Zero values mean "no constraint";
// From/To bound CreatedAt inclusively.
type AuditFilter struct {
	TenantID   string
	ActorID    string
	EntityType string
	EntityID   string
	Action     domain.Action
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type Audit interface {
	// Insert appends an entry. Audit rows are never updated or deleted.
	Insert(ctx context.Context, e domain.AuditEntry) error

	// GetByID returns one entry.
	GetByID(ctx context.Context, id string) (domain.AuditEntry, error)

	// List returns entries matching the filter, newest first.
	List(ctx context.Context, f AuditFilter) ([]domain.AuditEntry, error)
}

// SortUpdate is one (id, sortOrder) pair inside a reorder.
type SortUpdate struct {
	ID        string
	SortOrder int
}

type Content interface {
	// GetByID returns a content item.
	GetByID(ctx context.Context, id string) (domain.ContentItem, error)

	// Create inserts a content item.
	Create(ctx context.Context, item domain.ContentItem) error

	// Update replaces attrs and sort order, bumping updated_at.
	Update(ctx context.Context, item domain.ContentItem) error

	// Delete removes the row. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error

	// ListByType returns a tenant's items of one type ordered by sort order.
	ListByType(ctx context.Context, tenantID string, t domain.ContentType) ([]domain.ContentItem, error)

	// MaxSortOrder returns the largest sort order among a tenant's items of
	// one type, or 0 when there are none.
	MaxSortOrder(ctx context.Context, tenantID string, t domain.ContentType) (int, error)

	// UpdateSortOrder sets one item's sort order. Reorders wrap several of
	// these in a single transaction via Store.WithTx.
	UpdateSortOrder(ctx context.Context, id string, sortOrder int) error
}
