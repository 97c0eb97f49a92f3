package domain

import "time"

// Role names the bundle of permissions an actor holds. The active role table
// (three-tier or two-tier) is deployment configuration; see the rbac package.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

func (r Role) String() string { return string(r) }

// ActorStatus is the lifecycle state of an actor. Actors are never
// hard-deleted; removal suspends them so audit references stay intact.
type ActorStatus string

const (
	ActorActive    ActorStatus = "ACTIVE"
	ActorSuspended ActorStatus = "SUSPENDED"
)

type Actor struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string // argon2 encoded
	Role         Role
	Status       ActorStatus
	TenantIDs    []string // Restaurants this actor may manage

	// Password reset state. The token is stored fingerprinted.
	ResetTokenHash    *string
	ResetTokenExpires *time.Time

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive reports whether the actor may authenticate.
func (a Actor) IsActive() bool { return a.Status == ActorActive }

// PublicActor is the subset of Actor safe to hand to callers and serialize
// in responses. It never carries the password hash or reset-token state.
type PublicActor struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        Role       `json:"role"`
	Status      ActorStatus `json:"status"`
	TenantIDs   []string   `json:"tenant_ids,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Public strips credential material from an Actor.
func (a Actor) Public() PublicActor {
	return PublicActor{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Role:        a.Role,
		Status:      a.Status,
		TenantIDs:   a.TenantIDs,
		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
	}
}
