package domain

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationExpired  InvitationStatus = "EXPIRED"
)

// Invitation is a single-use, time-limited offer to join as an actor with a
// preassigned role and tenant scope.
type Invitation struct {
	ID         string
	Email      string
	Role       Role
	TenantIDs  []string
	InvitedBy  string
	TokenHash  string
	ExpiresAt  time.Time
	Status     InvitationStatus
	AcceptedBy string // actor id once accepted, else empty
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Live reports whether the invitation can still be accepted.
func (i Invitation) Live(now time.Time) bool {
	return i.Status == InvitationPending && now.Before(i.ExpiresAt)
}
