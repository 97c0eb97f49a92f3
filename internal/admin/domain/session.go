package domain

import "time"

// Session binds a bearer token to an actor. The row stores a SHA-256
// fingerprint of the token, never the token itself.
type Session struct {
	ID             string
	TokenHash      string
	ActorID        string
	ExpiresAt      time.Time
	LastActivityAt time.Time
	IPAddress      string // optional client metadata
	UserAgent      string
	CreatedAt      time.Time
}

// Expired reports whether the session is past its absolute expiry.
func (s Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }
