package service

import (
	"errors"
	"time"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/pkg/jwtx"
)

var (
	ErrInvalidToken = errors.New("invalid_token")
	ErrExpiredToken = errors.New("expired_token")
)

// TokenService mints and verifies the signed bearer tokens carried by admin
// sessions. Tokens are self-describing (actor id, email, role) so middleware
// can authorize without a user lookup, but sessions remain server-side: a
// token is only honored while its session row exists.
type TokenService struct {
	Codec  *jwtx.HS256
	Issuer string
	TTL    time.Duration
}

// Issue signs a token for the actor. A ttl of 0 means "use the configured
// default": callers pass an unset config TTL through verbatim, so the zero
// value cannot mean a zero-lifetime token. Negative ttls are honored as-is,
// which is how expiry paths mint an already-expired token.
func (s *TokenService) Issue(actor domain.Actor, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = s.ttl()
	}

	claims := jwtx.NewClaims(actor.ID, actor.Email, string(actor.Role), s.Issuer, ttl, time.Now().UTC())
	return s.Codec.Sign(claims)
}

// Verify validates a token and returns its claims. Malformed, tampered and
// expired tokens map to ErrInvalidToken / ErrExpiredToken; Verify never
// panics on hostile input.
func (s *TokenService) Verify(raw string) (jwtx.Claims, error) {
	claims, err := s.Codec.Verify(raw)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return jwtx.Claims{}, ErrExpiredToken
		}
		return jwtx.Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// Refresh verifies the token and reissues it for the same identity with a
// fresh expiry strictly later than the original's.
func (s *TokenService) Refresh(raw string) (string, error) {
	claims, err := s.Verify(raw)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	ttl := s.ttl()
	if claims.ExpiresAt != nil && !now.Add(ttl).After(claims.ExpiresAt.Time) {
		// The original somehow outlives a default-ttl reissue. Extend past
		// it so the refreshed token is always the longer-lived one.
		ttl = claims.ExpiresAt.Time.Sub(now) + time.Second
	}

	fresh := jwtx.NewClaims(claims.Subject, claims.Email, claims.Role, s.Issuer, ttl, now)
	return s.Codec.Sign(fresh)
}

func (s *TokenService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return jwtx.DefaultTTL
}
