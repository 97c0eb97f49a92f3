package rbac

import (
	"strings"

	"github.com/forkful/menuboard/internal/admin/domain"
)

// RouteRule maps a path prefix (and optionally a method) to an access
// requirement. A rule with neither RequiredRole nor RequiredPermission is
// satisfied by any authenticated actor.
type RouteRule struct {
	PathPrefix         string
	Method             string // empty matches any method
	RequiredRole       domain.Role
	RequiredPermission Permission
}

// Access evaluates route-level authorization. Paths outside the protected
// prefixes are public. Protected paths with no matching rule fall back to the
// configured default: allow (the historical behavior) or deny.
type Access struct {
	model             *Model
	rules             []RouteRule
	protectedPrefixes []string
	defaultAllow      bool
}

// NewAccess builds a route policy. Rules are evaluated in order; the first
// match wins.
func NewAccess(model *Model, rules []RouteRule, protectedPrefixes []string, defaultAllow bool) *Access {
	return &Access{
		model:             model,
		rules:             rules,
		protectedPrefixes: protectedPrefixes,
		defaultAllow:      defaultAllow,
	}
}

// DefaultProtectedPrefixes covers the admin UI and API surface.
var DefaultProtectedPrefixes = []string{"/admin", "/api/admin"}

// DefaultRules is the shipped route table. Order matters: more specific
// prefixes come first.
func DefaultRules() []RouteRule {
	return []RouteRule{
		{PathPrefix: "/admin/users", RequiredPermission: PermUserView},
		{PathPrefix: "/admin/invitations", RequiredPermission: PermUserInvite},
		{PathPrefix: "/admin/audit", RequiredPermission: PermAuditView},
		{PathPrefix: "/admin/menu", Method: "GET", RequiredPermission: PermMenuView},
		{PathPrefix: "/admin/menu", RequiredPermission: PermMenuUpdate},
		{PathPrefix: "/admin/hours", RequiredPermission: PermHoursUpdate},
		{PathPrefix: "/admin/contact", RequiredPermission: PermContactUpdate},
		{PathPrefix: "/admin/images", RequiredPermission: PermImageUpload},
		{PathPrefix: "/admin", RequiredRole: domain.RoleEditor},
	}
}

// CanAccess decides whether the (possibly anonymous) actor may reach the
// given path and method. Suspended actors are treated as anonymous.
func (a *Access) CanAccess(actor *domain.Actor, path, method string) bool {
	if !a.protected(path) {
		return true
	}

	if actor == nil || !actor.IsActive() {
		return false
	}

	for _, rule := range a.rules {
		if !strings.HasPrefix(path, rule.PathPrefix) {
			continue
		}
		if rule.Method != "" && rule.Method != method {
			continue
		}

		switch {
		case rule.RequiredPermission != "":
			return a.model.CheckPermission(actor, rule.RequiredPermission)
		case rule.RequiredRole != "":
			return a.model.HasRole(actor.Role, rule.RequiredRole)
		default:
			return true // presence of any authenticated actor suffices
		}
	}

	// No rule matched a protected path. Whether that is allowed is an
	// explicit deployment policy, not an accident; see NewAccess.
	return a.defaultAllow
}

func (a *Access) protected(path string) bool {
	for _, prefix := range a.protectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
