package rbac

import (
	"github.com/forkful/menuboard/internal/admin/domain"
)

// RoleSpec binds one role to its permission set. A role table is an ordered
// list of RoleSpecs from lowest to highest privilege; the position in the
// list is the role's rank.
type RoleSpec struct {
	Role        domain.Role
	Permissions []Permission
}

// Model is the static role/permission table for a deployment. It supports
// both hierarchical tables (each rank a superset of the one below) and
// tables where roles mostly overlap and differ only in a few rights.
type Model struct {
	order []domain.Role
	rank  map[domain.Role]int
	perms map[domain.Role]map[Permission]struct{}
}

// NewModel builds a Model from specs ordered lowest privilege first.
func NewModel(specs []RoleSpec) *Model {
	m := &Model{
		order: make([]domain.Role, 0, len(specs)),
		rank:  make(map[domain.Role]int, len(specs)),
		perms: make(map[domain.Role]map[Permission]struct{}, len(specs)),
	}
	for i, spec := range specs {
		m.order = append(m.order, spec.Role)
		m.rank[spec.Role] = i
		set := make(map[Permission]struct{}, len(spec.Permissions))
		for _, p := range spec.Permissions {
			set[p] = struct{}{}
		}
		m.perms[spec.Role] = set
	}
	return m
}

// ThreeTier is the ADMIN > EDITOR > VIEWER table. Permission sets are strict
// supersets as rank increases.
func ThreeTier() *Model {
	viewer := []Permission{PermMenuView, PermAuditView}
	editor := append(append([]Permission{}, viewer...), contentPermissions...)
	admin := append(append([]Permission{}, editor...),
		PermUserView, PermUserInvite, PermUserUpdate, PermUserRemove,
	)

	return NewModel([]RoleSpec{
		{Role: domain.RoleViewer, Permissions: viewer},
		{Role: domain.RoleEditor, Permissions: editor},
		{Role: domain.RoleAdmin, Permissions: admin},
	})
}

// TwoTier is the ADMIN > EDITOR table used by smaller deployments. Both roles
// share the content surface; user management is admin-only.
func TwoTier() *Model {
	editor := append([]Permission{PermAuditView}, contentPermissions...)
	admin := append(append([]Permission{}, editor...),
		PermUserView, PermUserInvite, PermUserUpdate, PermUserRemove,
	)

	return NewModel([]RoleSpec{
		{Role: domain.RoleEditor, Permissions: editor},
		{Role: domain.RoleAdmin, Permissions: admin},
	})
}

// Valid reports whether the role exists in this table.
func (m *Model) Valid(r domain.Role) bool {
	_, ok := m.rank[r]
	return ok
}

// Rank returns the role's position in the privilege order, or -1 for roles
// outside the table.
func (m *Model) Rank(r domain.Role) int {
	rank, ok := m.rank[r]
	if !ok {
		return -1
	}
	return rank
}

// HasRole reports whether actual meets or exceeds required in rank.
// Unknown roles never satisfy anything.
func (m *Model) HasRole(actual, required domain.Role) bool {
	actualRank, ok := m.rank[actual]
	if !ok {
		return false
	}
	requiredRank, ok := m.rank[required]
	if !ok {
		return false
	}
	return actualRank >= requiredRank
}

// TopRole returns the highest-ranked role in the table.
func (m *Model) TopRole() domain.Role {
	return m.order[len(m.order)-1]
}

// LowestRole returns the default role for self-registered actors.
func (m *Model) LowestRole() domain.Role {
	return m.order[0]
}

// Roles returns the table's roles ordered lowest privilege first.
func (m *Model) Roles() []domain.Role {
	out := make([]domain.Role, len(m.order))
	copy(out, m.order)
	return out
}

// PermissionsOf returns the role's permission set. The result is a copy;
// mutating it does not affect the table.
func (m *Model) PermissionsOf(r domain.Role) []Permission {
	set, ok := m.perms[r]
	if !ok {
		return nil
	}
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}

// CheckPermission reports whether the actor's role grants the permission.
func (m *Model) CheckPermission(actor *domain.Actor, p Permission) bool {
	if actor == nil {
		return false
	}
	set, ok := m.perms[actor.Role]
	if !ok {
		return false
	}
	_, ok = set[p]
	return ok
}

// CanAssignRole reports whether an actor with assignerRole may hand out
// targetRole. Only the top-ranked role assigns roles at all, and it may
// assign any role at or below its own rank.
func (m *Model) CanAssignRole(assignerRole, targetRole domain.Role) bool {
	if assignerRole != m.TopRole() {
		return false
	}
	targetRank, ok := m.rank[targetRole]
	if !ok {
		return false
	}
	return targetRank <= m.rank[assignerRole]
}
