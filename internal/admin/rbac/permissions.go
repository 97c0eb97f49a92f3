package rbac

// Permission names an action on a resource class, namespaced as
// "resource:action". Permissions are compile-time values, never persisted
// per-actor; actors get them through their role.
type Permission string

const (
	PermMenuView   Permission = "menu:view"
	PermMenuCreate Permission = "menu:create"
	PermMenuUpdate Permission = "menu:update"
	PermMenuDelete Permission = "menu:delete"

	PermHoursUpdate   Permission = "hours:update"
	PermContactUpdate Permission = "contact:update"

	PermImageUpload Permission = "image:upload"
	PermImageDelete Permission = "image:delete"

	PermContentReorder Permission = "content:reorder"

	PermUserView   Permission = "user:view"
	PermUserInvite Permission = "user:invite"
	PermUserUpdate Permission = "user:update"
	PermUserRemove Permission = "user:remove"

	PermAuditView Permission = "audit:view"
)

// contentPermissions is the shared editing surface every content-managing
// role carries.
var contentPermissions = []Permission{
	PermMenuView,
	PermMenuCreate,
	PermMenuUpdate,
	PermMenuDelete,
	PermHoursUpdate,
	PermContactUpdate,
	PermImageUpload,
	PermImageDelete,
	PermContentReorder,
}
