package domain

import "time"

// Action is the closed (but extensible) taxonomy of auditable actions.
type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionUpdate  Action = "UPDATE"
	ActionDelete  Action = "DELETE"
	ActionRestore Action = "RESTORE"

	ActionLogin  Action = "LOGIN"
	ActionLogout Action = "LOGOUT"

	ActionInviteSent     Action = "INVITE_SENT"
	ActionInviteAccepted Action = "INVITE_ACCEPTED"
	ActionRoleChanged    Action = "ROLE_CHANGED"
	ActionUserRemoved    Action = "USER_REMOVED"

	ActionMenuItemAdded        Action = "MENU_ITEM_ADDED"
	ActionMenuItemUpdated      Action = "MENU_ITEM_UPDATED"
	ActionMenuItemRemoved      Action = "MENU_ITEM_REMOVED"
	ActionMenuItemStockChanged Action = "MENU_ITEM_STOCK_CHANGED"
	ActionHoursUpdated         Action = "HOURS_UPDATED"
	ActionContactUpdated       Action = "CONTACT_UPDATED"
	ActionImageUploaded        Action = "IMAGE_UPLOADED"
	ActionImageDeleted         Action = "IMAGE_DELETED"

	ActionPasswordResetRequest Action = "PASSWORD_RESET_REQUEST"
	ActionPasswordReset        Action = "PASSWORD_RESET"
	ActionPasswordChange       Action = "PASSWORD_CHANGE"
)

// FieldChange records one field's before/after pair inside a diff.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// AuditEntry is an immutable record of one mutating action. Entries are only
// ever appended; rollback appends a RESTORE entry rather than touching the
// original.
type AuditEntry struct {
	ID         string
	TenantID   string
	ActorID    string
	Action     Action
	EntityType string
	EntityID   string

	OldValue map[string]any
	NewValue map[string]any
	Changes  map[string]FieldChange
	Metadata map[string]any

	IPAddress string
	UserAgent string
	CreatedAt time.Time
}
