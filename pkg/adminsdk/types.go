// Package adminsdk defines the request and response types of the admin API.
// Handlers and any Go client share these shapes, so the wire contract lives
// in one place.
package adminsdk

import "time"

// ----------------------------------------------------------------------------
// Auth
// ----------------------------------------------------------------------------

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Actor     ActorResponse `json:"actor"`
}

type RefreshResponse struct {
	Token string `json:"token"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

// RequestPasswordResetResponse reports success whether or not the account
// exists. ResetToken is populated only in deployments that return the token
// in-band (tests, setups without a mail transport).
type RequestPasswordResetResponse struct {
	Success    bool   `json:"success"`
	ResetToken string `json:"resetToken,omitempty"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ----------------------------------------------------------------------------
// Actors and invitations
// ----------------------------------------------------------------------------

// ActorResponse is the public projection of an actor. It never carries
// credential material.
type ActorResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	TenantIDs   []string   `json:"tenantIds,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type ListActorsResponse struct {
	Actors []ActorResponse `json:"actors"`
}

type InviteRequest struct {
	Email     string   `json:"email"`
	Role      string   `json:"role"`
	TenantIDs []string `json:"tenantIds,omitempty"`
}

type InviteResponse struct {
	InvitationID string    `json:"invitationId"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type AcceptInviteRequest struct {
	Token    string `json:"token"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// ----------------------------------------------------------------------------
// Content
// ----------------------------------------------------------------------------

type ContentItemResponse struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenantId"`
	Type      string         `json:"type"`
	SortOrder int            `json:"sortOrder"`
	Attrs     map[string]any `json:"attrs"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type CreateContentRequest struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs"`
}

type UpdateContentRequest struct {
	Patch map[string]any `json:"patch"`
}

type BulkUpdateRequest struct {
	IDs   []string       `json:"ids"`
	Patch map[string]any `json:"patch"`
}

type BulkUpdateResponse struct {
	Updated int `json:"updated"`
}

type ReorderRequest struct {
	Type    string        `json:"type"`
	Updates []ReorderItem `json:"updates"`
}

type ReorderItem struct {
	ID        string `json:"id"`
	SortOrder int    `json:"sortOrder"`
}

type ContentWithHistoryResponse struct {
	Current  ContentItemResponse  `json:"current"`
	History  []AuditEntryResponse `json:"history"`
	Versions int                  `json:"versions"`
}

// ----------------------------------------------------------------------------
// Audit
// ----------------------------------------------------------------------------

type AuditEntryResponse struct {
	ID         string                 `json:"id"`
	TenantID   string                 `json:"tenantId,omitempty"`
	ActorID    string                 `json:"actorId,omitempty"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entityType,omitempty"`
	EntityID   string                 `json:"entityId,omitempty"`
	OldValue   map[string]any         `json:"oldValue,omitempty"`
	NewValue   map[string]any         `json:"newValue,omitempty"`
	Changes    map[string]FieldChange `json:"changes,omitempty"`
	Metadata   map[string]any         `json:"metadata,omitempty"`
	IPAddress  string                 `json:"ipAddress,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}

type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

type AuditLogsResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
}

type RollbackResponse struct {
	RolledBack bool `json:"rolledBack"`
}

type ReportResponse struct {
	TenantID     string                          `json:"tenantId"`
	From         time.Time                       `json:"from"`
	To           time.Time                       `json:"to"`
	TotalActions int                             `json:"totalActions"`
	ActorCount   int                             `json:"actorCount"`
	Entries      []AuditEntryResponse            `json:"entries,omitempty"`
	Groups       map[string][]AuditEntryResponse `json:"groups,omitempty"`
}

// ----------------------------------------------------------------------------
// System
// ----------------------------------------------------------------------------

type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
