package domain

import "time"

// ContentType names the classes of site content the platform manages.
// Content rows are loosely-typed documents; the public site and the admin
// forms agree on the attribute shapes per type.
type ContentType string

const (
	ContentMenuItem ContentType = "menu_item"
	ContentHours    ContentType = "opening_hours"
	ContentContact  ContentType = "contact"
	ContentImage    ContentType = "image"
)

// KnownContentType reports whether t is part of the closed content set.
func KnownContentType(t ContentType) bool {
	switch t {
	case ContentMenuItem, ContentHours, ContentContact, ContentImage:
		return true
	}
	return false
}

// ContentItem is one unit of restaurant site content. Attrs holds the
// type-specific fields (menu item name/price, weekly hours, contact details,
// image URL and caption) as a JSON document.
type ContentItem struct {
	ID        string
	TenantID  string
	Type      ContentType
	SortOrder int
	Attrs     map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot flattens the item into the loosely-typed map used for audit
// before/after values. Sort order rides along so reorders diff cleanly.
func (c ContentItem) Snapshot() map[string]any {
	snap := make(map[string]any, len(c.Attrs)+1)
	for k, v := range c.Attrs {
		snap[k] = v
	}
	snap["sortOrder"] = c.SortOrder
	return snap
}
