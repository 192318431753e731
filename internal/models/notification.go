package models

import "time"

// Category is the closed set of notification categories the client renders.
// The wire format is an open string; ParseCategory folds anything unknown
// into CategoryOther so rendering stays exhaustive.
type Category string

const (
	CategoryDonation Category = "donation"
	CategoryEvent    Category = "event"
	CategoryTask     Category = "task"
	CategoryCampaign Category = "campaign"
	CategoryInfo     Category = "info"
	CategoryWarning  Category = "warning"

	// CategoryChat marks notifications synthesized locally from chat
	// activity. It doubles as the dedup key: at most one chat-derived
	// notification is live at a time.
	CategoryChat Category = "chat"

	CategoryOther Category = "other"
)

// ParseCategory maps a wire category string onto the closed set.
func ParseCategory(raw string) Category {
	switch Category(raw) {
	case CategoryDonation, CategoryEvent, CategoryTask, CategoryCampaign,
		CategoryInfo, CategoryWarning, CategoryChat:
		return Category(raw)
	default:
		return CategoryOther
	}
}

// Notification is one entry in the role-targeted activity feed. Server-created
// notifications arrive over the wire; chat-derived ones are synthesized
// client-side and never leave the session.
type Notification struct {
	ID          string    `json:"id"`
	Category    Category  `json:"-"`
	RawCategory string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
	Read        bool      `json:"read"`
	TargetRoles []Role    `json:"target_roles,omitempty"`
}

// Normalize resolves the closed-union category from the wire value.
func (n Notification) Normalize() Notification {
	n.Category = ParseCategory(n.RawCategory)
	return n
}

// CountUnread returns the number of entries not yet marked read.
func CountUnread(notifications []Notification) int {
	count := 0
	for _, n := range notifications {
		if !n.Read {
			count++
		}
	}
	return count
}
