package hub

import "github.com/kindralabs/khub/internal/models"

// Ledger holds the per-surface unread counters. Counters are derived state:
// they are recomputed by the merge engine on every cycle and zeroed when the
// corresponding surface gains focus.
type Ledger struct {
	ChatUnread  int
	NotifUnread int
}

// NextLedger computes the ledger that results from applying one merge cycle.
// It is a pure function of the previous ledger, the cycle's chat delta, the
// post-merge notification list, and the hub's visibility state at merge time.
//
// Chat unread only ever grows here; it is reset exclusively by focus, so a
// burst of cycles while the hub is closed accumulates.
func NextLedger(prev Ledger, delta ChatDelta, notifications []models.Notification, state VisibilityState) Ledger {
	next := Ledger{ChatUnread: prev.ChatUnread}

	if delta.NewInbound && state != StateOpenCommunity {
		next.ChatUnread++
	}

	// Notification unread is recounted from scratch each cycle. While the
	// activity surface is focused everything on it is considered seen.
	if state != StateOpenActivity {
		next.NotifUnread = models.CountUnread(notifications)
	}

	return next
}

// ResetForTab zeroes the counter owned by the surface gaining focus.
func (l Ledger) ResetForTab(tab models.Tab) Ledger {
	switch tab {
	case models.TabCommunity:
		l.ChatUnread = 0
	case models.TabActivity:
		l.NotifUnread = 0
	}
	return l
}

// Total is the badge count shown on the collapsed hub toggle.
func (l Ledger) Total() int {
	return l.ChatUnread + l.NotifUnread
}
