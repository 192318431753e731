// Package hub implements the Community Hub live-sync engine: a serialized
// polling scheduler, the chat/notification merge engine, per-surface unread
// bookkeeping, and the controller state machine that ties them together.
package hub

import (
	"sync"

	"github.com/kindralabs/khub/internal/models"
)

// VisibilitySource reports whether the hosting surface is visible to the
// user. The scheduler skips whole cycles while hidden. Injected so the gating
// logic is testable without a terminal.
type VisibilitySource interface {
	Visible() bool
}

// VisibilityFunc adapts a plain function to a VisibilitySource.
type VisibilityFunc func() bool

func (f VisibilityFunc) Visible() bool { return f() }

// AlwaysVisible never gates polling. Used by headless consumers like the
// watch command.
var AlwaysVisible VisibilitySource = VisibilityFunc(func() bool { return true })

// FocusTracker is a VisibilitySource fed by focus/blur signals from the
// hosting UI.
type FocusTracker struct {
	mu      sync.RWMutex
	focused bool
}

// NewFocusTracker returns a tracker that starts focused.
func NewFocusTracker() *FocusTracker {
	return &FocusTracker{focused: true}
}

// SetFocused records the current focus state.
func (t *FocusTracker) SetFocused(focused bool) {
	t.mu.Lock()
	t.focused = focused
	t.mu.Unlock()
}

// Visible reports the last recorded focus state.
func (t *FocusTracker) Visible() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.focused
}

// VisibilityState is the hub's own open/closed state machine position:
// which surface, if any, holds the user's attention. It is the single source
// of truth for unread resets and chat-derived notification suppression.
type VisibilityState int

const (
	// StateClosed means the hub panel is not showing.
	StateClosed VisibilityState = iota

	// StateOpenActivity means the notification surface is the active tab.
	StateOpenActivity

	// StateOpenCommunity means the chat surface is the active tab.
	StateOpenCommunity
)

func (s VisibilityState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpenActivity:
		return "open/activity"
	case StateOpenCommunity:
		return "open/community"
	default:
		return "unknown"
	}
}

// ActiveTab returns the focused surface, if the hub is open.
func (s VisibilityState) ActiveTab() (models.Tab, bool) {
	switch s {
	case StateOpenActivity:
		return models.TabActivity, true
	case StateOpenCommunity:
		return models.TabCommunity, true
	default:
		return "", false
	}
}

// StateForTab maps a surface onto the open state focusing it.
func StateForTab(tab models.Tab) VisibilityState {
	if tab == models.TabCommunity {
		return StateOpenCommunity
	}
	return StateOpenActivity
}
