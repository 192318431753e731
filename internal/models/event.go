package models

import "time"

// EventType categorizes client-local events on the hub bus.
type EventType string

const (
	// EventTypeHubOpenRequested asks the hub controller to open on a tab.
	// This is the typed replacement for the platform's out-of-band
	// "open-community-hub" signal: unrelated UI publishes it without holding
	// a controller handle.
	EventTypeHubOpenRequested EventType = "hub.open_requested"

	// EventTypeHubStateChanged fires on every controller transition
	// (open, close, tab switch).
	EventTypeHubStateChanged EventType = "hub.state_changed"

	// EventTypeUnreadChanged fires when either unread counter moves.
	EventTypeUnreadChanged EventType = "unread.changed"

	// EventTypeCycleCompleted fires after each sync cycle resolves,
	// successful or not.
	EventTypeCycleCompleted EventType = "sync.cycle_completed"

	// EventTypeMessageArrived fires when a cycle observes a genuinely new
	// inbound chat message.
	EventTypeMessageArrived EventType = "chat.message_arrived"
)

// Tab identifies a hub surface.
type Tab string

const (
	TabActivity  Tab = "activity"
	TabCommunity Tab = "community"
)

// Event is one entry on the client-local bus. Events never leave the process.
type Event struct {
	Type      EventType
	Tab       Tab
	Timestamp time.Time

	// ChatUnread and NotifUnread carry the ledger on unread.changed events.
	ChatUnread  int
	NotifUnread int
}
