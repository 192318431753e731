package hub

import (
	"errors"
	"strings"
	"time"

	"github.com/kindralabs/khub/internal/models"
)

// Side is the alignment of a message in the thread view.
type Side int

const (
	// SideOther renders on the left: messages from everyone else.
	SideOther Side = iota
	// SideSelf renders on the right: messages we authored.
	SideSelf
)

// headerGap is the quiet period after which a consecutive message from the
// same author starts a new group and repeats the header.
const headerGap = 5 * time.Minute

var (
	// ErrEmptyMessage is returned when a send is attempted with no content.
	ErrEmptyMessage = errors.New("hub: message content is empty")

	// ErrRecipientRequired is returned when a private send names no recipient.
	ErrRecipientRequired = errors.New("hub: private message requires a recipient")

	// ErrDeleteForbidden is returned when the actor may not delete a message.
	ErrDeleteForbidden = errors.New("hub: not allowed to delete this message")
)

// Alignment picks the thread side for a message. The server tells us
// authorship; nothing is inferred from names or ids.
func Alignment(msg models.ChatMessage) Side {
	if msg.IsSelf {
		return SideSelf
	}
	return SideOther
}

// ShowHeader decides whether a message begins a new visual group. Grouping
// breaks on author change, on a public/private boundary, and after a long
// silence. prev is nil for the first message of the thread.
func ShowHeader(prev *models.ChatMessage, cur models.ChatMessage) bool {
	if prev == nil {
		return true
	}
	if prev.Author.ID != cur.Author.ID {
		return true
	}
	if prev.IsPrivate != cur.IsPrivate {
		return true
	}
	return cur.CreatedAt.Sub(prev.CreatedAt) > headerGap
}

// CanDelete reports whether the actor may delete the message: only the
// author or an elevated role, and never a private message. The server
// enforces the same rule; this only gates the affordance client-side.
func CanDelete(msg models.ChatMessage, actor models.Role) bool {
	if msg.IsPrivate {
		return false
	}
	return msg.IsSelf || actor.Elevated()
}

// ValidateSend checks an outgoing message before it touches the wire.
func ValidateSend(content string, private bool, recipientID string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}
	if private && recipientID == "" {
		return ErrRecipientRequired
	}
	return nil
}

// ResolveRecipient finds a private-message target in the recipient list.
func ResolveRecipient(users []models.UserRef, id string) (models.UserRef, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return models.UserRef{}, false
}
