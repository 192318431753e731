package hub

import (
	"time"

	"github.com/google/uuid"

	"github.com/kindralabs/khub/internal/models"
)

// chatNotificationTitle is the fixed title of the client-local notification
// synthesized from a new inbound chat message.
const chatNotificationTitle = "New Community Message"

// ChatDelta is the outcome of comparing two consecutive chat snapshots.
type ChatDelta struct {
	// NewInbound is true when the newer snapshot ends in a message from
	// someone else that the previous snapshot had not seen.
	NewInbound bool

	// Latest is the message that triggered NewInbound. Zero otherwise.
	Latest models.ChatMessage
}

// DiffChat compares the previous chat snapshot with a freshly fetched one.
// Growth is judged by length first: a snapshot that did not grow carries no
// new inbound message, even if its contents shifted (deletions and edits
// land as plain replacements). When it did grow, only the newest message is
// inspected, and messages we authored ourselves never count as inbound.
func DiffChat(prev, next []models.ChatMessage) ChatDelta {
	if len(next) <= len(prev) {
		return ChatDelta{}
	}
	last := next[len(next)-1]
	if last.IsSelf {
		return ChatDelta{}
	}
	if last.ID <= models.LastMessageID(prev) {
		return ChatDelta{}
	}
	return ChatDelta{NewInbound: true, Latest: last}
}

// SynthesizeChatNotification builds the client-local activity entry for an
// inbound chat message. The body is the sender's display name plus a preview
// of the content truncated to previewLen runes.
func SynthesizeChatNotification(msg models.ChatMessage, previewLen int, now time.Time) models.Notification {
	return models.Notification{
		ID:          uuid.NewString(),
		Category:    models.CategoryChat,
		RawCategory: string(models.CategoryChat),
		Title:       chatNotificationTitle,
		Message:     msg.Author.DisplayName() + ": " + truncateRunes(msg.Content, previewLen),
		CreatedAt:   now,
		Read:        false,
	}
}

// UpsertChatNotification places the synthetic chat notification at the head
// of the list, displacing any earlier chat-derived entry. At most one
// chat-derived notification exists at a time.
func UpsertChatNotification(list []models.Notification, synth models.Notification) []models.Notification {
	out := make([]models.Notification, 0, len(list)+1)
	out = append(out, synth)
	for _, n := range list {
		if n.Category == models.CategoryChat {
			continue
		}
		out = append(out, n)
	}
	return out
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
