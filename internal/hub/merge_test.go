package hub

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindralabs/khub/internal/models"
)

func msg(id int64, author string, self bool) models.ChatMessage {
	return models.ChatMessage{
		ID:      id,
		Author:  models.UserRef{ID: author, Username: author},
		Content: "hello from " + author,
		IsSelf:  self,
	}
}

func TestDiffChat(t *testing.T) {
	tests := []struct {
		name        string
		prev        []models.ChatMessage
		next        []models.ChatMessage
		wantInbound bool
		wantLatest  int64
	}{
		{
			name:        "growth with inbound tail",
			prev:        []models.ChatMessage{msg(1, "ana", false)},
			next:        []models.ChatMessage{msg(1, "ana", false), msg(2, "ben", false)},
			wantInbound: true,
			wantLatest:  2,
		},
		{
			name: "growth with own tail",
			prev: []models.ChatMessage{msg(1, "ana", false)},
			next: []models.ChatMessage{msg(1, "ana", false), msg(2, "me", true)},
		},
		{
			name: "same length is a no-op",
			prev: []models.ChatMessage{msg(1, "ana", false), msg(2, "ben", false)},
			next: []models.ChatMessage{msg(1, "ana", false), msg(3, "ben", false)},
		},
		{
			name: "shrink is a no-op",
			prev: []models.ChatMessage{msg(1, "ana", false), msg(2, "ben", false)},
			next: []models.ChatMessage{msg(2, "ben", false)},
		},
		{
			name: "growth without a newer tail id",
			prev: []models.ChatMessage{msg(5, "ana", false)},
			next: []models.ChatMessage{msg(3, "ben", false), msg(4, "cam", false)},
		},
		{
			name:        "empty previous snapshot",
			prev:        nil,
			next:        []models.ChatMessage{msg(1, "ana", false)},
			wantInbound: true,
			wantLatest:  1,
		},
		{
			name: "both empty",
			prev: nil,
			next: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta := DiffChat(tt.prev, tt.next)
			assert.Equal(t, tt.wantInbound, delta.NewInbound)
			if tt.wantInbound {
				assert.Equal(t, tt.wantLatest, delta.Latest.ID)
			}
		})
	}
}

func TestSynthesizeChatNotification(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	m := msg(7, "ben", false)
	m.Author.FirstName = "Ben"
	m.Content = strings.Repeat("x", 60)

	n := SynthesizeChatNotification(m, 50, now)

	require.NotEmpty(t, n.ID)
	assert.Equal(t, models.CategoryChat, n.Category)
	assert.Equal(t, "New Community Message", n.Title)
	assert.Equal(t, "Ben: "+strings.Repeat("x", 50)+"…", n.Message)
	assert.Equal(t, now, n.CreatedAt)
	assert.False(t, n.Read)
}

func TestSynthesizeChatNotificationShortContent(t *testing.T) {
	m := msg(7, "ben", false)
	m.Content = "short"

	n := SynthesizeChatNotification(m, 50, time.Now())
	assert.Equal(t, "ben: short", n.Message)
}

func TestTruncateRunesMultibyte(t *testing.T) {
	// Truncation counts runes, not bytes.
	got := truncateRunes("héllo wörld", 5)
	assert.Equal(t, "héllo…", got)
}

func TestUpsertChatNotification(t *testing.T) {
	server := []models.Notification{
		{ID: "a", Category: models.CategoryDonation},
		{ID: "b", Category: models.CategoryEvent},
	}
	first := models.Notification{ID: "c1", Category: models.CategoryChat}

	out := UpsertChatNotification(server, first)
	require.Len(t, out, 3)
	assert.Equal(t, "c1", out[0].ID)

	// A second synthetic displaces the first; never two chat entries.
	second := models.Notification{ID: "c2", Category: models.CategoryChat}
	out = UpsertChatNotification(out, second)
	require.Len(t, out, 3)
	assert.Equal(t, "c2", out[0].ID)

	chatCount := 0
	for _, n := range out {
		if n.Category == models.CategoryChat {
			chatCount++
		}
	}
	assert.Equal(t, 1, chatCount)
}
