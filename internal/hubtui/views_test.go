package hubtui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindralabs/khub/internal/api"
	"github.com/kindralabs/khub/internal/hub"
	"github.com/kindralabs/khub/internal/models"
)

// stubSource satisfies hub.StreamSource with canned data.
type stubSource struct {
	messages []models.ChatMessage
}

func (s *stubSource) ListMessages(context.Context) ([]models.ChatMessage, error) {
	return s.messages, nil
}

func (s *stubSource) ListNotifications(context.Context) ([]models.Notification, error) {
	return nil, nil
}

func (s *stubSource) ListRecipients(context.Context) ([]models.UserRef, error) {
	return nil, nil
}

func (s *stubSource) SendMessage(_ context.Context, req api.SendMessageRequest) (models.ChatMessage, error) {
	return models.ChatMessage{ID: 99, Content: req.Content, IsSelf: true}, nil
}

func (s *stubSource) DeleteMessage(context.Context, int64) error { return nil }

func (s *stubSource) MarkNotificationsRead(context.Context, []string) error { return nil }

func testController(role models.Role) *hub.Controller {
	cfg := hub.ControllerConfig{PollInterval: time.Hour, Role: role}
	return hub.NewController(cfg, &stubSource{}, nil, hub.AlwaysVisible)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func notif(id string, category models.Category, title string, read bool) models.Notification {
	return models.Notification{ID: id, Category: category, Title: title, Read: read}
}

func TestActivityViewFilterAndSearch(t *testing.T) {
	v := newActivityView(testController(models.RoleMember))
	v.Update(snapshotMsg{snap: hub.Snapshot{Notifications: []models.Notification{
		notif("n1", models.CategoryDonation, "Monthly gift received", false),
		notif("n2", models.CategoryEvent, "Spring cleanup", true),
		notif("n3", models.CategoryChat, "New Community Message", false),
	}}})

	require.Len(t, v.visible(), 3)

	// Category filter steps through the cycle.
	v.Update(keyRunes("f"))
	assert.Len(t, v.visible(), 1)
	assert.Equal(t, "n1", v.visible()[0].ID)

	// Back to no filter after a full cycle.
	for range filterCycle[1:] {
		v.Update(keyRunes("f"))
	}
	require.Len(t, v.visible(), 3)

	// Search matches title and message, case-insensitively.
	v.Update(keyRunes("/"))
	assert.True(t, v.capturingInput())
	v.Update(keyRunes("spring"))
	require.Len(t, v.visible(), 1)
	assert.Equal(t, "n2", v.visible()[0].ID)

	v.Update(key(tea.KeyEsc))
	assert.False(t, v.capturingInput())
	assert.Len(t, v.visible(), 3)
}

func TestActivityViewCursorClamps(t *testing.T) {
	v := newActivityView(testController(models.RoleMember))
	v.Update(snapshotMsg{snap: hub.Snapshot{Notifications: []models.Notification{
		notif("n1", models.CategoryInfo, "a", false),
		notif("n2", models.CategoryInfo, "b", false),
	}}})

	v.Update(keyRunes("j"))
	assert.Equal(t, 1, v.cursor)
	v.Update(keyRunes("j"))
	assert.Equal(t, 1, v.cursor, "cursor stops at the last row")

	// Shrinking snapshot pulls the cursor back in range.
	v.Update(snapshotMsg{snap: hub.Snapshot{Notifications: []models.Notification{
		notif("n1", models.CategoryInfo, "a", false),
	}}})
	assert.Equal(t, 0, v.cursor)
}

func TestActivityViewEmptyRender(t *testing.T) {
	v := newActivityView(testController(models.RoleMember))
	out := v.View(80, 20, ThemeDefault)
	assert.Contains(t, out, "No notifications")
}

func TestCommunityViewCompose(t *testing.T) {
	v := newCommunityView(testController(models.RoleMember), false)

	assert.False(t, v.capturingInput())
	v.Update(keyRunes("i"))
	assert.True(t, v.capturingInput())

	v.Update(keyRunes("hi"))
	v.Update(key(tea.KeySpace))
	v.Update(keyRunes("all"))
	assert.Equal(t, "hi all", v.input)

	v.Update(key(tea.KeyBackspace))
	assert.Equal(t, "hi al", v.input)

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.True(t, v.private)

	v.Update(key(tea.KeyEsc))
	assert.False(t, v.composing)
	assert.Empty(t, v.input)
	assert.False(t, v.private)
}

func TestCommunityViewPrivateNeedsRecipient(t *testing.T) {
	v := newCommunityView(testController(models.RoleMember), false)
	v.Update(keyRunes("i"))
	v.Update(keyRunes("psst"))
	v.Update(tea.KeyMsg{Type: tea.KeyCtrlP})

	cmd := v.Update(key(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Contains(t, v.status, "no recipients")
}

func TestCommunityViewDeleteGate(t *testing.T) {
	v := newCommunityView(testController(models.RoleMember), false)
	v.Update(snapshotMsg{snap: hub.Snapshot{Messages: []models.ChatMessage{
		{ID: 7, Author: models.UserRef{ID: "u2", Username: "ben"}, Content: "hello"},
	}}})

	v.Update(keyRunes("d"))
	assert.Zero(t, v.confirmDelete, "member cannot delete someone else's message")
	assert.Contains(t, v.status, "cannot delete")
}

func TestCommunityViewDeleteConfirm(t *testing.T) {
	v := newCommunityView(testController(models.RoleStaff), false)
	v.Update(snapshotMsg{snap: hub.Snapshot{Messages: []models.ChatMessage{
		{ID: 7, Author: models.UserRef{ID: "u2", Username: "ben"}, Content: "hello"},
	}}})

	v.Update(keyRunes("d"))
	assert.Equal(t, int64(7), v.confirmDelete)
	assert.True(t, v.capturingInput())

	// Declining leaves the message alone.
	v.Update(keyRunes("n"))
	assert.Zero(t, v.confirmDelete)

	v.Update(keyRunes("d"))
	cmd := v.Update(keyRunes("y"))
	require.NotNil(t, cmd)
	assert.Zero(t, v.confirmDelete)
}

func TestCommunityViewRenderAlignment(t *testing.T) {
	v := newCommunityView(testController(models.RoleMember), true)
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	v.Update(snapshotMsg{snap: hub.Snapshot{Messages: []models.ChatMessage{
		{ID: 1, Author: models.UserRef{ID: "u2", Username: "ben"}, Content: "from ben", CreatedAt: base},
		{ID: 2, Author: models.UserRef{ID: "u1", Username: "me"}, Content: "from me", CreatedAt: base.Add(time.Minute), IsSelf: true},
		{ID: 3, Author: models.UserRef{ID: "u2", Username: "ben"}, Content: "flagged one", CreatedAt: base.Add(2 * time.Minute), IsFlagged: true},
	}}})

	out := v.View(60, 20, ThemeDefault)
	assert.Contains(t, out, "from ben")
	assert.Contains(t, out, "from me")
	assert.Contains(t, out, "⚑ flagged one")
	assert.Contains(t, out, "ben")

	lines := strings.Split(out, "\n")
	var selfLine string
	for _, l := range lines {
		if strings.Contains(l, "from me") {
			selfLine = l
		}
	}
	require.NotEmpty(t, selfLine)
	assert.True(t, strings.HasPrefix(stripANSI(selfLine), " "), "own messages are right-aligned")
}

// stripANSI removes escape sequences so layout assertions see plain text.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == 0x1b:
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
