package hub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kindralabs/khub/internal/models"
)

func TestAlignment(t *testing.T) {
	assert.Equal(t, SideSelf, Alignment(models.ChatMessage{IsSelf: true}))
	assert.Equal(t, SideOther, Alignment(models.ChatMessage{IsSelf: false}))
}

func TestShowHeader(t *testing.T) {
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	ana := models.UserRef{ID: "u1", Username: "ana"}
	ben := models.UserRef{ID: "u2", Username: "ben"}

	at := func(author models.UserRef, offset time.Duration, private bool) models.ChatMessage {
		return models.ChatMessage{Author: author, CreatedAt: base.Add(offset), IsPrivate: private}
	}

	tests := []struct {
		name string
		prev *models.ChatMessage
		cur  models.ChatMessage
		want bool
	}{
		{
			name: "first message",
			prev: nil,
			cur:  at(ana, 0, false),
			want: true,
		},
		{
			name: "same author shortly after",
			prev: ptr(at(ana, 0, false)),
			cur:  at(ana, time.Minute, false),
			want: false,
		},
		{
			name: "author change",
			prev: ptr(at(ana, 0, false)),
			cur:  at(ben, time.Minute, false),
			want: true,
		},
		{
			name: "privacy boundary",
			prev: ptr(at(ana, 0, false)),
			cur:  at(ana, time.Minute, true),
			want: true,
		},
		{
			name: "gap of exactly five minutes stays grouped",
			prev: ptr(at(ana, 0, false)),
			cur:  at(ana, 5*time.Minute, false),
			want: false,
		},
		{
			name: "gap over five minutes breaks the group",
			prev: ptr(at(ana, 0, false)),
			cur:  at(ana, 5*time.Minute+time.Second, false),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShowHeader(tt.prev, tt.cur))
		})
	}
}

func ptr(m models.ChatMessage) *models.ChatMessage { return &m }

func TestCanDelete(t *testing.T) {
	tests := []struct {
		name string
		msg  models.ChatMessage
		role models.Role
		want bool
	}{
		{"author deletes own", models.ChatMessage{IsSelf: true}, models.RoleMember, true},
		{"member cannot delete others", models.ChatMessage{}, models.RoleMember, false},
		{"volunteer cannot delete others", models.ChatMessage{}, models.RoleVolunteer, false},
		{"staff deletes others", models.ChatMessage{}, models.RoleStaff, true},
		{"admin deletes others", models.ChatMessage{}, models.RoleAdmin, true},
		{"private never deletable", models.ChatMessage{IsSelf: true, IsPrivate: true}, models.RoleAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanDelete(tt.msg, tt.role))
		})
	}
}

func TestValidateSend(t *testing.T) {
	assert.NoError(t, ValidateSend("hi", false, ""))
	assert.NoError(t, ValidateSend("hi", true, "u1"))
	assert.ErrorIs(t, ValidateSend("", false, ""), ErrEmptyMessage)
	assert.ErrorIs(t, ValidateSend("   ", false, ""), ErrEmptyMessage)
	assert.ErrorIs(t, ValidateSend("hi", true, ""), ErrRecipientRequired)
}

func TestResolveRecipient(t *testing.T) {
	users := []models.UserRef{
		{ID: "u1", Username: "ana"},
		{ID: "u2", Username: "ben"},
	}

	got, ok := ResolveRecipient(users, "u2")
	assert.True(t, ok)
	assert.Equal(t, "ben", got.Username)

	_, ok = ResolveRecipient(users, "u9")
	assert.False(t, ok)
}
