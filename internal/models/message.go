// Package models defines the entities exchanged with the Kindra platform API.
package models

import (
	"strings"
	"time"
)

// Role identifies a platform role carried by a user.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleStaff     Role = "STAFF"
	RoleVolunteer Role = "VOLUNTEER"
	RoleDonor     Role = "DONOR"
	RoleMember    Role = "MEMBER"
)

// Elevated reports whether the role may moderate community content.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleStaff
}

// UserRef is the compact user representation embedded in messages and
// recipient listings.
type UserRef struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Role           Role   `json:"role"`
	ProfilePicture string `json:"profile_picture"`
}

// DisplayName returns the name shown next to a message bubble.
func (u UserRef) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	return u.Username
}

// ChatMessage is one entry in the community chat stream. IDs are
// server-assigned and monotonically increasing within the stream; the client
// never invents them. IsSelf is derived server-side from the requesting
// session and used verbatim for alignment and permissions.
type ChatMessage struct {
	ID        int64     `json:"id"`
	Author    UserRef   `json:"user"`
	Recipient *UserRef  `json:"recipient_detail,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"timestamp"`
	IsPrivate bool      `json:"is_private"`
	IsFlagged bool      `json:"is_flagged"`
	IsSelf    bool      `json:"is_sender"`
}

// LastMessageID returns the id of the final entry, or 0 for an empty stream.
func LastMessageID(messages []ChatMessage) int64 {
	if len(messages) == 0 {
		return 0
	}
	return messages[len(messages)-1].ID
}
