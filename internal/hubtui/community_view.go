package hubtui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kindralabs/khub/internal/hub"
	"github.com/kindralabs/khub/internal/models"
)

type sendResultMsg struct {
	err error
}

type deleteResultMsg struct {
	err error
}

// communityView renders the chat thread plus the composer line.
type communityView struct {
	controller *hub.Controller
	showStamps bool

	messages   []models.ChatMessage
	recipients []models.UserRef
	cursor     int
	follow     bool

	composing    bool
	input        string
	private      bool
	recipientIdx int
	sending      bool

	confirmDelete int64
	status        string
}

func newCommunityView(controller *hub.Controller, showStamps bool) *communityView {
	return &communityView{controller: controller, showStamps: showStamps, follow: true}
}

func (v *communityView) Init() tea.Cmd { return nil }

func (v *communityView) capturingInput() bool {
	return v.composing || v.confirmDelete != 0
}

func (v *communityView) onOpen() {
	v.follow = true
	v.cursor = maxInt(0, len(v.messages)-1)
	v.status = ""
}

func (v *communityView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case snapshotMsg:
		v.messages = typed.snap.Messages
		v.recipients = typed.snap.Recipients
		if v.recipientIdx >= len(v.recipients) {
			v.recipientIdx = 0
		}
		if v.follow {
			v.cursor = maxInt(0, len(v.messages)-1)
		} else if v.cursor >= len(v.messages) {
			v.cursor = maxInt(0, len(v.messages)-1)
		}
		return nil
	case sendResultMsg:
		v.sending = false
		if typed.err != nil {
			v.status = "send failed: " + typed.err.Error()
		} else {
			v.status = ""
			v.follow = true
			v.cursor = maxInt(0, len(v.messages)-1)
		}
		return nil
	case deleteResultMsg:
		if typed.err != nil {
			v.status = "delete failed: " + typed.err.Error()
		} else {
			v.status = ""
		}
		return nil
	case tea.KeyMsg:
		return v.handleKey(typed)
	}
	return nil
}

func (v *communityView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.confirmDelete != 0 {
		switch strings.ToLower(msg.String()) {
		case "y":
			id := v.confirmDelete
			v.confirmDelete = 0
			return v.deleteCmd(id)
		case "n", "esc":
			v.confirmDelete = 0
		}
		return nil
	}

	if v.composing {
		return v.handleComposeKey(msg)
	}

	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
			v.follow = false
		}
	case "down", "j":
		if v.cursor < len(v.messages)-1 {
			v.cursor++
		}
		v.follow = v.cursor == len(v.messages)-1
	case "G", "end":
		v.cursor = maxInt(0, len(v.messages)-1)
		v.follow = true
	case "i", "m":
		v.composing = true
		v.status = ""
	case "d":
		if v.cursor < len(v.messages) {
			target := v.messages[v.cursor]
			if !v.controller.CanDeleteMessage(target) {
				v.status = "cannot delete this message"
				return nil
			}
			v.confirmDelete = target.ID
		}
	}
	return nil
}

func (v *communityView) handleComposeKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.composing = false
		v.input = ""
		v.private = false
		return nil
	case "enter":
		return v.sendCmd()
	case "backspace":
		if len(v.input) > 0 {
			runes := []rune(v.input)
			v.input = string(runes[:len(runes)-1])
		}
		return nil
	case "ctrl+p":
		v.private = !v.private
		return nil
	case "ctrl+r":
		if len(v.recipients) > 0 {
			v.recipientIdx = (v.recipientIdx + 1) % len(v.recipients)
		}
		return nil
	}
	switch msg.Type {
	case tea.KeyRunes:
		v.input += string(msg.Runes)
	case tea.KeySpace:
		v.input += " "
	}
	return nil
}

func (v *communityView) sendCmd() tea.Cmd {
	if v.sending {
		return nil
	}
	content := strings.TrimSpace(v.input)
	if content == "" {
		return nil
	}

	recipientID := ""
	if v.private {
		if len(v.recipients) == 0 {
			v.status = "no recipients available for a private message"
			return nil
		}
		recipientID = v.recipients[v.recipientIdx].ID
	}

	v.sending = true
	v.input = ""
	private := v.private
	controller := v.controller
	return func() tea.Msg {
		_, err := controller.Send(context.Background(), content, private, recipientID)
		return sendResultMsg{err: err}
	}
}

func (v *communityView) deleteCmd(id int64) tea.Cmd {
	controller := v.controller
	return func() tea.Msg {
		return deleteResultMsg{err: controller.Delete(context.Background(), id)}
	}
}

func (v *communityView) View(width, height int, theme Theme) string {
	p := paletteFor(theme)

	composer := v.renderComposer(width, theme)
	threadHeight := height - lipgloss.Height(composer)
	if v.status != "" {
		threadHeight--
	}
	threadHeight = maxInt(1, threadHeight)

	thread := v.renderThread(width, threadHeight, theme)

	parts := []string{thread}
	if v.status != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(p.Danger)).Render(truncate(v.status, width)))
	}
	parts = append(parts, composer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (v *communityView) renderThread(width, height int, theme Theme) string {
	p := paletteFor(theme)
	if len(v.messages) == 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)).Padding(1, 2).Render("No messages yet. Press i to write one.")
	}

	var lines []string
	var prev *models.ChatMessage
	for i := range v.messages {
		m := v.messages[i]
		lines = append(lines, v.renderMessage(m, prev, i == v.cursor, width, theme)...)
		prev = &v.messages[i]
	}

	// Keep the cursor's message in the visible window, preferring the tail.
	if len(lines) > height {
		lines = lines[len(lines)-height:]
		if !v.follow {
			// Rough scroll: walk the window up proportionally to the cursor.
			all := v.allLines(width, theme)
			start := minInt(maxInt(0, v.cursorLine(width, theme)-height/2), maxInt(0, len(all)-height))
			lines = all[start:minInt(len(all), start+height)]
		}
	}
	return strings.Join(lines, "\n")
}

func (v *communityView) allLines(width int, theme Theme) []string {
	var lines []string
	var prev *models.ChatMessage
	for i := range v.messages {
		lines = append(lines, v.renderMessage(v.messages[i], prev, i == v.cursor, width, theme)...)
		prev = &v.messages[i]
	}
	return lines
}

func (v *communityView) cursorLine(width int, theme Theme) int {
	count := 0
	var prev *models.ChatMessage
	for i := range v.messages {
		if i == v.cursor {
			return count
		}
		count += len(v.renderMessage(v.messages[i], prev, false, width, theme))
		prev = &v.messages[i]
	}
	return count
}

func (v *communityView) renderMessage(m models.ChatMessage, prev *models.ChatMessage, selected bool, width int, theme Theme) []string {
	p := paletteFor(theme)
	var lines []string

	if hub.ShowHeader(prev, m) {
		header := m.Author.DisplayName()
		if m.Author.Role != "" {
			header += " · " + strings.ToLower(string(m.Author.Role))
		}
		if v.showStamps {
			header += " · " + clockTime(m.CreatedAt)
		} else {
			header += " · " + relativeTime(m.CreatedAt, nowFunc())
		}
		headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted))
		if hub.Alignment(m) == hub.SideSelf {
			lines = append(lines, headerStyle.Width(maxInt(0, width)).Align(lipgloss.Right).Render(header))
		} else {
			lines = append(lines, headerStyle.Render(header))
		}
	}

	body := m.Content
	if m.IsPrivate {
		label := "(private)"
		if m.Recipient != nil {
			label = fmt.Sprintf("(private to %s)", m.Recipient.DisplayName())
		}
		body = label + " " + body
	}
	if m.IsFlagged {
		body = "⚑ " + body
	}
	body = truncate(body, maxInt(1, width-4))

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Foreground))
	if hub.Alignment(m) == hub.SideSelf {
		style = style.Foreground(lipgloss.Color(p.SelfBubble))
	}
	if m.IsPrivate {
		style = style.Italic(true)
	}
	if selected {
		style = style.Reverse(true)
	}

	if hub.Alignment(m) == hub.SideSelf {
		lines = append(lines, lipgloss.NewStyle().Width(maxInt(0, width)).Align(lipgloss.Right).Render(style.Render(body)))
	} else {
		lines = append(lines, "  "+style.Render(body))
	}
	return lines
}

func (v *communityView) renderComposer(width int, theme Theme) string {
	p := paletteFor(theme)

	if v.confirmDelete != 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(p.Danger)).
			Render(fmt.Sprintf("delete message %d? [y/n]", v.confirmDelete))
	}

	if !v.composing {
		hint := "[i] write  [d] delete  [j/k] scroll"
		return lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)).Render(truncate(hint, width))
	}

	prompt := "> "
	if v.private {
		target := "?"
		if len(v.recipients) > 0 {
			target = v.recipients[v.recipientIdx].DisplayName()
		}
		prompt = fmt.Sprintf("[private→%s] > ", target)
	}
	line := prompt + v.input
	if v.sending {
		line += " (sending…)"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)).Render(truncate(line, width))
}
