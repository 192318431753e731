package hubtui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kindralabs/khub/internal/hub"
)

func (m *Model) renderHeader() string {
	p := paletteFor(m.theme)

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.Foreground)).
		Background(lipgloss.Color(p.Header)).
		Bold(true).
		Padding(0, 1)

	left := "Community Hub"
	center := m.renderTabs()
	right := syncStatus(m.snap)
	return style.Width(maxInt(0, m.width)).Render(joinHeader(left, center, right, m.width-2))
}

func (m *Model) renderTabs() string {
	activity := "Activity"
	community := "Community"
	if n := m.snap.Ledger.NotifUnread; n > 0 {
		activity = fmt.Sprintf("Activity(%d)", n)
	}
	if n := m.snap.Ledger.ChatUnread; n > 0 {
		community = fmt.Sprintf("Community(%d)", n)
	}

	switch m.controller.State() {
	case hub.StateOpenActivity:
		activity = "[" + activity + "]"
	case hub.StateOpenCommunity:
		community = "[" + community + "]"
	}
	return activity + "  " + community
}

func (m *Model) renderFooter() string {
	p := paletteFor(m.theme)

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.Foreground)).
		Background(lipgloss.Color(p.Footer)).
		Padding(0, 1)

	var base string
	if _, open := m.controller.State().ActiveTab(); open {
		base = "[tab] switch  [esc] close  [?] help"
		if m.showHelp {
			base += "  ([a]ctivity [c]ommunity, /search, r read, R read all, d delete, ctrl+p private)"
		}
	} else {
		base = "[enter] open  [a]ctivity  [c]ommunity  [q] quit"
	}
	return style.Width(maxInt(0, m.width)).Render(truncate(base, maxInt(0, m.width-2)))
}

// renderClosed is the collapsed hub: a badge bar the rest of the terminal
// sits behind.
func (m *Model) renderClosed() string {
	p := paletteFor(m.theme)
	total := m.snap.Ledger.Total()

	line := "hub closed"
	if total > 0 {
		badge := lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Badge)).
			Bold(true).
			Render(fmt.Sprintf("● %d unread", total))
		line = "hub closed  " + badge
		if m.snap.Ledger.ChatUnread > 0 {
			line += lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)).
				Render(fmt.Sprintf("  (%d chat, %d activity)", m.snap.Ledger.ChatUnread, m.snap.Ledger.NotifUnread))
		}
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(line)
}

func syncStatus(snap hub.Snapshot) string {
	if snap.LastSyncErr != "" {
		return "sync error"
	}
	if snap.LastSyncAt.IsZero() {
		return "syncing…"
	}
	return "synced " + relativeTime(snap.LastSyncAt, nowFunc())
}

func joinHeader(left, center, right string, width int) string {
	left = strings.TrimSpace(left)
	center = strings.TrimSpace(center)
	right = strings.TrimSpace(right)
	if width <= 0 {
		return left
	}

	space := width - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if space < 2 {
		return truncate(left+"  "+center, width)
	}
	leftGap := space / 2
	rightGap := space - leftGap
	return left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
