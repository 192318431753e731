package hubtui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kindralabs/khub/internal/hub"
	"github.com/kindralabs/khub/internal/models"
)

// filterCycle is the order the category filter steps through. Empty means
// no filter.
var filterCycle = []models.Category{
	"",
	models.CategoryDonation,
	models.CategoryEvent,
	models.CategoryTask,
	models.CategoryCampaign,
	models.CategoryInfo,
	models.CategoryWarning,
	models.CategoryChat,
	models.CategoryOther,
}

type markReadResultMsg struct {
	err error
}

// activityView renders the notification feed.
type activityView struct {
	controller *hub.Controller

	notifications []models.Notification
	cursor        int
	offset        int

	searching bool
	query     string
	filterIdx int

	status string
}

func newActivityView(controller *hub.Controller) *activityView {
	return &activityView{controller: controller}
}

func (v *activityView) Init() tea.Cmd { return nil }

func (v *activityView) capturingInput() bool { return v.searching }

func (v *activityView) onOpen() {
	v.status = ""
}

func (v *activityView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case snapshotMsg:
		v.notifications = typed.snap.Notifications
		v.clampCursor()
		return nil
	case markReadResultMsg:
		if typed.err != nil {
			v.status = "mark read failed: " + typed.err.Error()
		}
		return nil
	case tea.KeyMsg:
		return v.handleKey(typed)
	}
	return nil
}

func (v *activityView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.searching {
		switch msg.String() {
		case "esc":
			v.searching = false
			v.query = ""
		case "enter":
			v.searching = false
		case "backspace":
			if len(v.query) > 0 {
				runes := []rune(v.query)
				v.query = string(runes[:len(runes)-1])
			}
		default:
			if msg.Type == tea.KeyRunes {
				v.query += string(msg.Runes)
			}
		}
		v.clampCursor()
		return nil
	}

	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.visible())-1 {
			v.cursor++
		}
	case "g", "home":
		v.cursor = 0
	case "G", "end":
		v.cursor = maxInt(0, len(v.visible())-1)
	case "/":
		v.searching = true
		v.query = ""
	case "f":
		v.filterIdx = (v.filterIdx + 1) % len(filterCycle)
		v.clampCursor()
	case "r", "enter":
		return v.markSelectedCmd()
	case "R":
		return v.markAllCmd()
	}
	return nil
}

func (v *activityView) markSelectedCmd() tea.Cmd {
	visible := v.visible()
	if v.cursor >= len(visible) {
		return nil
	}
	id := visible[v.cursor].ID
	controller := v.controller
	return func() tea.Msg {
		return markReadResultMsg{err: controller.MarkRead(context.Background(), []string{id})}
	}
}

func (v *activityView) markAllCmd() tea.Cmd {
	controller := v.controller
	return func() tea.Msg {
		return markReadResultMsg{err: controller.MarkAllRead(context.Background())}
	}
}

// visible applies the category filter and search query.
func (v *activityView) visible() []models.Notification {
	filter := filterCycle[v.filterIdx%len(filterCycle)]
	query := strings.ToLower(strings.TrimSpace(v.query))

	var out []models.Notification
	for _, n := range v.notifications {
		if filter != "" && n.Category != filter {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(n.Title), query) &&
			!strings.Contains(strings.ToLower(n.Message), query) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (v *activityView) clampCursor() {
	if n := len(v.visible()); v.cursor >= n {
		v.cursor = maxInt(0, n-1)
	}
}

func (v *activityView) View(width, height int, theme Theme) string {
	p := paletteFor(theme)
	visible := v.visible()

	var b strings.Builder

	if v.searching || v.query != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)).Render("search: "+v.query) + "\n")
		height--
	}
	if filter := filterCycle[v.filterIdx%len(filterCycle)]; filter != "" {
		icon, label := categoryGlyph(filter)
		b.WriteString(categoryStyle(filter, theme).Render("filter: "+icon+" "+label) + "\n")
		height--
	}
	if v.status != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(p.Danger)).Render(v.status) + "\n")
		height--
	}

	if len(visible) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)).Padding(1, 2).Render("No notifications"))
		return b.String()
	}

	rows := maxInt(1, height)
	v.scrollTo(rows)
	end := minInt(len(visible), v.offset+rows)

	now := nowFunc()
	for i := v.offset; i < end; i++ {
		b.WriteString(v.renderRow(visible[i], i == v.cursor, width, theme, now))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (v *activityView) renderRow(n models.Notification, selected bool, width int, theme Theme, now time.Time) string {
	p := paletteFor(theme)

	icon, label := categoryGlyph(n.Category)
	marker := " "
	if !n.Read {
		marker = "●"
	}
	stamp := relativeTime(n.CreatedAt, now)

	text := fmt.Sprintf("%s %s %-8s %s", marker, icon, label, n.Title)
	if n.Message != "" {
		text += "  " + n.Message
	}
	// Timestamp survives truncation; the body gives way first.
	avail := width - lipgloss.Width(stamp) - 2
	text = truncate(text, maxInt(0, avail))

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Foreground))
	if !n.Read {
		style = style.Bold(true).Foreground(lipgloss.Color(p.Unread))
	}
	if selected {
		style = style.Reverse(true)
	}

	line := style.Render(text)
	if stamp != "" {
		line += lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)).Render("  " + stamp)
	}
	return line
}

func (v *activityView) scrollTo(rows int) {
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+rows {
		v.offset = v.cursor - rows + 1
	}
	if v.offset < 0 {
		v.offset = 0
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
