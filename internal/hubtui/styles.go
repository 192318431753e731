package hubtui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kindralabs/khub/internal/models"
)

// palette holds the colors one theme uses across the hub chrome.
type palette struct {
	Foreground string
	Muted      string
	Header     string
	Footer     string
	Accent     string
	Badge      string
	Unread     string
	SelfBubble string
	Warning    string
	Danger     string
}

var palettes = map[Theme]palette{
	ThemeDefault: {
		Foreground: "252",
		Muted:      "243",
		Header:     "24",
		Footer:     "236",
		Accent:     "39",
		Badge:      "203",
		Unread:     "220",
		SelfBubble: "30",
		Warning:    "214",
		Danger:     "196",
	},
	ThemeHighContrast: {
		Foreground: "15",
		Muted:      "250",
		Header:     "18",
		Footer:     "0",
		Accent:     "51",
		Badge:      "201",
		Unread:     "226",
		SelfBubble: "22",
		Warning:    "208",
		Danger:     "9",
	},
}

func paletteFor(theme Theme) palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes[ThemeDefault]
}

// categoryGlyph maps every renderable category to its icon and label. The
// switch is exhaustive over the closed set; anything unknown was already
// folded onto CategoryOther at decode time.
func categoryGlyph(category models.Category) (icon, label string) {
	switch category {
	case models.CategoryDonation:
		return "♥", "donation"
	case models.CategoryEvent:
		return "▣", "event"
	case models.CategoryTask:
		return "✓", "task"
	case models.CategoryCampaign:
		return "▶", "campaign"
	case models.CategoryInfo:
		return "ℹ", "info"
	case models.CategoryWarning:
		return "!", "warning"
	case models.CategoryChat:
		return "✉", "chat"
	default:
		return "•", "other"
	}
}

func categoryStyle(category models.Category, theme Theme) lipgloss.Style {
	p := paletteFor(theme)
	color := p.Accent
	switch category {
	case models.CategoryWarning:
		color = p.Warning
	case models.CategoryDonation:
		color = p.Badge
	case models.CategoryChat:
		color = p.Unread
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
