// Package hubtui renders the Community Hub in the terminal: a collapsed
// badge bar, the activity feed, and the community chat thread, all fed from
// snapshots of the hub controller.
package hubtui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kindralabs/khub/internal/hub"
	"github.com/kindralabs/khub/internal/models"
)

const snapshotInterval = 500 * time.Millisecond

type Theme string

const (
	ThemeDefault      Theme = "default"
	ThemeHighContrast Theme = "high-contrast"
)

// Config carries TUI construction options.
type Config struct {
	Theme          string
	ShowTimestamps bool
}

// viewModel is one hub surface. The root model routes input to the active
// surface and stacks chrome around it.
type viewModel interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int, theme Theme) string
}

// snapshotMsg delivers a fresh controller snapshot to every surface.
type snapshotMsg struct {
	snap hub.Snapshot
}

type snapshotTickMsg struct{}

func snapshotTickCmd() tea.Cmd {
	return tea.Tick(snapshotInterval, func(time.Time) tea.Msg {
		return snapshotTickMsg{}
	})
}

// Model is the root bubbletea model for the hub.
type Model struct {
	controller *hub.Controller
	focus      *hub.FocusTracker
	theme      Theme

	width    int
	height   int
	showHelp bool

	snap  hub.Snapshot
	views map[models.Tab]viewModel
}

// NewModel builds the root model around a started controller. The focus
// tracker must be the one gating the controller's scheduler so that a
// suspended terminal stops the polling too.
func NewModel(cfg Config, controller *hub.Controller, focus *hub.FocusTracker) *Model {
	theme := Theme(cfg.Theme)
	if theme != ThemeHighContrast {
		theme = ThemeDefault
	}

	m := &Model{
		controller: controller,
		focus:      focus,
		theme:      theme,
		snap:       controller.Snapshot(),
	}
	m.views = map[models.Tab]viewModel{
		models.TabActivity:  newActivityView(controller),
		models.TabCommunity: newCommunityView(controller, cfg.ShowTimestamps),
	}
	return m
}

// Run drives the hub TUI until the user quits. The controller is started
// and stopped around the program's lifetime.
func Run(ctx context.Context, cfg Config, controller *hub.Controller, focus *hub.FocusTracker) error {
	if err := controller.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = controller.Stop() }()

	model := NewModel(cfg, controller, focus)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())
	_, err := program.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{snapshotTickCmd()}
	for _, view := range m.views {
		if cmd := view.Init(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		return m, nil

	case tea.FocusMsg:
		m.focus.SetFocused(true)
		_ = m.controller.SyncNow()
		return m, nil

	case tea.BlurMsg:
		m.focus.SetFocused(false)
		return m, nil

	case snapshotTickMsg:
		m.snap = m.controller.Snapshot()
		snap := snapshotMsg{snap: m.snap}
		cmds := []tea.Cmd{snapshotTickCmd()}
		for _, view := range m.views {
			if cmd := view.Update(snap); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(typed); handled {
			return m, cmd
		}
	}

	if active := m.activeView(); active != nil {
		return m, active.Update(msg)
	}
	return m, nil
}

func (m *Model) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	var body string
	if active := m.activeView(); active != nil {
		contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
		if contentHeight < 0 {
			contentHeight = 0
		}
		body = active.View(m.width, contentHeight, m.theme)
	} else {
		body = m.renderClosed()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	// Surfaces capturing text input get first refusal on printable keys.
	if capturer, ok := m.activeView().(interface{ capturingInput() bool }); ok && capturer.capturingInput() {
		return nil, false
	}

	switch msg.String() {
	case "ctrl+c":
		return tea.Quit, true
	case "q":
		if m.controller.State() == hub.StateClosed {
			return tea.Quit, true
		}
		m.controller.Close()
		m.snap = m.controller.Snapshot()
		return nil, true
	case "esc":
		if m.controller.State() != hub.StateClosed {
			m.controller.Close()
			m.snap = m.controller.Snapshot()
			return nil, true
		}
		return nil, false
	case "enter", "o":
		if m.controller.State() == hub.StateClosed {
			m.openTab(models.TabActivity)
			return nil, true
		}
		return nil, false
	case "a":
		m.openTab(models.TabActivity)
		return nil, true
	case "c":
		m.openTab(models.TabCommunity)
		return nil, true
	case "tab":
		if tab, open := m.controller.State().ActiveTab(); open {
			other := models.TabCommunity
			if tab == models.TabCommunity {
				other = models.TabActivity
			}
			m.controller.SwitchTab(other)
			m.snap = m.controller.Snapshot()
			if view := m.views[other]; view != nil {
				if opener, ok := view.(interface{ onOpen() }); ok {
					opener.onOpen()
				}
			}
			return nil, true
		}
		return nil, false
	case "?":
		m.showHelp = !m.showHelp
		return nil, true
	}
	return nil, false
}

func (m *Model) openTab(tab models.Tab) {
	m.controller.Open(tab)
	m.snap = m.controller.Snapshot()
	if view := m.views[tab]; view != nil {
		if opener, ok := view.(interface{ onOpen() }); ok {
			opener.onOpen()
		}
	}
}

func (m *Model) activeView() viewModel {
	tab, open := m.controller.State().ActiveTab()
	if !open {
		return nil
	}
	return m.views[tab]
}
