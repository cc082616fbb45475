package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/input"
	"github.com/1broseidon/panedesk/internal/manager"
	"github.com/1broseidon/panedesk/internal/window"
)

// canvasTop is the screen row the desktop starts on, below the status bar.
const canvasTop = 1

// tickMsg re-reads the desktop state when polling is enabled.
type tickMsg time.Time

// model is the root bubbletea model for the viewer.
type model struct {
	desktop Desktop
	styles  *Styles
	keys    keyMap
	help    help.Model
	metrics metrics
	poll    time.Duration

	state    manager.State
	canvas   *canvas
	viewport geometry.Size
	// gesture is the window this viewer is dragging or resizing; 0 when idle.
	gesture window.ID
	opened   int

	statusText string
	err        error

	// Terminal dimensions
	width  int
	height int
}

func newModel(d Desktop, opts Options) model {
	opts = opts.withDefaults()
	return model{
		desktop: d,
		styles:  NewStyles(opts.Theme),
		keys:    defaultKeyMap(),
		help:    help.New(),
		metrics: metrics{cellWidth: opts.CellWidth, cellHeight: opts.CellHeight},
		poll:    opts.PollInterval,
		canvas:  newCanvas(0, 0),
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return m.tick()
}

func (m model) tick() tea.Cmd {
	if m.poll <= 0 {
		return nil
	}
	return tea.Tick(m.poll, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update implements tea.Model. Desktop calls are made inline so pointer
// events reach the manager in the order the terminal reported them.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case tickMsg:
		m.refresh()
		return m, m.tick()

	case tea.BlurMsg:
		m.cancelGesture()
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancelGesture()
		return *m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()

	case key.Matches(msg, m.keys.Cancel):
		m.cancelGesture()

	case key.Matches(msg, m.keys.Open):
		m.opened++
		id, err := m.desktop.Open(fmt.Sprintf("Window %d", m.opened), "", "")
		m.report(err, "opened window %s", id)

	default:
		return *m, nil
	}

	m.refresh()
	return *m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	col, row := msg.X, msg.Y-canvasTop
	pos := m.metrics.point(col, row)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.press(m.canvas.at(col, row), pos)
	case tea.MouseActionMotion:
		if m.gesture != 0 {
			m.pointer(input.Move(pos).For(m.gesture))
		}
	case tea.MouseActionRelease:
		if m.gesture != 0 {
			id := m.gesture
			m.gesture = 0
			m.pointer(input.Up(pos).For(id))
		}
	}
}

// press acts on the cell under a left click.
func (m *model) press(c cell, pos geometry.Point) {
	switch c.part {
	case partHeader:
		m.begin(input.Down(c.owner, input.HeaderHandle, pos))
	case partEdge:
		m.begin(input.Down(c.owner, input.ResizeHandle(c.dir), pos))
	case partMinimize:
		m.report(m.desktop.ToggleMinimize(c.owner), "minimized window %s", c.owner)
		m.refresh()
	case partMaximize:
		m.report(m.desktop.ToggleMaximize(c.owner), "toggled maximize on window %s", c.owner)
		m.refresh()
	case partClose:
		m.report(m.desktop.Close(c.owner), "closed window %s", c.owner)
		m.refresh()
	case partTray:
		m.report(m.desktop.ToggleMinimize(c.owner), "restored window %s", c.owner)
		m.refresh()
	case partBody:
		if err := m.desktop.Focus(c.owner); err != nil {
			m.report(err, "")
		}
		m.refresh()
	}
}

// begin starts a gesture and remembers its window if the desktop accepted it.
func (m *model) begin(down input.Event) {
	if m.pointer(down) {
		m.gesture = down.WindowID
	}
}

// pointer sends ev with the current viewport and reports whether it changed
// the desktop.
func (m *model) pointer(ev input.Event) bool {
	if !m.viewport.IsZero() {
		ev = ev.WithViewport(m.viewport)
	}
	changed, err := m.desktop.Pointer(ev)
	if err != nil {
		m.report(err, "")
		return false
	}
	if changed {
		m.refresh()
	}
	return changed
}

// cancelGesture cancels the gesture this viewer started. A gesture another
// client started since then is left alone.
func (m *model) cancelGesture() {
	if m.gesture == 0 {
		return
	}
	id := m.gesture
	m.gesture = 0
	m.pointer(input.Event{Kind: input.FocusLost, WindowID: id})
}

func (m *model) report(err error, format string, args ...any) {
	m.err = err
	if err == nil && format != "" {
		m.statusText = fmt.Sprintf(format, args...)
	}
}

// refresh re-reads the desktop and repaints the canvas.
func (m *model) refresh() {
	state, err := m.desktop.State()
	if err != nil {
		m.err = err
		return
	}
	m.state = state
	m.repaint()
}

func (m *model) repaint() {
	m.canvas = paint(m.state, m.width, m.canvasRows(), m.metrics)
}

// resize reports the canvas size to the desktop as its viewport.
func (m *model) resize() {
	rows := m.canvasRows()
	if m.width <= 0 || rows <= 0 {
		m.canvas = newCanvas(0, 0)
		return
	}
	m.viewport = m.metrics.viewport(m.width, rows)
	if err := m.desktop.SetViewport(m.viewport); err != nil {
		m.err = err
	}
	m.refresh()
}

func (m model) helpHeight() int {
	if m.help.ShowAll {
		return len(m.keys.FullHelp()[0])
	}
	return 1
}

func (m model) canvasRows() int {
	return m.height - canvasTop - m.helpHeight()
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	helpBar := m.styles.HelpStyle().Width(m.width).Render(m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatusBar(),
		m.canvas.render(m.styles),
		helpBar,
	)
}

func (m model) renderStatusBar() string {
	minimized := 0
	for _, w := range m.state.Windows {
		if w.Mode == window.ModeMinimized {
			minimized++
		}
	}

	parts := []string{
		m.styles.AccentStyle().Render("panedesk"),
		fmt.Sprintf("%d windows", len(m.state.Windows)),
		fmt.Sprintf("%d in tray", minimized),
		fmt.Sprintf("%.0f×%.0f", m.viewport.Width, m.viewport.Height),
	}
	if s := m.state.Session; s != nil {
		label := fmt.Sprintf("%s window %s", s.Kind, s.WindowID)
		if s.Direction != "" {
			label += " " + s.Direction
		}
		parts = append(parts, label)
	}
	switch {
	case m.err != nil:
		parts = append(parts, m.styles.ErrorStyle().Render(m.err.Error()))
	case m.statusText != "":
		parts = append(parts, m.statusText)
	}

	return m.styles.StatusBarStyle().Width(m.width).Render(strings.Join(parts, "  "))
}
