package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/bongocat/internal/ipc"
)

const (
	refreshInterval = time.Second
	statusLifetime  = 3 * time.Second
)

// positionItem implements list.DefaultItem for one remembered app.
type positionItem struct {
	info ipc.PositionInfo
}

func (i positionItem) Title() string {
	name := i.info.DisplayName
	if name == "" {
		name = i.info.AppID
	}
	if i.info.Hidden {
		name += " (hidden)"
	}
	return name
}

func (i positionItem) Description() string {
	return fmt.Sprintf("%s  %.0f,%.0f", i.info.AppID, i.info.X, i.info.Y)
}

func (i positionItem) FilterValue() string { return i.info.AppID + " " + i.info.DisplayName }

// tickMsg drives the periodic refresh.
type tickMsg time.Time

// statusMsg is shown in the footer until clearStatusMsg arrives.
type statusMsg struct {
	text string
	err  bool
}

type clearStatusMsg struct{}

// cornerKeys maps number keys to corners in reading order.
var cornerKeys = map[string]string{
	"1": "top-left",
	"2": "top-right",
	"3": "bottom-left",
	"4": "bottom-right",
}

type model struct {
	client Client
	list   list.Model

	connected bool
	status    ipc.StatusData
	positions ipc.PositionsData

	statusText string
	statusErr  bool

	width  int
	height int
}

func newModel(client Client) model {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Remembered positions"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	m := model{client: client, list: l}
	m.refresh()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func clearStatusLater() tea.Cmd {
	return tea.Tick(statusLifetime, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tick()
}

// refresh pulls status and positions from the daemon. A failed status
// call marks the daemon disconnected and keeps the last positions.
func (m *model) refresh() {
	status, err := m.client.GetStatus()
	if err != nil {
		m.connected = false
		return
	}
	m.connected = true
	m.status = *status

	positions, err := m.client.ListPositions()
	if err != nil {
		return
	}
	m.positions = *positions
	items := make([]list.Item, 0, len(positions.Positions))
	for _, p := range positions.Positions {
		items = append(items, positionItem{info: p})
	}
	m.list.SetItems(items)
}

func (m model) selected() (ipc.PositionInfo, bool) {
	item, ok := m.list.SelectedItem().(positionItem)
	if !ok {
		return ipc.PositionInfo{}, false
	}
	return item.info, true
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, m.listHeight())
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()

	case statusMsg:
		m.statusText = msg.text
		m.statusErr = msg.err
		return m, clearStatusLater()

	case clearStatusMsg:
		m.statusText = ""
		m.statusErr = false
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg.String()); handled {
			m.refresh()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleKey runs the action bound to key. It reports false for keys the
// list should handle.
func (m *model) handleKey(key string) (tea.Cmd, bool) {
	switch key {
	case "ctrl+c", "q", "esc":
		return tea.Quit, true
	case "r":
		return nil, true
	case "v":
		visible, err := m.client.SetVisibility(ipc.VisibilityToggle)
		return report(err, "visible: %v", visible), true
	case "c":
		ignore := !m.status.IgnoreClicks
		err := m.client.SetIgnoreClicks(ignore)
		return report(err, "ignore clicks: %v", ignore), true
	case "1", "2", "3", "4":
		corner := cornerKeys[key]
		p, err := m.client.PlaceCorner(corner)
		if err != nil {
			return report(err, ""), true
		}
		return report(nil, "moved to %s (%.0f,%.0f)", corner, p.X, p.Y), true
	case "d", "delete":
		info, ok := m.selected()
		if !ok {
			return nil, true
		}
		err := m.client.DeletePosition(info.AppID)
		return report(err, "forgot %s", info.AppID), true
	case "h":
		info, ok := m.selected()
		if !ok {
			return nil, true
		}
		err := m.client.SetAppHidden(info.AppID, !info.Hidden)
		return report(err, "hidden for %s: %v", info.AppID, !info.Hidden), true
	case "X":
		err := m.client.ClearPositions()
		return report(err, "cleared all positions"), true
	}
	return nil, false
}

func report(err error, format string, args ...any) tea.Cmd {
	msg := statusMsg{text: fmt.Sprintf(format, args...)}
	if err != nil {
		msg = statusMsg{text: fmt.Sprintf("error: %v", err), err: true}
	}
	return func() tea.Msg { return msg }
}

// listHeight leaves room for the header and footer.
func (m model) listHeight() int {
	return max(m.height-4, 1)
}
