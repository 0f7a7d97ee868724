package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/bongocat/internal/ipc"
)

type fakeClient struct {
	down         bool
	visible      bool
	ignoreClicks bool
	positions    []ipc.PositionInfo
	corner       string
	hidden       map[string]bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		visible: true,
		positions: []ipc.PositionInfo{
			{AppID: "code", DisplayName: "Code", X: 10, Y: 20},
			{AppID: "firefox", DisplayName: "Firefox", X: 300, Y: 400},
		},
		hidden: make(map[string]bool),
	}
}

var errDown = errors.New("failed to connect to daemon")

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if f.down {
		return nil, errDown
	}
	return &ipc.StatusData{State: "idle", Visible: f.visible, IgnoreClicks: f.ignoreClicks, CornerMode: "top-right", CurrentApp: "code", CurrentAppName: "Code"}, nil
}

func (f *fakeClient) ListPositions() (*ipc.PositionsData, error) {
	if f.down {
		return nil, errDown
	}
	out := make([]ipc.PositionInfo, len(f.positions))
	copy(out, f.positions)
	for i := range out {
		out[i].Hidden = f.hidden[out[i].AppID]
	}
	return &ipc.PositionsData{Enabled: true, Positions: out}, nil
}

func (f *fakeClient) DeletePosition(appID string) error {
	for i, p := range f.positions {
		if p.AppID == appID {
			f.positions = append(f.positions[:i], f.positions[i+1:]...)
			return nil
		}
	}
	return errors.New("no position for " + appID)
}

func (f *fakeClient) ClearPositions() error {
	f.positions = nil
	return nil
}

func (f *fakeClient) PlaceCorner(corner string) (*ipc.PointPayload, error) {
	f.corner = corner
	return &ipc.PointPayload{X: 20, Y: 52}, nil
}

func (f *fakeClient) SetVisibility(action string) (bool, error) {
	if action == ipc.VisibilityToggle {
		f.visible = !f.visible
	}
	return f.visible, nil
}

func (f *fakeClient) SetAppHidden(appID string, hidden bool) error {
	f.hidden[appID] = hidden
	return nil
}

func (f *fakeClient) SetIgnoreClicks(ignore bool) error {
	f.ignoreClicks = ignore
	return nil
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(t *testing.T, c Client) model {
	t.Helper()
	next, _ := newModel(c).Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(model)
}

func press(t *testing.T, m model, k tea.KeyMsg) (model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(k)
	var msg tea.Msg
	if cmd != nil {
		msg = cmd()
	}
	return next.(model), msg
}

func TestNewModel_LoadsPositions(t *testing.T) {
	m := sized(t, newFakeClient())
	if !m.connected {
		t.Fatalf("expected connected")
	}
	if got := len(m.list.Items()); got != 2 {
		t.Fatalf("expected 2 items, got %d", got)
	}
	view := m.View()
	if !strings.Contains(view, "app:Code") || !strings.Contains(view, "Firefox") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestModel_DaemonDown(t *testing.T) {
	c := newFakeClient()
	c.down = true
	m := sized(t, c)
	if m.connected {
		t.Fatalf("expected disconnected")
	}
	if !strings.Contains(m.View(), "daemon not running") {
		t.Fatalf("expected disconnected header")
	}
}

func TestModel_ForgetSelected(t *testing.T) {
	c := newFakeClient()
	m := sized(t, c)

	m, msg := press(t, m, key("d"))
	status, ok := msg.(statusMsg)
	if !ok || status.err || !strings.Contains(status.text, "code") {
		t.Fatalf("expected forgot code status, got %#v", msg)
	}
	if got := len(m.list.Items()); got != 1 {
		t.Fatalf("expected 1 item after delete, got %d", got)
	}
}

func TestModel_HideForSelectedApp(t *testing.T) {
	c := newFakeClient()
	m := sized(t, c)

	m, _ = press(t, m, key("h"))
	if !c.hidden["code"] {
		t.Fatalf("expected code hidden")
	}
	item := m.list.Items()[0].(positionItem)
	if !strings.Contains(item.Title(), "hidden") {
		t.Fatalf("expected hidden marker, got %q", item.Title())
	}

	press(t, m, key("h"))
	if c.hidden["code"] {
		t.Fatalf("expected second press to unhide")
	}
}

func TestModel_CornerKeys(t *testing.T) {
	c := newFakeClient()
	m := sized(t, c)
	_, msg := press(t, m, key("3"))
	if c.corner != "bottom-left" {
		t.Fatalf("expected bottom-left, got %q", c.corner)
	}
	if status := msg.(statusMsg); !strings.Contains(status.text, "bottom-left") {
		t.Fatalf("unexpected status %q", status.text)
	}
}

func TestModel_ToggleVisibilityAndClicks(t *testing.T) {
	c := newFakeClient()
	m := sized(t, c)

	m, _ = press(t, m, key("v"))
	if c.visible {
		t.Fatalf("expected hidden after toggle")
	}
	if !strings.Contains(m.View(), "hidden") {
		t.Fatalf("expected header to show hidden")
	}

	m, _ = press(t, m, key("c"))
	if !c.ignoreClicks {
		t.Fatalf("expected clicks ignored")
	}
	press(t, m, key("c"))
	if c.ignoreClicks {
		t.Fatalf("expected clicks restored")
	}
}

func TestModel_ErrorStatus(t *testing.T) {
	c := newFakeClient()
	m := sized(t, c)
	c.positions = nil // selection still points at the stale item

	_, msg := press(t, m, key("d"))
	status, ok := msg.(statusMsg)
	if !ok || !status.err {
		t.Fatalf("expected error status, got %#v", msg)
	}
}

func TestModel_ClearAndQuit(t *testing.T) {
	c := newFakeClient()
	m := sized(t, c)

	m, _ = press(t, m, key("X"))
	if len(m.list.Items()) != 0 {
		t.Fatalf("expected no items after clear")
	}

	_, msg := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Fatalf("expected quit, got %#v", msg)
	}
}

func TestModel_StatusClears(t *testing.T) {
	m := sized(t, newFakeClient())
	next, cmd := m.Update(statusMsg{text: "hello"})
	m = next.(model)
	if m.statusText != "hello" || cmd == nil {
		t.Fatalf("expected status set with clear timer")
	}
	next, _ = m.Update(clearStatusMsg{})
	if next.(model).statusText != "" {
		t.Fatalf("expected status cleared")
	}
}
