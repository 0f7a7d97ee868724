package ipc

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

type fakeHandler struct {
	visible      bool
	ignoreClicks bool
	perApp       bool
	deleted      []string
	hidden       map[string]bool
	placedCorner string
	placedAt     PointPayload
	cleared      bool
	clearedHide  bool
	resets       int
	reloads      int
	failReload   error
}

func newFakeHandler() *fakeHandler {
	return &fakeHandler{visible: true, hidden: make(map[string]bool)}
}

func (f *fakeHandler) Status() (StatusData, error) {
	return StatusData{
		InstanceID:    "test",
		State:         "idle",
		Visible:       f.visible,
		IgnoreClicks:  f.ignoreClicks,
		PerAppEnabled: f.perApp,
		CornerMode:    "top-right",
		DaemonRunning: true,
	}, nil
}

func (f *fakeHandler) Monitors() (MonitorsData, error) {
	return MonitorsData{Monitors: []MonitorInfo{{ID: 0, Name: "DP-1", Primary: true, Width: 1920, Height: 1080}}}, nil
}

func (f *fakeHandler) Positions() (PositionsData, error) {
	return PositionsData{
		Enabled:   true,
		Positions: []PositionInfo{{AppID: "firefox", DisplayName: "Firefox", X: 10, Y: 20}},
	}, nil
}

func (f *fakeHandler) DeletePosition(appID string) error {
	f.deleted = append(f.deleted, appID)
	return nil
}

func (f *fakeHandler) ClearPositions() error {
	f.cleared = true
	return nil
}

func (f *fakeHandler) ClearHidden() error {
	f.clearedHide = true
	return nil
}

func (f *fakeHandler) PlaceCorner(corner string) (PointPayload, error) {
	if corner == "middle" {
		return PointPayload{}, errors.New(`unknown corner "middle"`)
	}
	f.placedCorner = corner
	return PointPayload{X: 1740, Y: 20}, nil
}

func (f *fakeHandler) PlaceAt(x, y float64) (PointPayload, error) {
	f.placedAt = PointPayload{X: x, Y: y}
	return f.placedAt, nil
}

func (f *fakeHandler) SetVisibility(action string) (bool, error) {
	switch action {
	case VisibilityShow:
		f.visible = true
	case VisibilityHide:
		f.visible = false
	case VisibilityToggle:
		f.visible = !f.visible
	}
	return f.visible, nil
}

func (f *fakeHandler) SetAppHidden(appID string, hidden bool) error {
	f.hidden[appID] = hidden
	return nil
}

func (f *fakeHandler) SetIgnoreClicks(ignore bool) error {
	f.ignoreClicks = ignore
	return nil
}

func (f *fakeHandler) SetPerApp(enabled bool) error {
	f.perApp = enabled
	return nil
}

func (f *fakeHandler) ResetAnimation() error {
	f.resets++
	return nil
}

func (f *fakeHandler) Reload() error {
	f.reloads++
	return f.failReload
}

func request(t *testing.T, cmd CommandType, payload interface{}) *Request {
	t.Helper()
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		req.Payload = data
	}
	return req
}

func TestHandleCommand(t *testing.T) {
	tests := []struct {
		name       string
		req        func(t *testing.T) *Request
		wantStatus string
		wantErr    string
	}{
		{"status", func(t *testing.T) *Request { return request(t, CommandGetStatus, nil) }, "OK", ""},
		{"monitors", func(t *testing.T) *Request { return request(t, CommandGetMonitors, nil) }, "OK", ""},
		{"positions", func(t *testing.T) *Request { return request(t, CommandListPositions, nil) }, "OK", ""},
		{"delete", func(t *testing.T) *Request { return request(t, CommandDeletePosition, AppPayload{AppID: "a"}) }, "OK", ""},
		{"delete without id", func(t *testing.T) *Request { return request(t, CommandDeletePosition, AppPayload{}) }, "ERROR", "app_id is required"},
		{"corner", func(t *testing.T) *Request { return request(t, CommandPlaceCorner, CornerPayload{Corner: "top-left"}) }, "OK", ""},
		{"bad corner", func(t *testing.T) *Request { return request(t, CommandPlaceCorner, CornerPayload{Corner: "middle"}) }, "ERROR", "unknown corner"},
		{"missing corner", func(t *testing.T) *Request { return request(t, CommandPlaceCorner, CornerPayload{}) }, "ERROR", "corner is required"},
		{"visibility", func(t *testing.T) *Request {
			return request(t, CommandSetVisibility, VisibilityPayload{Action: VisibilityHide})
		}, "OK", ""},
		{"bad visibility", func(t *testing.T) *Request {
			return request(t, CommandSetVisibility, VisibilityPayload{Action: "blink"})
		}, "ERROR", "Unknown visibility action"},
		{"bad payload", func(t *testing.T) *Request {
			return &Request{Command: CommandPlaceAt, Payload: json.RawMessage(`"nope"`)}
		}, "ERROR", "Invalid point payload"},
		{"unknown", func(t *testing.T) *Request { return request(t, "DANCE", nil) }, "ERROR", "Unknown command: DANCE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServerAt("", newFakeHandler())
			resp := s.handleCommand(tt.req(t))
			if resp.Status != tt.wantStatus {
				t.Fatalf("status = %q, want %q (error %q)", resp.Status, tt.wantStatus, resp.Error)
			}
			if tt.wantErr != "" && !strings.Contains(resp.Error, tt.wantErr) {
				t.Fatalf("error = %q, want it to contain %q", resp.Error, tt.wantErr)
			}
		})
	}
}

func TestHandleCommand_DispatchesToHandler(t *testing.T) {
	h := newFakeHandler()
	s := NewServerAt("", h)

	s.handleCommand(request(t, CommandSetIgnoreClicks, TogglePayload{Enabled: true}))
	s.handleCommand(request(t, CommandSetPerApp, TogglePayload{Enabled: true}))
	s.handleCommand(request(t, CommandSetAppHidden, AppHiddenPayload{AppID: " games ", Hidden: true}))
	s.handleCommand(request(t, CommandClearPositions, nil))
	s.handleCommand(request(t, CommandClearHidden, nil))
	s.handleCommand(request(t, CommandResetAnimation, nil))
	s.handleCommand(request(t, CommandPlaceAt, PointPayload{X: 3, Y: 4}))

	if !h.ignoreClicks || !h.perApp {
		t.Fatalf("expected toggles applied, got clicks=%v perApp=%v", h.ignoreClicks, h.perApp)
	}
	if !h.hidden["games"] {
		t.Fatalf("expected trimmed app id hidden, got %v", h.hidden)
	}
	if !h.cleared || !h.clearedHide || h.resets != 1 {
		t.Fatalf("expected clears and reset, got cleared=%v hidden=%v resets=%d", h.cleared, h.clearedHide, h.resets)
	}
	if h.placedAt != (PointPayload{X: 3, Y: 4}) {
		t.Fatalf("unexpected placement %v", h.placedAt)
	}
}

func TestHandleCommand_ReloadFailure(t *testing.T) {
	h := newFakeHandler()
	h.failReload = errors.New("bad yaml")
	s := NewServerAt("", h)

	resp := s.handleCommand(request(t, CommandReload, nil))
	if resp.Status != "ERROR" || !strings.Contains(resp.Error, "bad yaml") {
		t.Fatalf("expected reload error, got %+v", resp)
	}
}

func TestClientServerRoundTrip(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "cat.sock")
	h := newFakeHandler()
	s := NewServerAt(socket, h)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	c := NewClientAt(socket)

	status, err := c.GetStatus()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.DaemonRunning || status.State != "idle" {
		t.Fatalf("unexpected status %+v", status)
	}

	positions, err := c.ListPositions()
	if err != nil {
		t.Fatalf("positions: %v", err)
	}
	if len(positions.Positions) != 1 || positions.Positions[0].DisplayName != "Firefox" {
		t.Fatalf("unexpected positions %+v", positions)
	}

	visible, err := c.SetVisibility(VisibilityToggle)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if visible {
		t.Fatalf("expected hidden after toggle")
	}

	p, err := c.PlaceCorner("top-right")
	if err != nil {
		t.Fatalf("corner: %v", err)
	}
	if p.X != 1740 || h.placedCorner != "top-right" {
		t.Fatalf("unexpected corner result %+v / %q", p, h.placedCorner)
	}

	if _, err := c.PlaceCorner("middle"); err == nil || !strings.Contains(err.Error(), "daemon error") {
		t.Fatalf("expected daemon error, got %v", err)
	}

	if err := c.DeletePosition("firefox"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(h.deleted) != 1 || h.deleted[0] != "firefox" {
		t.Fatalf("expected delete forwarded, got %v", h.deleted)
	}
}

func TestClient_NoDaemon(t *testing.T) {
	c := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	if err := c.Ping(); err == nil || !strings.Contains(err.Error(), "is the daemon running") {
		t.Fatalf("expected connection error, got %v", err)
	}
}
