package placement

import (
	"errors"
	"testing"
	"time"

	"github.com/1broseidon/bongocat/internal/eventloop"
	"github.com/1broseidon/bongocat/internal/geom"
	"github.com/1broseidon/bongocat/internal/perapp"
	"github.com/1broseidon/bongocat/internal/prefs"
)

type fakeWindow struct {
	frame    geom.Rect
	hidden   bool
	moves    []geom.Point
	frameErr error
}

func (w *fakeWindow) Frame() (geom.Rect, error) {
	if w.frameErr != nil {
		return geom.Rect{}, w.frameErr
	}
	return w.frame, nil
}

func (w *fakeWindow) Move(p geom.Point) error {
	w.frame = w.frame.WithOrigin(p)
	w.moves = append(w.moves, p)
	return nil
}

func (w *fakeWindow) Show() error { w.hidden = false; return nil }
func (w *fakeWindow) Hide() error { w.hidden = true; return nil }

type fakeScreens struct {
	screens []Screen
	err     error
}

func (f *fakeScreens) Screens() ([]Screen, error) { return f.screens, f.err }

var (
	mainScreen = Screen{
		ID: 0, Name: "DP-1", Primary: true,
		Frame:   geom.Rect{Width: 1920, Height: 1080},
		Visible: geom.Rect{Y: 32, Width: 1920, Height: 1048},
	}
	sideScreen = Screen{
		ID: 1, Name: "HDMI-1",
		Frame:   geom.Rect{X: 1920, Width: 1280, Height: 1024},
		Visible: geom.Rect{X: 1920, Width: 1280, Height: 1024},
	}
)

type harness struct {
	clock   *eventloop.Manual
	win     *fakeWindow
	screens *fakeScreens
	apps    *perapp.Store
	prefs   *prefs.Preferences
	ctrl    *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	kv := prefs.NewMemoryStore()
	h := &harness{
		clock:   eventloop.NewManual(time.Unix(0, 0)),
		win:     &fakeWindow{frame: geom.Rect{X: 100, Y: 100, Width: 160, Height: 120}},
		screens: &fakeScreens{screens: []Screen{mainScreen, sideScreen}},
		apps:    perapp.Open(kv, perapp.Options{DefaultEnabled: true}),
		prefs:   prefs.NewPreferences(kv),
	}
	h.ctrl = NewController(h.clock, h.win, h.screens, h.apps, h.prefs, Config{
		Margin:        DefaultMargin,
		DefaultCorner: TopRight,
		GuardInterval: DefaultGuardInterval,
		WindowSize:    geom.Size{Width: 160, Height: 120},
	}, nil)
	return h
}

// drag simulates the user moving the window after any guard has expired.
func (h *harness) drag(t *testing.T, p geom.Point) {
	t.Helper()
	h.clock.Advance(time.Second)
	h.win.frame = h.win.frame.WithOrigin(p)
	if err := h.ctrl.HandleWindowMoved(p); err != nil {
		t.Fatalf("window moved: %v", err)
	}
}

func TestParseCorner(t *testing.T) {
	tests := []struct {
		in      string
		want    Corner
		wantErr bool
	}{
		{"top-left", TopLeft, false},
		{"TopRight", TopRight, false},
		{"bottom_left", BottomLeft, false},
		{"br", BottomRight, false},
		{"custom", Custom, false},
		{"middle", TopRight, true},
	}
	for _, tt := range tests {
		got, err := ParseCorner(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseCorner(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseCorner(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCornerPoint_MarginFromVisibleEdges(t *testing.T) {
	visible := geom.Rect{X: 0, Y: 32, Width: 1920, Height: 1048}
	size := geom.Size{Width: 160, Height: 120}

	tests := []struct {
		corner Corner
		want   geom.Point
	}{
		{TopLeft, geom.Point{X: 20, Y: 52}},
		{TopRight, geom.Point{X: 1740, Y: 52}},
		{BottomLeft, geom.Point{X: 20, Y: 940}},
		{BottomRight, geom.Point{X: 1740, Y: 940}},
	}
	for _, tt := range tests {
		got, ok := CornerPoint(tt.corner, visible, size, 20)
		if !ok || got != tt.want {
			t.Fatalf("%v: got %v,%v want %v", tt.corner, got, ok, tt.want)
		}
	}

	p, _ := CornerPoint(TopRight, visible, size, 20)
	if right := visible.MaxX() - (p.X + size.Width); right != 20 {
		t.Fatalf("expected right gap of 20, got %v", right)
	}
	if top := p.Y - visible.Y; top != 20 {
		t.Fatalf("expected top gap of 20, got %v", top)
	}

	if _, ok := CornerPoint(Custom, visible, size, 20); ok {
		t.Fatalf("expected Custom to have no geometric point")
	}
}

func TestRelativePoint_KeepsFractionAndClamps(t *testing.T) {
	from := geom.Rect{Width: 1000, Height: 1000}
	to := geom.Rect{X: 2000, Width: 500, Height: 500}
	size := geom.Size{Width: 100, Height: 100}

	got := RelativePoint(geom.Point{X: 250, Y: 500}, size, from, to)
	if got != (geom.Point{X: 2125, Y: 250}) {
		t.Fatalf("expected (2125,250), got %v", got)
	}

	got = RelativePoint(geom.Point{X: 950, Y: 950}, size, from, to)
	if got != (geom.Point{X: 2400, Y: 400}) {
		t.Fatalf("expected clamp to (2400,400), got %v", got)
	}
}

func TestScreenFor(t *testing.T) {
	all := []Screen{mainScreen, sideScreen}

	s, ok := ScreenFor(all, geom.Rect{X: 2000, Y: 10, Width: 100, Height: 100})
	if !ok || s.ID != 1 {
		t.Fatalf("expected side screen, got %v,%v", s, ok)
	}

	// Center off-screen but overlapping the main screen.
	s, ok = ScreenFor(all, geom.Rect{X: -100, Y: 500, Width: 160, Height: 100})
	if !ok || s.ID != 0 {
		t.Fatalf("expected main screen by overlap, got %v,%v", s, ok)
	}

	if _, ok := ScreenFor(all, geom.Rect{X: -5000, Y: -5000, Width: 10, Height: 10}); ok {
		t.Fatalf("expected no screen")
	}
}

func TestController_ProgrammaticMoveIsNotSavedAsDrag(t *testing.T) {
	h := newHarness(t)
	h.ctrl.HandleAppSwitch(AppSwitch{To: "app.a"})

	if err := h.ctrl.PlaceAt(geom.Point{X: 50, Y: 60}); err != nil {
		t.Fatalf("place: %v", err)
	}
	if !h.ctrl.Programmatic() {
		t.Fatalf("expected programmatic guard after PlaceAt")
	}
	// The window manager may nudge the window while applying the move.
	h.ctrl.HandleWindowMoved(geom.Point{X: 52, Y: 64})
	if _, ok := h.apps.Position("app.a"); ok {
		t.Fatalf("programmatic move must not be saved as a manual position")
	}

	h.clock.Advance(DefaultGuardInterval)
	if h.ctrl.Programmatic() {
		t.Fatalf("expected guard cleared after interval")
	}
	h.ctrl.HandleWindowMoved(geom.Point{X: 70, Y: 80})
	if p, ok := h.apps.Position("app.a"); !ok || p != (geom.Point{X: 70, Y: 80}) {
		t.Fatalf("expected drag saved, got %v,%v", p, ok)
	}
	if p, ok := h.prefs.Position(); !ok || p != (geom.Point{X: 70, Y: 80}) {
		t.Fatalf("expected global position saved, got %v,%v", p, ok)
	}
}

func TestController_ConfigureWithoutMovementIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.prefs.SetCornerMode("bottom-left")
	h.ctrl.PlaceAt(geom.Point{X: 10, Y: 10})
	h.clock.Advance(time.Second)

	h.ctrl.HandleWindowMoved(geom.Point{X: 10, Y: 10})
	if mode, _ := h.prefs.CornerMode(); mode != "bottom-left" {
		t.Fatalf("expected corner mode untouched, got %q", mode)
	}
}

func TestController_OverlappingPlacementsExtendGuard(t *testing.T) {
	h := newHarness(t)
	h.ctrl.PlaceAt(geom.Point{X: 1, Y: 1})
	h.clock.Advance(60 * time.Millisecond)
	h.ctrl.PlaceAt(geom.Point{X: 2, Y: 2})
	h.clock.Advance(60 * time.Millisecond)
	if !h.ctrl.Programmatic() {
		t.Fatalf("first guard expiry must not clear the second placement's guard")
	}
	h.clock.Advance(40 * time.Millisecond)
	if h.ctrl.Programmatic() {
		t.Fatalf("expected guard cleared")
	}
}

func TestController_AppSwitchScenario(t *testing.T) {
	h := newHarness(t)

	if err := h.ctrl.HandleAppSwitch(AppSwitch{To: "A"}); err != nil {
		t.Fatalf("switch to A: %v", err)
	}
	h.drag(t, geom.Point{X: 300, Y: 400})

	if err := h.ctrl.HandleAppSwitch(AppSwitch{From: "A", To: "B"}); err != nil {
		t.Fatalf("switch to B: %v", err)
	}
	want := geom.Point{X: 1920 - 20 - 160, Y: 32 + 20}
	if origin, _ := h.ctrl.CurrentOrigin(); origin != want {
		t.Fatalf("expected default top-right %v for B, got %v", want, origin)
	}
	if p, ok := h.apps.Position("A"); !ok || p != (geom.Point{X: 300, Y: 400}) {
		t.Fatalf("expected A saved at (300,400), got %v,%v", p, ok)
	}

	h.clock.Advance(time.Second)
	if err := h.ctrl.HandleAppSwitch(AppSwitch{From: "B", To: "A"}); err != nil {
		t.Fatalf("switch back to A: %v", err)
	}
	if origin, _ := h.ctrl.CurrentOrigin(); origin != (geom.Point{X: 300, Y: 400}) {
		t.Fatalf("expected A restored to (300,400), got %v", origin)
	}
	if p, ok := h.apps.Position("B"); !ok || p != want {
		t.Fatalf("expected B's origin saved on switch-away, got %v,%v", p, ok)
	}
}

func TestController_DefaultCornerUsesIncomingAppScreen(t *testing.T) {
	h := newHarness(t)
	bounds := geom.Rect{X: 2100, Y: 100, Width: 800, Height: 600}

	h.ctrl.HandleAppSwitch(AppSwitch{To: "editor", ToBounds: &bounds})
	want := geom.Point{X: 1920 + 1280 - 20 - 160, Y: 20}
	if origin, _ := h.ctrl.CurrentOrigin(); origin != want {
		t.Fatalf("expected %v on side screen, got %v", want, origin)
	}
}

func TestController_PerAppHiding(t *testing.T) {
	h := newHarness(t)
	h.apps.SetHidden("games", true)

	h.ctrl.HandleAppSwitch(AppSwitch{To: "games"})
	if h.ctrl.Visible() || !h.win.hidden {
		t.Fatalf("expected window hidden for hidden app")
	}

	h.ctrl.HandleAppSwitch(AppSwitch{From: "games", To: "term"})
	if !h.ctrl.Visible() || h.win.hidden {
		t.Fatalf("expected window shown for normal app")
	}

	if err := h.ctrl.SetHiddenForCurrentApp(true); err != nil {
		t.Fatalf("hide current: %v", err)
	}
	if h.ctrl.Visible() || !h.apps.IsHidden("term") {
		t.Fatalf("expected current app hidden and recorded")
	}

	if err := h.ctrl.SetPerAppEnabled(false); err != nil {
		t.Fatalf("disable per-app: %v", err)
	}
	if !h.ctrl.Visible() {
		t.Fatalf("expected window visible once per-app hiding is off")
	}
}

func TestController_ClearHiddenShowsCurrentApp(t *testing.T) {
	h := newHarness(t)
	h.apps.SetHidden("games", true)
	h.apps.SetHidden("mail", true)

	h.ctrl.HandleAppSwitch(AppSwitch{To: "games"})
	if h.ctrl.Visible() {
		t.Fatalf("expected window hidden for hidden app")
	}

	if err := h.ctrl.ClearHidden(); err != nil {
		t.Fatalf("clear hidden: %v", err)
	}
	if !h.ctrl.Visible() || h.win.hidden {
		t.Fatalf("expected window shown after clearing hides")
	}
	if got := h.apps.HiddenApps(); len(got) != 0 {
		t.Fatalf("expected no hidden apps, got %v", got)
	}
}

func TestController_PerAppDisabledLeavesWindowAlone(t *testing.T) {
	h := newHarness(t)
	h.apps.SetEnabled(false)
	h.apps.SetHidden("B", true)

	h.ctrl.HandleAppSwitch(AppSwitch{To: "A"})
	h.ctrl.HandleAppSwitch(AppSwitch{From: "A", To: "B"})
	if len(h.win.moves) != 0 {
		t.Fatalf("expected no moves, got %v", h.win.moves)
	}
	if !h.ctrl.Visible() {
		t.Fatalf("expected window to stay visible")
	}
	if h.ctrl.CurrentApp() != "B" {
		t.Fatalf("expected current app tracked, got %q", h.ctrl.CurrentApp())
	}
}

func TestController_SetHiddenWithoutAppFails(t *testing.T) {
	h := newHarness(t)
	if err := h.ctrl.SetHiddenForCurrentApp(true); !errors.Is(err, ErrNoCurrentApp) {
		t.Fatalf("expected ErrNoCurrentApp, got %v", err)
	}
}

func TestController_ShowHideToggle(t *testing.T) {
	h := newHarness(t)
	if err := h.ctrl.Hide(); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if h.ctrl.Visible() {
		t.Fatalf("expected hidden")
	}
	h.ctrl.Toggle()
	if !h.ctrl.Visible() || h.win.hidden {
		t.Fatalf("expected visible after toggle")
	}
	h.ctrl.Toggle()
	if h.ctrl.Visible() {
		t.Fatalf("expected hidden after second toggle")
	}

	// A user hide survives app switches.
	h.ctrl.HandleAppSwitch(AppSwitch{To: "A"})
	if h.ctrl.Visible() {
		t.Fatalf("expected user hide to persist across switches")
	}
	h.ctrl.Show()
	if !h.ctrl.Visible() {
		t.Fatalf("expected visible after show")
	}
}

func TestController_CustomCornerUsesSavedPosition(t *testing.T) {
	h := newHarness(t)

	p, err := h.ctrl.PlaceAtCorner(Custom, nil)
	if err != nil {
		t.Fatalf("place custom: %v", err)
	}
	if p != (geom.Point{X: 1740, Y: 52}) {
		t.Fatalf("expected default corner without saved point, got %v", p)
	}

	h.drag(t, geom.Point{X: 400, Y: 500})
	p, _ = h.ctrl.PlaceAtCorner(Custom, nil)
	if p != (geom.Point{X: 400, Y: 500}) {
		t.Fatalf("expected saved point, got %v", p)
	}
}

func TestController_CycleCornerPersistsMode(t *testing.T) {
	h := newHarness(t)
	h.prefs.SetCornerMode("top-right")

	next, err := h.ctrl.CycleCorner()
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if next != BottomRight {
		t.Fatalf("expected bottom-right, got %v", next)
	}
	if mode, _ := h.prefs.CornerMode(); mode != "bottom-right" {
		t.Fatalf("expected persisted mode bottom-right, got %q", mode)
	}
	if origin, _ := h.ctrl.CurrentOrigin(); origin != (geom.Point{X: 1740, Y: 940}) {
		t.Fatalf("unexpected origin %v", origin)
	}
}

func TestController_ScreenRemovedMovesToPrimary(t *testing.T) {
	h := newHarness(t)
	side := sideScreen
	if _, err := h.ctrl.PlaceAtCorner(TopLeft, &side); err != nil {
		t.Fatalf("place: %v", err)
	}

	h.screens.screens = []Screen{mainScreen}
	if err := h.ctrl.HandleScreensChanged(); err != nil {
		t.Fatalf("screens changed: %v", err)
	}
	origin, _ := h.ctrl.CurrentOrigin()
	frame := h.win.frame.WithOrigin(origin)
	if !mainScreen.Visible.Contains(frame.Origin()) || frame.MaxX() > mainScreen.Visible.MaxX() {
		t.Fatalf("expected window inside main screen, got %v", frame)
	}

	h.screens.screens = nil
	if err := h.ctrl.HandleScreensChanged(); !errors.Is(err, ErrNoScreens) {
		t.Fatalf("expected ErrNoScreens, got %v", err)
	}
}

func TestController_FrameErrorFallsBackToLastOrigin(t *testing.T) {
	h := newHarness(t)
	h.ctrl.PlaceAt(geom.Point{X: 5, Y: 6})
	h.win.frameErr = errors.New("gone")

	if origin, ok := h.ctrl.CurrentOrigin(); !ok || origin != (geom.Point{X: 5, Y: 6}) {
		t.Fatalf("expected last origin, got %v,%v", origin, ok)
	}
}
