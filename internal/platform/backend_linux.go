//go:build linux

package platform

import (
	"fmt"
	"math"
	"sort"

	"github.com/1broseidon/bongocat/internal/daemon"
	"github.com/1broseidon/bongocat/internal/geom"
	"github.com/1broseidon/bongocat/internal/input"
	"github.com/1broseidon/bongocat/internal/placement"
	"github.com/1broseidon/bongocat/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an X11 connection behind the daemon's interfaces.
type LinuxBackend struct {
	conn  *x11.Connection
	names *NameCache
}

var (
	_ daemon.Desktop        = (*LinuxBackend)(nil)
	_ input.Sampler         = (*LinuxBackend)(nil)
	_ placement.ScreenQuery = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn, names: NewNameCache()}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn), nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops EventLoop.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays ordered by id.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// Screens implements placement.ScreenQuery.
func (b *LinuxBackend) Screens() ([]placement.Screen, error) {
	displays, err := b.Displays()
	if err != nil {
		return nil, err
	}
	return Screens(displays), nil
}

// OnScreensChanged calls fn on the X event goroutine after RandR changes.
func (b *LinuxBackend) OnScreensChanged(fn func()) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.WatchScreenChanges(fn)
}

// CurrentApplication identifies the focused window's application by its
// WM_CLASS class. Any failure is reported as daemon.ErrUnknownApp.
func (b *LinuxBackend) CurrentApplication() (daemon.ForegroundApp, error) {
	conn, err := b.connection()
	if err != nil {
		return daemon.ForegroundApp{}, err
	}

	info, err := conn.ActiveWindowInfo()
	if err != nil {
		return daemon.ForegroundApp{}, fmt.Errorf("%w: %v", daemon.ErrUnknownApp, err)
	}

	id := info.Class
	if id == "" {
		id = info.Instance
	}
	if id == "" {
		return daemon.ForegroundApp{}, daemon.ErrUnknownApp
	}

	name := ProcessName(info.PID)
	if name == "" {
		name = id
	}
	b.names.Remember(id, name)

	bounds := Rect(info.Bounds).Geom()
	return daemon.ForegroundApp{
		ID:          id,
		DisplayName: name,
		PID:         info.PID,
		Bounds:      &bounds,
	}, nil
}

// DisplayName implements perapp.NameResolver.
func (b *LinuxBackend) DisplayName(appID string) (string, bool) {
	return b.names.DisplayName(appID)
}

// SampleInput implements input.Sampler.
func (b *LinuxBackend) SampleInput() (input.Snapshot, error) {
	conn, err := b.connection()
	if err != nil {
		return input.Snapshot{}, err
	}
	st, err := conn.SampleInput()
	if err != nil {
		return input.Snapshot{}, err
	}
	return input.Snapshot{Keys: st.Keys, Left: st.Left, Right: st.Right}, nil
}

// KeyName implements input.Sampler.
func (b *LinuxBackend) KeyName(keycode int) string {
	if b == nil || b.conn == nil {
		return ""
	}
	return b.conn.KeyName(keycode)
}

// CreateCatWindow creates the cat window with the given frame.
func (b *LinuxBackend) CreateCatWindow(frame geom.Rect) (daemon.CatWindow, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	win, err := conn.CreateCatWindow(round(frame.X), round(frame.Y), round(frame.Width), round(frame.Height))
	if err != nil {
		return nil, err
	}
	return &catWindow{win: win}, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

// catWindow adapts x11.CatWindow to float geometry.
type catWindow struct {
	win *x11.CatWindow
}

func (w *catWindow) Frame() (geom.Rect, error) {
	area, err := w.win.Rect()
	if err != nil {
		return geom.Rect{}, err
	}
	return Rect(area).Geom(), nil
}

func (w *catWindow) Move(p geom.Point) error {
	return w.win.Move(round(p.X), round(p.Y))
}

func (w *catWindow) Show() error { return w.win.Show() }
func (w *catWindow) Hide() error { return w.win.Hide() }

func (w *catWindow) OnMoved(fn func(geom.Point)) {
	w.win.OnConfigure(func(x, y int) {
		fn(geom.Point{X: float64(x), Y: float64(y)})
	})
}

func (w *catWindow) Close() {
	w.win.Destroy()
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:      m.ID,
		Name:    m.Name,
		Primary: m.Primary,
		Bounds: Rect{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
		Usable: Rect(m.Usable),
	}
}

func round(v float64) int {
	return int(math.Round(v))
}
