package x11

import (
	"fmt"
	"os"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// CatWindowClass is the WM_CLASS of the cat window, so the foreground
// poller can skip it.
const CatWindowClass = "bongocat"

// CatWindow is the undecorated, always-on-top window the cat lives in.
type CatWindow struct {
	conn *Connection
	win  *xwindow.Window
}

// CreateCatWindow creates and maps the cat window at (x, y).
func (c *Connection) CreateCatWindow(x, y, width, height int) (*CatWindow, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}

	screen := c.XUtil.Screen()
	if err := win.CreateChecked(c.Root, x, y, width, height,
		xproto.CwBackPixel|xproto.CwEventMask,
		screen.WhitePixel,
		xproto.EventMaskStructureNotify|xproto.EventMaskButtonPress|xproto.EventMaskExposure,
	); err != nil {
		return nil, fmt.Errorf("failed to create cat window: %w", err)
	}

	id := win.Id
	xu := c.XUtil
	// Property failures only degrade WM integration.
	_ = icccm.WmClassSet(xu, id, &icccm.WmClass{Instance: CatWindowClass, Class: CatWindowClass})
	_ = ewmh.WmNameSet(xu, id, "Bongo Cat")
	_ = ewmh.WmPidSet(xu, id, uint(os.Getpid()))
	_ = ewmh.WmWindowTypeSet(xu, id, []string{"_NET_WM_WINDOW_TYPE_UTILITY"})
	_ = ewmh.WmStateSet(xu, id, []string{
		"_NET_WM_STATE_ABOVE",
		"_NET_WM_STATE_STICKY",
		"_NET_WM_STATE_SKIP_TASKBAR",
		"_NET_WM_STATE_SKIP_PAGER",
	})
	// 0xFFFFFFFF puts the window on all desktops.
	_ = ewmh.WmDesktopSet(xu, id, 0xFFFFFFFF)
	_ = motif.WmHintsSet(xu, id, &motif.Hints{
		Flags:      motif.HintDecorations,
		Decoration: motif.DecorationNone,
	})

	cw := &CatWindow{conn: c, win: win}

	// Dragging anywhere on the cat starts a WM move.
	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		if ev.Detail != xproto.ButtonIndex1 {
			return
		}
		xproto.UngrabPointer(xu.Conn(), 0)
		_ = ewmh.WmMoveresizeExtra(xu, id, ewmh.Move, int(ev.RootX), int(ev.RootY), 1, 2)
	}).Connect(xu, id)

	win.Map()
	return cw, nil
}

// ID returns the X window id.
func (w *CatWindow) ID() xproto.Window {
	return w.win.Id
}

// Rect returns the window geometry in root coordinates.
func (w *CatWindow) Rect() (Area, error) {
	return w.conn.WindowRect(w.win.Id)
}

// Move places the window's top-left corner at (x, y), asking the WM first.
func (w *CatWindow) Move(x, y int) error {
	rect, err := w.Rect()
	if err != nil {
		return err
	}
	if err := ewmh.MoveresizeWindow(w.conn.XUtil, w.win.Id, x, y, rect.Width, rect.Height); err != nil {
		// No EWMH support; configure directly.
		w.win.Move(x, y)
	}
	return nil
}

func (w *CatWindow) Show() error {
	return xproto.MapWindowChecked(w.conn.XUtil.Conn(), w.win.Id).Check()
}

func (w *CatWindow) Hide() error {
	return xproto.UnmapWindowChecked(w.conn.XUtil.Conn(), w.win.Id).Check()
}

// OnConfigure calls fn with the window's root position after every
// ConfigureNotify. fn runs on the X event goroutine.
func (w *CatWindow) OnConfigure(fn func(x, y int)) {
	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, _ xevent.ConfigureNotifyEvent) {
		rect, err := w.Rect()
		if err != nil {
			return
		}
		fn(rect.X, rect.Y)
	}).Connect(w.conn.XUtil, w.win.Id)
}

// Destroy detaches callbacks and destroys the window.
func (w *CatWindow) Destroy() {
	w.win.Destroy()
}
