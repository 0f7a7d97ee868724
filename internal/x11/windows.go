package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// WindowInfo is what the daemon needs to know about the focused window.
type WindowInfo struct {
	ID       xproto.Window
	Class    string
	Instance string
	Title    string
	PID      int
	Bounds   Area
}

// GetActiveWindow returns the EWMH active window; 0 when nothing has focus.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// ActiveWindowInfo describes the focused window. It fails when no window
// has focus or the window has no WM_CLASS.
func (c *Connection) ActiveWindowInfo() (WindowInfo, error) {
	win, err := c.GetActiveWindow()
	if err != nil {
		return WindowInfo{}, fmt.Errorf("failed to get active window: %w", err)
	}
	if win == 0 {
		return WindowInfo{}, fmt.Errorf("no active window")
	}

	wmClass, err := icccm.WmClassGet(c.XUtil, win)
	if err != nil {
		return WindowInfo{}, fmt.Errorf("failed to read WM_CLASS of 0x%x: %w", win, err)
	}

	info := WindowInfo{
		ID:       win,
		Class:    strings.TrimSpace(wmClass.Class),
		Instance: strings.TrimSpace(wmClass.Instance),
		Title:    c.WindowTitle(win),
	}
	if pid, err := ewmh.WmPidGet(c.XUtil, win); err == nil {
		info.PID = int(pid)
	}
	if rect, err := c.WindowRect(win); err == nil {
		info.Bounds = rect
	}
	return info, nil
}

// WindowRect returns a window's geometry in root coordinates.
func (c *Connection) WindowRect(windowID xproto.Window) (Area, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Area{}, err
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return Area{}, err
	}

	return Area{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// WindowTitle prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

func hasWindowType(c *Connection, windowID xproto.Window, want string) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
