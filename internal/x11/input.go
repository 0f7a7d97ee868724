package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"
)

// InputState is one sample of the global keyboard bitmap and mouse buttons.
type InputState struct {
	Keys  [32]byte
	Left  bool
	Right bool
}

// SampleInput reads the global key bitmap and pointer button mask. No grab
// is taken, so input keeps flowing to the focused application.
func (c *Connection) SampleInput() (InputState, error) {
	var st InputState

	keymap, err := xproto.QueryKeymap(c.XUtil.Conn()).Reply()
	if err != nil {
		return st, fmt.Errorf("failed to query keymap: %w", err)
	}
	copy(st.Keys[:], keymap.Keys)

	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return st, fmt.Errorf("failed to query pointer: %w", err)
	}
	st.Left = pointer.Mask&xproto.KeyButMaskButton1 != 0
	st.Right = pointer.Mask&xproto.KeyButMaskButton3 != 0
	return st, nil
}

// KeyName returns the keysym name for keycode, empty when unmapped.
func (c *Connection) KeyName(keycode int) string {
	if keycode < 0 || keycode > 255 {
		return ""
	}
	return keybind.LookupString(c.XUtil, 0, xproto.Keycode(keycode))
}
