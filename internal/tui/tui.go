// Package tui is an interactive dashboard for a running daemon: live
// status plus the remembered per-app positions.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/bongocat/internal/ipc"
)

// Client is the part of the IPC client the dashboard drives.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	ListPositions() (*ipc.PositionsData, error)
	DeletePosition(appID string) error
	ClearPositions() error
	PlaceCorner(corner string) (*ipc.PointPayload, error)
	SetVisibility(action string) (bool, error)
	SetAppHidden(appID string, hidden bool) error
	SetIgnoreClicks(ignore bool) error
}

var _ Client = (*ipc.Client)(nil)

// Run starts the dashboard on the alternate screen and blocks until the
// user quits.
func Run(client Client) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	_, err := tea.NewProgram(newModel(client), tea.WithAltScreen()).Run()
	return err
}
