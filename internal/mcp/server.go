// Package mcp exposes the running daemon as MCP tools over stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/bongocat/internal/ipc"
)

const (
	ServerName    = "bongocat"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools use.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListPositions() (*ipc.PositionsData, error)
	DeletePosition(appID string) error
	PlaceCorner(corner string) (*ipc.PointPayload, error)
	PlaceAt(x, y float64) (*ipc.PointPayload, error)
	SetVisibility(action string) (bool, error)
	SetAppHidden(appID string, hidden bool) error
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server for controlling the cat.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates an MCP server that forwards to daemon.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the cat's current pose, visibility, position, corner mode and the foreground application it is tracking.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_positions",
		Description: "List the remembered per-application positions and the apps the cat hides for.",
	}, s.handleListPositions)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "place_cat",
		Description: "Move the cat to a screen corner or to absolute x/y coordinates. The choice is remembered like a manual drag.",
	}, s.handlePlaceCat)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_visibility",
		Description: "Show, hide or toggle the cat. Showing overrides a per-app hide until the next app switch.",
	}, s.handleSetVisibility)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "forget_position",
		Description: "Forget the remembered position for one application; it falls back to the default corner next time.",
	}, s.handleForgetPosition)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_app_hidden",
		Description: "Hide or show the cat whenever the given application (default: the current one) is in front.",
	}, s.handleSetAppHidden)
}
