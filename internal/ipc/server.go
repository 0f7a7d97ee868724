package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/1broseidon/bongocat/internal/runtimepath"
)

// Handler executes commands against daemon state. Methods are called from
// connection goroutines.
type Handler interface {
	Status() (StatusData, error)
	Monitors() (MonitorsData, error)
	Positions() (PositionsData, error)
	DeletePosition(appID string) error
	ClearPositions() error
	ClearHidden() error
	PlaceCorner(corner string) (PointPayload, error)
	PlaceAt(x, y float64) (PointPayload, error)
	SetVisibility(action string) (bool, error)
	SetAppHidden(appID string, hidden bool) error
	SetIgnoreClicks(ignore bool) error
	SetPerApp(enabled bool) error
	ResetAnimation() error
	Reload() error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server on the default socket path
func NewServer(handler Handler) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, handler), nil
}

// NewServerAt creates a server listening on socketPath.
func NewServerAt(socketPath string, handler Handler) *Server {
	return &Server{
		socketPath: socketPath,
		handler:    handler,
	}
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a stale socket left by a crashed daemon
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return respond(s.handler.Status())
	case CommandGetMonitors:
		return respond(s.handler.Monitors())
	case CommandListPositions:
		return respond(s.handler.Positions())
	case CommandDeletePosition:
		return s.handleDeletePosition(req.Payload)
	case CommandClearPositions:
		return respondErr(s.handler.ClearPositions())
	case CommandClearHidden:
		return respondErr(s.handler.ClearHidden())
	case CommandPlaceCorner:
		return s.handlePlaceCorner(req.Payload)
	case CommandPlaceAt:
		return s.handlePlaceAt(req.Payload)
	case CommandSetVisibility:
		return s.handleSetVisibility(req.Payload)
	case CommandSetAppHidden:
		return s.handleSetAppHidden(req.Payload)
	case CommandSetIgnoreClicks:
		return s.handleToggle(req.Payload, "ignore clicks", s.handler.SetIgnoreClicks)
	case CommandSetPerApp:
		return s.handleToggle(req.Payload, "per-app", s.handler.SetPerApp)
	case CommandResetAnimation:
		return respondErr(s.handler.ResetAnimation())
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")
	if err := s.handler.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	log.Println("IPC: Config reloaded successfully")
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleDeletePosition(payload json.RawMessage) *Response {
	var req AppPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid delete payload: %v", err))
	}
	if strings.TrimSpace(req.AppID) == "" {
		return NewErrorResponse("app_id is required")
	}
	return respondErr(s.handler.DeletePosition(req.AppID))
}

func (s *Server) handlePlaceCorner(payload json.RawMessage) *Response {
	var req CornerPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid corner payload: %v", err))
	}
	if req.Corner == "" {
		return NewErrorResponse("corner is required")
	}
	return respond(s.handler.PlaceCorner(req.Corner))
}

func (s *Server) handlePlaceAt(payload json.RawMessage) *Response {
	var req PointPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid point payload: %v", err))
	}
	return respond(s.handler.PlaceAt(req.X, req.Y))
}

func (s *Server) handleSetVisibility(payload json.RawMessage) *Response {
	var req VisibilityPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid visibility payload: %v", err))
	}
	switch req.Action {
	case VisibilityShow, VisibilityHide, VisibilityToggle:
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown visibility action: %q", req.Action))
	}
	visible, err := s.handler.SetVisibility(req.Action)
	return respond(VisibilityData{Visible: visible}, err)
}

func (s *Server) handleSetAppHidden(payload json.RawMessage) *Response {
	var req AppHiddenPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid hidden payload: %v", err))
	}
	return respondErr(s.handler.SetAppHidden(strings.TrimSpace(req.AppID), req.Hidden))
}

func (s *Server) handleToggle(payload json.RawMessage, what string, apply func(bool) error) *Response {
	var req TogglePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid %s payload: %v", what, err))
	}
	return respondErr(apply(req.Enabled))
}

func respond(data interface{}, err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func respondErr(err error) *Response {
	return respond(nil, err)
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.wg.Wait()
	}
	os.Remove(s.socketPath)
}
