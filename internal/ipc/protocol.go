package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload          CommandType = "RELOAD"
	CommandGetStatus       CommandType = "GET_STATUS"
	CommandGetMonitors     CommandType = "GET_MONITORS"
	CommandListPositions   CommandType = "LIST_POSITIONS"
	CommandDeletePosition  CommandType = "DELETE_POSITION"
	CommandClearPositions  CommandType = "CLEAR_POSITIONS"
	CommandClearHidden     CommandType = "CLEAR_HIDDEN"
	CommandPlaceCorner     CommandType = "PLACE_CORNER"
	CommandPlaceAt         CommandType = "PLACE_AT"
	CommandSetVisibility   CommandType = "SET_VISIBILITY"
	CommandSetAppHidden    CommandType = "SET_APP_HIDDEN"
	CommandSetIgnoreClicks CommandType = "SET_IGNORE_CLICKS"
	CommandSetPerApp       CommandType = "SET_PER_APP"
	CommandResetAnimation  CommandType = "RESET_ANIMATION"
)

// Visibility actions for SET_VISIBILITY.
const (
	VisibilityShow   = "show"
	VisibilityHide   = "hide"
	VisibilityToggle = "toggle"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	InstanceID     string  `json:"instance_id"`
	State          string  `json:"state"`
	Visible        bool    `json:"visible"`
	IgnoreClicks   bool    `json:"ignore_clicks"`
	PerAppEnabled  bool    `json:"per_app_enabled"`
	CurrentApp     string  `json:"current_app,omitempty"`
	CurrentAppName string  `json:"current_app_name,omitempty"`
	CornerMode     string  `json:"corner_mode"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
	DaemonRunning  bool    `json:"daemon_running"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Primary bool   `json:"primary"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	// Usable area excludes panels and docks.
	UsableX      int `json:"usable_x"`
	UsableY      int `json:"usable_y"`
	UsableWidth  int `json:"usable_width"`
	UsableHeight int `json:"usable_height"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// PositionInfo is one remembered per-app position.
type PositionInfo struct {
	AppID       string  `json:"app_id"`
	DisplayName string  `json:"display_name"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Hidden      bool    `json:"hidden"`
}

// PositionsData represents the data returned by LIST_POSITIONS
type PositionsData struct {
	Enabled    bool           `json:"enabled"`
	Positions  []PositionInfo `json:"positions"`
	HiddenApps []string       `json:"hidden_apps"`
}

type AppPayload struct {
	AppID string `json:"app_id"`
}

type AppHiddenPayload struct {
	AppID  string `json:"app_id"`
	Hidden bool   `json:"hidden"`
}

type CornerPayload struct {
	Corner string `json:"corner"`
}

type PointPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type VisibilityPayload struct {
	Action string `json:"action"`
}

type VisibilityData struct {
	Visible bool `json:"visible"`
}

type TogglePayload struct {
	Enabled bool `json:"enabled"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
