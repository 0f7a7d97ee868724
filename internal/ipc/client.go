package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/bongocat/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the socket at socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with an optional payload and decodes the response data
// into out when out is non-nil.
func (c *Client) call(command CommandType, payload interface{}, out interface{}) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	var monitors MonitorsData
	if err := c.call(CommandGetMonitors, nil, &monitors); err != nil {
		return nil, err
	}
	return &monitors, nil
}

// ListPositions retrieves the remembered per-app positions.
func (c *Client) ListPositions() (*PositionsData, error) {
	var data PositionsData
	if err := c.call(CommandListPositions, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DeletePosition forgets one app's position.
func (c *Client) DeletePosition(appID string) error {
	return c.call(CommandDeletePosition, AppPayload{AppID: appID}, nil)
}

// ClearPositions forgets every per-app position.
func (c *Client) ClearPositions() error {
	return c.call(CommandClearPositions, nil, nil)
}

// ClearHidden forgets every per-app hide.
func (c *Client) ClearHidden() error {
	return c.call(CommandClearHidden, nil, nil)
}

// PlaceCorner moves the cat to a named corner and returns the new origin.
func (c *Client) PlaceCorner(corner string) (*PointPayload, error) {
	var p PointPayload
	if err := c.call(CommandPlaceCorner, CornerPayload{Corner: corner}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PlaceAt moves the cat to (x, y).
func (c *Client) PlaceAt(x, y float64) (*PointPayload, error) {
	var p PointPayload
	if err := c.call(CommandPlaceAt, PointPayload{X: x, Y: y}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetVisibility shows, hides or toggles the cat and reports the result.
func (c *Client) SetVisibility(action string) (bool, error) {
	var data VisibilityData
	if err := c.call(CommandSetVisibility, VisibilityPayload{Action: action}, &data); err != nil {
		return false, err
	}
	return data.Visible, nil
}

// SetAppHidden hides or shows the cat for appID. An empty appID means the
// current foreground app.
func (c *Client) SetAppHidden(appID string, hidden bool) error {
	return c.call(CommandSetAppHidden, AppHiddenPayload{AppID: appID, Hidden: hidden}, nil)
}

func (c *Client) SetIgnoreClicks(ignore bool) error {
	return c.call(CommandSetIgnoreClicks, TogglePayload{Enabled: ignore}, nil)
}

func (c *Client) SetPerApp(enabled bool) error {
	return c.call(CommandSetPerApp, TogglePayload{Enabled: enabled}, nil)
}

// ResetAnimation returns the cat to idle and forgets paw assignments.
func (c *Client) ResetAnimation() error {
	return c.call(CommandResetAnimation, nil, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
