package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/bongocat/internal/ipc"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		State:          status.State,
		Visible:        status.Visible,
		IgnoreClicks:   status.IgnoreClicks,
		PerAppEnabled:  status.PerAppEnabled,
		CurrentApp:     status.CurrentApp,
		CurrentAppName: status.CurrentAppName,
		CornerMode:     status.CornerMode,
		X:              status.X,
		Y:              status.Y,
		UptimeSeconds:  status.UptimeSeconds,
	}, nil
}

func (s *Server) handleListPositions(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListPositionsInput) (*mcpsdk.CallToolResult, ListPositionsOutput, error) {
	data, err := s.daemon.ListPositions()
	if err != nil {
		return nil, ListPositionsOutput{}, err
	}
	out := ListPositionsOutput{
		Enabled:    data.Enabled,
		Positions:  make([]PositionEntry, 0, len(data.Positions)),
		HiddenApps: data.HiddenApps,
	}
	if out.HiddenApps == nil {
		out.HiddenApps = []string{}
	}
	for _, p := range data.Positions {
		out.Positions = append(out.Positions, PositionEntry(p))
	}
	return nil, out, nil
}

func (s *Server) handlePlaceCat(_ context.Context, _ *mcpsdk.CallToolRequest, args PlaceCatInput) (*mcpsdk.CallToolResult, PlaceCatOutput, error) {
	corner := strings.TrimSpace(args.Corner)
	hasPoint := args.X != nil || args.Y != nil

	var (
		p   *ipc.PointPayload
		err error
	)
	switch {
	case corner != "" && hasPoint:
		return nil, PlaceCatOutput{}, fmt.Errorf("place_cat: pass either corner or x/y, not both")
	case corner != "":
		p, err = s.daemon.PlaceCorner(corner)
	case args.X != nil && args.Y != nil:
		p, err = s.daemon.PlaceAt(*args.X, *args.Y)
	case hasPoint:
		return nil, PlaceCatOutput{}, fmt.Errorf("place_cat: x and y must be given together")
	default:
		return nil, PlaceCatOutput{}, fmt.Errorf("place_cat: corner or x/y is required")
	}
	if err != nil {
		return nil, PlaceCatOutput{}, err
	}
	return nil, PlaceCatOutput{X: p.X, Y: p.Y}, nil
}

func (s *Server) handleSetVisibility(_ context.Context, _ *mcpsdk.CallToolRequest, args SetVisibilityInput) (*mcpsdk.CallToolResult, SetVisibilityOutput, error) {
	action := strings.ToLower(strings.TrimSpace(args.Action))
	switch action {
	case ipc.VisibilityShow, ipc.VisibilityHide, ipc.VisibilityToggle:
	default:
		return nil, SetVisibilityOutput{}, fmt.Errorf("set_visibility: action must be show, hide or toggle, got %q", args.Action)
	}
	visible, err := s.daemon.SetVisibility(action)
	if err != nil {
		return nil, SetVisibilityOutput{}, err
	}
	return nil, SetVisibilityOutput{Visible: visible}, nil
}

func (s *Server) handleForgetPosition(_ context.Context, _ *mcpsdk.CallToolRequest, args ForgetPositionInput) (*mcpsdk.CallToolResult, any, error) {
	appID := strings.TrimSpace(args.AppID)
	if appID == "" {
		return nil, nil, fmt.Errorf("forget_position: app_id is required")
	}
	if err := s.daemon.DeletePosition(appID); err != nil {
		return nil, nil, err
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("Forgot position for %s", appID)},
		},
	}, nil, nil
}

func (s *Server) handleSetAppHidden(_ context.Context, _ *mcpsdk.CallToolRequest, args SetAppHiddenInput) (*mcpsdk.CallToolResult, any, error) {
	appID := strings.TrimSpace(args.AppID)
	if err := s.daemon.SetAppHidden(appID, args.Hidden); err != nil {
		return nil, nil, err
	}
	target := appID
	if target == "" {
		target = "the current app"
	}
	verb := "Showing"
	if args.Hidden {
		verb = "Hiding"
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("%s the cat for %s", verb, target)},
		},
	}, nil, nil
}
