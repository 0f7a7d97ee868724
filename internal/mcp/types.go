package mcp

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
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
}

// ListPositionsInput is the input for the list_positions tool.
type ListPositionsInput struct{}

// PositionEntry describes one remembered per-app position.
type PositionEntry struct {
	AppID       string  `json:"app_id"`
	DisplayName string  `json:"display_name"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Hidden      bool    `json:"hidden"`
}

// ListPositionsOutput is the output for the list_positions tool.
type ListPositionsOutput struct {
	Enabled    bool            `json:"enabled"`
	Positions  []PositionEntry `json:"positions"`
	HiddenApps []string        `json:"hidden_apps"`
}

// PlaceCatInput is the input for the place_cat tool.
type PlaceCatInput struct {
	Corner string   `json:"corner,omitempty" jsonschema:"Corner to move to: top-left, top-right, bottom-left, bottom-right or custom. Mutually exclusive with x/y."`
	X      *float64 `json:"x,omitempty" jsonschema:"Absolute x coordinate of the window's top-left corner. Requires y."`
	Y      *float64 `json:"y,omitempty" jsonschema:"Absolute y coordinate of the window's top-left corner. Requires x."`
}

// PlaceCatOutput is the output for the place_cat tool.
type PlaceCatOutput struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SetVisibilityInput is the input for the set_visibility tool.
type SetVisibilityInput struct {
	Action string `json:"action" jsonschema:"One of show, hide or toggle"`
}

// SetVisibilityOutput is the output for the set_visibility tool.
type SetVisibilityOutput struct {
	Visible bool `json:"visible"`
}

// ForgetPositionInput is the input for the forget_position tool.
type ForgetPositionInput struct {
	AppID string `json:"app_id" jsonschema:"Application identifier as shown by list_positions"`
}

// SetAppHiddenInput is the input for the set_app_hidden tool.
type SetAppHiddenInput struct {
	AppID  string `json:"app_id,omitempty" jsonschema:"Application identifier (default: the current foreground app)"`
	Hidden bool   `json:"hidden" jsonschema:"Whether the cat should hide while this app is in front"`
}
