// Package perapp remembers the cat's position and visibility for each
// foreground application.
package perapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/1broseidon/bongocat/internal/geom"
	"github.com/1broseidon/bongocat/internal/prefs"
)

// Keys inside the backing prefs.Store.
const (
	KeyPositions = "perAppPositions"
	KeyHidden    = "perAppHiddenApps"
	KeyEnabled   = "perAppPositioningEnabled"
)

// NameResolver maps an application identifier to a human-readable name.
type NameResolver interface {
	DisplayName(appID string) (string, bool)
}

// Entry is one saved position with its resolved display name.
type Entry struct {
	AppID       string
	DisplayName string
	Point       geom.Point
	Hidden      bool
}

// Store holds per-app positions and the hidden set in memory and flushes
// each mutation to the backing store immediately. When a flush fails the
// error is returned and the in-memory value stays authoritative.
type Store struct {
	kv       prefs.Store
	resolver NameResolver
	logger   *slog.Logger

	positions map[string]geom.Point
	hidden    map[string]struct{}
	enabled   bool
}

// Options configures Open.
type Options struct {
	// DefaultEnabled applies when the enabled flag was never persisted.
	DefaultEnabled bool
	Resolver       NameResolver
	Logger         *slog.Logger
}

// Open loads per-app state from kv. Undecodable entries are logged and
// treated as empty so a damaged file never blocks startup.
func Open(kv prefs.Store, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		kv:        kv,
		resolver:  opts.Resolver,
		logger:    logger,
		positions: make(map[string]geom.Point),
		hidden:    make(map[string]struct{}),
		enabled:   opts.DefaultEnabled,
	}

	if raw, ok := kv.String(KeyPositions); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.positions); err != nil {
			logger.Warn("discarding unreadable per-app positions", "error", err)
			s.positions = make(map[string]geom.Point)
		}
	}
	if raw, ok := kv.String(KeyHidden); ok && raw != "" {
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			logger.Warn("discarding unreadable hidden app list", "error", err)
		}
		for _, id := range ids {
			s.hidden[id] = struct{}{}
		}
	}
	if v, ok := kv.Bool(KeyEnabled); ok {
		s.enabled = v
	}
	return s
}

// SetResolver replaces the display name resolver.
func (s *Store) SetResolver(r NameResolver) {
	s.resolver = r
}

// Enabled reports whether per-app positioning and hiding is on.
func (s *Store) Enabled() bool {
	return s.enabled
}

func (s *Store) SetEnabled(enabled bool) error {
	s.enabled = enabled
	if err := s.kv.SetBool(KeyEnabled, enabled); err != nil {
		return fmt.Errorf("failed to persist per-app flag: %w", err)
	}
	return nil
}

// SavePosition records p for appID, overwriting any previous value.
func (s *Store) SavePosition(appID string, p geom.Point) error {
	if strings.TrimSpace(appID) == "" {
		return errors.New("application id is required")
	}
	if !p.IsFinite() {
		return fmt.Errorf("position %v for %s: %w", p, appID, prefs.ErrNonFinite)
	}
	s.positions[appID] = p
	return s.flushPositions()
}

// Position returns the saved point for appID.
func (s *Store) Position(appID string) (geom.Point, bool) {
	p, ok := s.positions[appID]
	return p, ok
}

// DeletePosition forgets appID's point. Deleting an unknown id is a no-op.
func (s *Store) DeletePosition(appID string) error {
	if _, ok := s.positions[appID]; !ok {
		return nil
	}
	delete(s.positions, appID)
	return s.flushPositions()
}

// ClearAll forgets every saved position.
func (s *Store) ClearAll() error {
	s.positions = make(map[string]geom.Point)
	if err := s.kv.Remove(KeyPositions); err != nil {
		return fmt.Errorf("failed to clear per-app positions: %w", err)
	}
	return nil
}

// SetHidden adds or removes appID from the hidden set.
func (s *Store) SetHidden(appID string, hidden bool) error {
	if strings.TrimSpace(appID) == "" {
		return errors.New("application id is required")
	}
	_, was := s.hidden[appID]
	if was == hidden {
		return nil
	}
	if hidden {
		s.hidden[appID] = struct{}{}
	} else {
		delete(s.hidden, appID)
	}
	return s.flushHidden()
}

// IsHidden reports whether appID is in the hidden set.
func (s *Store) IsHidden(appID string) bool {
	_, ok := s.hidden[appID]
	return ok
}

// HiddenApps returns the hidden set, sorted.
func (s *Store) HiddenApps() []string {
	out := make([]string, 0, len(s.hidden))
	for id := range s.hidden {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ClearHidden empties the hidden set.
func (s *Store) ClearHidden() error {
	s.hidden = make(map[string]struct{})
	if err := s.kv.Remove(KeyHidden); err != nil {
		return fmt.Errorf("failed to clear hidden apps: %w", err)
	}
	return nil
}

// Entries lists every saved position with display names, sorted by name
// then id.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.positions))
	for id, p := range s.positions {
		out = append(out, Entry{
			AppID:       id,
			DisplayName: s.displayName(id),
			Point:       p,
			Hidden:      s.IsHidden(id),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].DisplayName), strings.ToLower(out[j].DisplayName)
		if a != b {
			return a < b
		}
		return out[i].AppID < out[j].AppID
	})
	return out
}

func (s *Store) displayName(appID string) string {
	if s.resolver != nil {
		if name, ok := s.resolver.DisplayName(appID); ok && name != "" {
			return name
		}
	}
	return appID
}

func (s *Store) flushPositions() error {
	data, err := json.Marshal(s.positions)
	if err != nil {
		return fmt.Errorf("failed to encode per-app positions: %w", err)
	}
	if err := s.kv.SetString(KeyPositions, string(data)); err != nil {
		return fmt.Errorf("failed to persist per-app positions: %w", err)
	}
	return nil
}

func (s *Store) flushHidden() error {
	data, err := json.Marshal(s.HiddenApps())
	if err != nil {
		return fmt.Errorf("failed to encode hidden apps: %w", err)
	}
	if err := s.kv.SetString(KeyHidden, string(data)); err != nil {
		return fmt.Errorf("failed to persist hidden apps: %w", err)
	}
	return nil
}
