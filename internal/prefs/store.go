// Package prefs is the durable key/value store backing cat preferences and
// per-application memory.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
)

// ErrNonFinite is returned when a NaN or infinite double is stored.
var ErrNonFinite = errors.New("value is not a finite number")

func checkFinite(key string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("cannot store %q: %w", key, ErrNonFinite)
	}
	return nil
}

// Store is a typed key/value store. Every setter persists before returning.
type Store interface {
	SetDouble(key string, v float64) error
	Double(key string) (float64, bool)
	SetBool(key string, v bool) error
	Bool(key string) (bool, bool)
	SetString(key string, v string) error
	String(key string) (string, bool)
	Remove(key string) error
}

// document is the on-disk layout of a FileStore.
type document struct {
	Doubles map[string]float64 `json:"doubles,omitempty"`
	Bools   map[string]bool    `json:"bools,omitempty"`
	Strings map[string]string  `json:"strings,omitempty"`
}

func newDocument() document {
	return document{
		Doubles: make(map[string]float64),
		Bools:   make(map[string]bool),
		Strings: make(map[string]string),
	}
}

func (d *document) normalize() {
	if d.Doubles == nil {
		d.Doubles = make(map[string]float64)
	}
	if d.Bools == nil {
		d.Bools = make(map[string]bool)
	}
	if d.Strings == nil {
		d.Strings = make(map[string]string)
	}
}

// DefaultPath returns $XDG_STATE_HOME/bongocat/state.json, creating the
// parent directory.
func DefaultPath() (string, error) {
	path, err := xdg.StateFile(filepath.Join("bongocat", "state.json"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve state path: %w", err)
	}
	return path, nil
}

// FileStore keeps the whole document in memory and rewrites the file on
// every mutation. The in-memory value stays authoritative when a write fails.
type FileStore struct {
	mu   sync.Mutex
	path string
	doc  document
}

var _ Store = (*FileStore)(nil)

// OpenFile loads path, treating a missing file as empty.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{path: path, doc: newDocument()}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	s.doc.normalize()
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) SetDouble(key string, v float64) error {
	if err := checkFinite(key, v); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Doubles[key] = v
	return s.flushLocked()
}

func (s *FileStore) Double(key string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.doc.Doubles[key]
	return v, ok
}

func (s *FileStore) SetBool(key string, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Bools[key] = v
	return s.flushLocked()
}

func (s *FileStore) Bool(key string) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.doc.Bools[key]
	return v, ok
}

func (s *FileStore) SetString(key string, v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Strings[key] = v
	return s.flushLocked()
}

func (s *FileStore) String(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.doc.Strings[key]
	return v, ok
}

// Remove deletes key from every type namespace.
func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.doc.Doubles, key)
	delete(s.doc.Bools, key)
	delete(s.doc.Strings, key)
	return s.flushLocked()
}

// flushLocked writes the document via a temp file and rename so a crash
// never leaves a truncated file behind.
func (s *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set state file permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
