package prefs

import (
	"errors"
	"sync"
)

// ErrWriteFailed is returned by a MemoryStore configured to fail writes.
var ErrWriteFailed = errors.New("write failed")

// MemoryStore is a non-durable Store. FailWrites makes every setter apply
// the value and then report ErrWriteFailed, mimicking a disk error.
type MemoryStore struct {
	mu         sync.Mutex
	doc        document
	FailWrites bool
	Writes     int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{doc: newDocument()}
}

func (s *MemoryStore) write() error {
	s.Writes++
	if s.FailWrites {
		return ErrWriteFailed
	}
	return nil
}

func (s *MemoryStore) SetDouble(key string, v float64) error {
	if err := checkFinite(key, v); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Doubles[key] = v
	return s.write()
}

func (s *MemoryStore) Double(key string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.doc.Doubles[key]
	return v, ok
}

func (s *MemoryStore) SetBool(key string, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Bools[key] = v
	return s.write()
}

func (s *MemoryStore) Bool(key string) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.doc.Bools[key]
	return v, ok
}

func (s *MemoryStore) SetString(key string, v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Strings[key] = v
	return s.write()
}

func (s *MemoryStore) String(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.doc.Strings[key]
	return v, ok
}

func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.doc.Doubles, key)
	delete(s.doc.Bools, key)
	delete(s.doc.Strings, key)
	return s.write()
}
