// Package memory provides an in-process catalog backend for tests and
// throwaway sessions.
package memory

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("memory store closed")

// Store is a map-backed key-value store.
type Store struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool

	// PutErr, when set, is returned by every Put without storing.
	PutErr error
	// GetErr, when set, is returned by every Get.
	GetErr error
}

func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Seed stores a raw value, bypassing PutErr.
func (s *Store) Seed(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	if s.GetErr != nil {
		return nil, false, s.GetErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.PutErr != nil {
		return s.PutErr
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
