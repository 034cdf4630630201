package storage

import (
	"fmt"
	"sync"
)

// InMemoryStore is a Store implementation powered by a map, to be used for
// testing.
type InMemoryStore struct {
	mu   sync.RWMutex
	m    map[string][]byte
	puts int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		m: make(map[string][]byte),
	}
}

func (s *InMemoryStore) Put(key, value []byte) (err error) {
	s.mu.Lock()
	s.m[string(key)] = nonNil(dup(value))
	s.puts++
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) Get(key []byte) (value []byte, err error) {
	s.mu.RLock()
	value, ok := s.m[string(key)]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%.40q: %w", key, ErrNotFound)
	}
	return dup(value), nil
}

// Puts returns how many puts the store has accepted so far.
func (s *InMemoryStore) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}
