package storage

import (
	"errors"
)

// Store represents a key-value store. The blog collection keeps its whole
// persisted image under a single key.
type Store interface {
	// Put should replace any previous value for the key entirely.
	Put(key, value []byte) (err error)

	// Get should return ErrNotFound if the key is not in the store.
	Get(key []byte) (value []byte, err error)
}

var (
	// ErrNotFound indicates a key is not in the store.
	ErrNotFound = errors.New("not found")
)

func dup(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// nonNil turns a nil value into an empty slice, so that all implementations
// return the same thing for a stored empty value.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
