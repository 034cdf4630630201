package storage_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/nicolagi/blogposts/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails the first n puts.
type flakyStore struct {
	*storage.InMemoryStore
	mu       sync.Mutex
	failures int
}

func (s *flakyStore) Put(key, value []byte) error {
	s.mu.Lock()
	if s.failures > 0 {
		s.failures--
		s.mu.Unlock()
		return fmt.Errorf("injected failure")
	}
	s.mu.Unlock()
	return s.InMemoryStore.Put(key, value)
}

func TestPaired(t *testing.T) {
	t.Run("puts reach the mirror", func(t *testing.T) {
		primary := storage.NewInMemoryStore()
		mirror := storage.NewInMemoryStore()
		p := storage.NewPaired(primary, mirror)
		for i := 0; i < 10; i++ {
			require.Nil(t, p.Put([]byte("blog-posts.json"), []byte(fmt.Sprintf("[%d]", i))))
		}
		require.Nil(t, p.Close())
		value, err := mirror.Get([]byte("blog-posts.json"))
		require.Nil(t, err)
		assert.Equal(t, []byte("[9]"), value)
		assert.Equal(t, 10, primary.Puts())
		assert.True(t, mirror.Puts() >= 1 && mirror.Puts() <= 10)
	})
	t.Run("gets fall back to the mirror and repopulate the primary", func(t *testing.T) {
		primary := storage.NewInMemoryStore()
		mirror := storage.NewInMemoryStore()
		require.Nil(t, mirror.Put([]byte("blog-posts.json"), []byte(`[{"id":1}]`)))
		p := storage.NewPaired(primary, mirror)
		defer p.Close()
		value, err := p.Get([]byte("blog-posts.json"))
		require.Nil(t, err)
		assert.Equal(t, []byte(`[{"id":1}]`), value)
		value, err = primary.Get([]byte("blog-posts.json"))
		require.Nil(t, err)
		assert.Equal(t, []byte(`[{"id":1}]`), value)
	})
	t.Run("missing everywhere is not found", func(t *testing.T) {
		p := storage.NewPaired(storage.NewInMemoryStore(), storage.NewInMemoryStore())
		defer p.Close()
		_, err := p.Get([]byte("blog-posts.json"))
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})
	t.Run("primary failure fails the put", func(t *testing.T) {
		primary := &flakyStore{InMemoryStore: storage.NewInMemoryStore(), failures: 1}
		mirror := storage.NewInMemoryStore()
		p := storage.NewPaired(primary, mirror)
		assert.NotNil(t, p.Put([]byte("k"), []byte("v")))
		require.Nil(t, p.Close())
		assert.Equal(t, 0, mirror.Puts())
	})
}
