package storage_test

import (
	"bytes"
	"errors"
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nicolagi/blogposts/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreImplementations(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(*testing.T) (storage.Store, func())
	}{
		{
			name: "Store implementation backed by a BoltDB",
			setup: func(t *testing.T) (s storage.Store, teardown func()) {
				f, err := ioutil.TempFile("", "test-blog-storage-")
				require.Nil(t, err)
				require.Nil(t, f.Close())
				store, err := storage.OpenBoltStore(f.Name())
				require.Nil(t, err)
				return store, func() {
					_ = store.Close()
					_ = os.Remove(f.Name())
				}
			},
		},
		{
			name: "Store implementation backed by an in-memory BadgerDB",
			setup: func(t *testing.T) (s storage.Store, teardown func()) {
				store, err := storage.OpenBadgerStore("")
				require.Nil(t, err)
				return store, func() {
					_ = store.Close()
				}
			},
		},
		{
			name: "Store implementation backed by a map",
			setup: func(*testing.T) (s storage.Store, teardown func()) {
				return storage.NewInMemoryStore(), func() {
					// Nothing to do.
				}
			},
		},
		{
			name: "Store implementation backed by a host filesystem directory",
			setup: func(t *testing.T) (s storage.Store, teardown func()) {
				dir, err := ioutil.TempDir("", "test-blog-storage-")
				require.Nil(t, err)
				return storage.NewFileStore(dir), func() {
					_ = os.RemoveAll(dir)
				}
			},
		},
		{
			name: "Store implementation backed by S3 (fake client)",
			setup: func(t *testing.T) (s storage.Store, teardown func()) {
				return storage.NewS3("", "eu-west-2", "blog",
					storage.WithS3Client(newFakeS3()),
					storage.WithS3Prefix("images"),
				), func() {}
			},
		},
		{
			name: "Paired store backed by two in-memory stores",
			setup: func(t *testing.T) (s storage.Store, teardown func()) {
				p := storage.NewPaired(
					storage.NewInMemoryStore(),
					storage.NewInMemoryStore(),
				)
				return p, func() {
					_ = p.Close()
				}
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, teardown := tc.setup(t)
			defer teardown()
			testStore(t, store)
		})
	}
}

func testStore(t *testing.T, store storage.Store) {
	rand.Seed(time.Now().UnixNano())
	t.Run("what you put is what you get", func(t *testing.T) {
		key := randomKey()
		err := store.Put(key, []byte(`[{"id":1}]`))
		require.Nil(t, err)
		storedValue, err := store.Get(key)
		require.Nil(t, err)
		assert.Equal(t, []byte(`[{"id":1}]`), storedValue)
	})
	t.Run("put overwrites entirely", func(t *testing.T) {
		key := randomKey()
		require.Nil(t, store.Put(key, []byte("a much longer first value")))
		require.Nil(t, store.Put(key, []byte("short")))
		storedValue, err := store.Get(key)
		require.Nil(t, err)
		assert.Equal(t, []byte("short"), storedValue)
	})
	t.Run("error on not existing key", func(t *testing.T) {
		key := randomKey()
		value, err := store.Get(key)
		assert.True(t, errors.Is(err, storage.ErrNotFound))
		assert.Nil(t, value)
	})
	t.Run("can put a nil value, get non-nil empty slice", func(t *testing.T) {
		key := randomKey()
		err := store.Put(key, nil)
		require.Nil(t, err)
		value, err := store.Get(key)
		assert.Nil(t, err)
		assert.Equal(t, []byte{}, value)
	})
	t.Run("mutating value should not affect stored pairs", func(t *testing.T) {
		key := randomKey()
		before := []byte("old value")
		if err := store.Put(key, before); err != nil {
			t.Fatalf("got %v, want nil", err)
		}
		copy(before, "new")
		after, err := store.Get(key)
		if err != nil {
			t.Fatalf("got %v, want nil", err)
		}
		if want := []byte("old value"); !bytes.Equal(want, after) {
			t.Errorf("got %q, want %q", after, want)
		}
	})
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewFileStore(dir)
	t.Run("key is the file name", func(t *testing.T) {
		require.Nil(t, store.Put([]byte("blog-posts.json"), []byte("[]")))
		b, err := ioutil.ReadFile(filepath.Join(dir, "blog-posts.json"))
		require.Nil(t, err)
		assert.Equal(t, "[]", string(b))
	})
	t.Run("no temporary files are left behind", func(t *testing.T) {
		require.Nil(t, store.Put([]byte("other.json"), []byte("{}")))
		matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
		require.Nil(t, err)
		assert.Empty(t, matches)
	})
	t.Run("missing directory is not found", func(t *testing.T) {
		missing := storage.NewFileStore(filepath.Join(dir, "does", "not", "exist"))
		_, err := missing.Get([]byte("blog-posts.json"))
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})
	t.Run("put creates the directory", func(t *testing.T) {
		nested := storage.NewFileStore(filepath.Join(dir, "nested"))
		require.Nil(t, nested.Put([]byte("blog-posts.json"), []byte("[]")))
		value, err := nested.Get([]byte("blog-posts.json"))
		require.Nil(t, err)
		assert.Equal(t, []byte("[]"), value)
	})
}

func randomKey() []byte {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	key := make([]byte, 32)
	for i := range key {
		key[i] = letters[rand.Intn(len(letters))]
	}
	return key
}
