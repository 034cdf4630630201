// Package blog implements the collection of blog posts: an ordered, in-memory
// list of posts mirrored to a storage.Store, which is fully rewritten after
// every change.
package blog

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/nicolagi/blogposts/post"
	"github.com/nicolagi/blogposts/storage"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrNotFound indicates no post has the requested id.
	ErrNotFound = errors.New("blog post not found")
)

// Collection holds the posts. All mutations go through it and are serialized:
// the lock is held while the change is applied and the image persisted, so
// concurrent writers cannot overwrite each other's images.
type Collection struct {
	store storage.Store
	key   []byte

	mu    sync.Mutex
	posts []post.Post
}

// NewCollection returns an empty collection persisted in store under key.
func NewCollection(store storage.Store, key string) *Collection {
	return &Collection{
		store: store,
		key:   []byte(key),
		posts: []post.Post{},
	}
}

// Load replaces the contents of the collection with the persisted image. On
// failure the collection is left empty and the error is returned.
func (c *Collection) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts = []post.Post{}
	image, err := c.store.Get(c.key)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.key, err)
	}
	posts, err := post.ParseList(image)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", c.key, err)
	}
	c.posts = posts
	log.WithFields(log.Fields{
		"key":   string(c.key),
		"posts": len(posts),
	}).Debug("Loaded")
	return nil
}

// All returns a copy of every post, in order.
func (c *Collection) All() []post.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	all := make([]post.Post, len(c.posts))
	for i, p := range c.posts {
		all[i] = p.Clone()
	}
	return all
}

// Get returns the first post whose id equals id.
func (c *Collection) Get(id float64) (post.Post, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i == -1 {
		return post.Post{}, ErrNotFound
	}
	return c.posts[i].Clone(), nil
}

// Create appends a post made of a newly allocated id and the fields of body.
// An id field in body takes precedence over the allocated one, even if that
// makes ids collide.
func (c *Collection) Create(body post.Post) (post.Post, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := post.WithID(c.nextID(), body)
	c.posts = append(c.posts, p)
	return p.Clone(), c.persist()
}

// Replace substitutes the post with the given id with one made of that id and
// the fields of body (whose own id, if any, wins).
func (c *Collection) Replace(id float64, body post.Post) (post.Post, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i == -1 {
		return post.Post{}, ErrNotFound
	}
	p := post.WithID(id, body)
	c.posts[i] = p
	return p.Clone(), c.persist()
}

// Patch merges the fields of body into the post with the given id.
func (c *Collection) Patch(id float64, body post.Post) (post.Post, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i == -1 {
		return post.Post{}, ErrNotFound
	}
	p := c.posts[i].Clone()
	p.Merge(body)
	c.posts[i] = p
	return p.Clone(), c.persist()
}

// Delete removes the post with the given id and returns it.
func (c *Collection) Delete(id float64) (post.Post, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i == -1 {
		return post.Post{}, ErrNotFound
	}
	removed := c.posts[i]
	c.posts = append(c.posts[:i:i], c.posts[i+1:]...)
	return removed, c.persist()
}

// nextID returns one more than the greatest id, or 1 if there are no posts.
// Ids are converted with post.ToNumber. If any id does not convert, the result
// is NaN, which is stored as a null id.
func (c *Collection) nextID() float64 {
	if len(c.posts) == 0 {
		return 1
	}
	greatest := math.Inf(-1)
	for _, p := range c.posts {
		id := p.IDNumber()
		if math.IsNaN(id) {
			return id
		}
		if id > greatest {
			greatest = id
		}
	}
	return greatest + 1
}

func (c *Collection) index(id float64) int {
	for i, p := range c.posts {
		if p.HasID(id) {
			return i
		}
	}
	return -1
}

// persist rewrites the whole image. The in-memory change is kept even if this
// fails, so memory and storage can diverge until the next successful write.
func (c *Collection) persist() error {
	image, err := post.MarshalIndent(c.posts)
	if err != nil {
		return fmt.Errorf("encoding posts: %w", err)
	}
	if err := c.store.Put(c.key, image); err != nil {
		return fmt.Errorf("writing %s: %w", c.key, err)
	}
	return nil
}
