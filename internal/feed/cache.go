package feed

import (
	"context"
	"sync"
	"time"

	"auth-blog/internal/domain"
)

// Cache holds the rendered feed keyed by a generation number. Invalidate bumps
// the generation, so a Store for an older generation is never served.
type Cache interface {
	Generation(ctx context.Context) (uint64, error)
	Load(ctx context.Context, gen uint64) ([]domain.Post, bool, error)
	Store(ctx context.Context, gen uint64, posts []domain.Post) error
	Invalidate(ctx context.Context) error
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu      sync.Mutex
	gen     uint64
	posts   []domain.Post
	filled  bool
	expires time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache returns a cache whose entries expire after ttl; zero means never.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Generation(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *MemoryCache) Load(ctx context.Context, gen uint64) ([]domain.Post, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.filled || gen != c.gen {
		return nil, false, nil
	}
	if c.ttl > 0 && !c.now().Before(c.expires) {
		c.filled = false
		c.posts = nil
		return nil, false, nil
	}
	return clonePosts(c.posts), true, nil
}

func (c *MemoryCache) Store(ctx context.Context, gen uint64, posts []domain.Post) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return nil
	}
	c.posts = clonePosts(posts)
	c.filled = true
	c.expires = c.now().Add(c.ttl)
	return nil
}

func (c *MemoryCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.posts = nil
	c.filled = false
	return nil
}

func clonePosts(posts []domain.Post) []domain.Post {
	out := make([]domain.Post, len(posts))
	copy(out, posts)
	return out
}

var _ Cache = (*MemoryCache)(nil)
