package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"auth-blog/internal/domain"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces the keys; defaults to "feed".
	Prefix string
	TTL    time.Duration
}

// RedisCache shares the feed cache between server instances.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

type cachedPost struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewRedisCache(cfg RedisConfig) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "feed"
	}
	return &RedisCache{rdb: rdb, prefix: prefix, ttl: cfg.TTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

func (c *RedisCache) Generation(ctx context.Context) (uint64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey()).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get feed generation: %w", err)
	}
	return gen, nil
}

func (c *RedisCache) Load(ctx context.Context, gen uint64) ([]domain.Post, bool, error) {
	raw, err := c.rdb.Get(ctx, c.postsKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get feed: %w", err)
	}

	var cached []cachedPost
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("decode feed: %w", err)
	}

	posts := make([]domain.Post, len(cached))
	for i, p := range cached {
		posts[i] = domain.Post{
			ID:        p.ID,
			Title:     p.Title,
			Content:   p.Content,
			AuthorID:  p.AuthorID,
			CreatedAt: p.CreatedAt,
			Author:    domain.Author{ID: p.AuthorID, DisplayName: p.AuthorName},
		}
	}
	return posts, true, nil
}

func (c *RedisCache) Store(ctx context.Context, gen uint64, posts []domain.Post) error {
	cached := make([]cachedPost, len(posts))
	for i, p := range posts {
		cached[i] = cachedPost{
			ID:         p.ID,
			Title:      p.Title,
			Content:    p.Content,
			AuthorID:   p.AuthorID,
			AuthorName: p.Author.DisplayName,
			CreatedAt:  p.CreatedAt,
		}
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	// entries for superseded generations are never read again and just expire
	if err := c.rdb.Set(ctx, c.postsKey(gen), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set feed: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, c.genKey()).Err(); err != nil {
		return fmt.Errorf("bump feed generation: %w", err)
	}
	return nil
}

func (c *RedisCache) genKey() string {
	return c.prefix + ":gen"
}

func (c *RedisCache) postsKey(gen uint64) string {
	return c.prefix + ":posts:" + strconv.FormatUint(gen, 10)
}

var _ Cache = (*RedisCache)(nil)
