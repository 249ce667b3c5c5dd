package feed

import (
	"context"

	"github.com/sirupsen/logrus"

	"auth-blog/internal/domain"
)

// Lister is the authoritative source of the feed.
type Lister interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
}

// Reader serves the feed through a Cache and falls back to the source when
// the cache misbehaves.
type Reader struct {
	source Lister
	cache  Cache
	logger logrus.FieldLogger
}

func NewReader(source Lister, cache Cache, logger logrus.FieldLogger) *Reader {
	return &Reader{source: source, cache: cache, logger: logger}
}

func (r *Reader) List(ctx context.Context) ([]domain.Post, error) {
	gen, err := r.cache.Generation(ctx)
	if err != nil {
		r.logger.WithError(err).Warn("feed cache unavailable")
		return r.source.ListPosts(ctx)
	}

	posts, ok, err := r.cache.Load(ctx, gen)
	if err != nil {
		r.logger.WithError(err).Warn("feed cache load failed")
	} else if ok {
		return posts, nil
	}

	posts, err = r.source.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Store(ctx, gen, posts); err != nil {
		r.logger.WithError(err).Warn("feed cache store failed")
	}
	return posts, nil
}

// Invalidate is a Subscriber for the feed Bus.
func (r *Reader) Invalidate(ctx context.Context) error {
	return r.cache.Invalidate(ctx)
}
