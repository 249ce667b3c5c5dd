package feed

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Subscriber reacts to the feed becoming stale.
type Subscriber func(ctx context.Context) error

type subscription struct {
	name string
	fn   Subscriber
}

// Bus fans "feed became stale" out to subscribers, synchronously and in
// registration order.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	logger logrus.FieldLogger
}

func NewBus(logger logrus.FieldLogger) *Bus {
	return &Bus{logger: logger}
}

func (b *Bus) Subscribe(name string, fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{name: name, fn: fn})
}

// FeedStale never fails: the post that made the feed stale is already durable.
func (b *Bus) FeedStale(ctx context.Context) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.fn(ctx); err != nil {
			b.logger.WithError(err).WithField("subscriber", s.name).Warn("feed stale handler failed")
		}
	}
}
