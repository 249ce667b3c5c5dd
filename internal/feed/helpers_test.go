package feed

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"auth-blog/internal/domain"
)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type mockLister struct {
	mu       sync.Mutex
	calls    int
	listFunc func(ctx context.Context) ([]domain.Post, error)
}

func (m *mockLister) ListPosts(ctx context.Context) ([]domain.Post, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.listFunc(ctx)
}

func (m *mockLister) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func staticLister(posts ...domain.Post) *mockLister {
	return &mockLister{
		listFunc: func(ctx context.Context) ([]domain.Post, error) {
			return posts, nil
		},
	}
}
