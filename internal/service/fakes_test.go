package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"auth-blog/internal/domain"
	"auth-blog/internal/repository"
)

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type memPostRepo struct {
	mu        sync.Mutex
	posts     []domain.Post
	users     map[string]string
	createErr error
}

func newMemPostRepo(users ...domain.User) *memPostRepo {
	r := &memPostRepo{users: map[string]string{}}
	for _, u := range users {
		r.users[u.ID] = u.DisplayName
	}
	return r
}

func (r *memPostRepo) Init(ctx context.Context) error {
	return nil
}

func (r *memPostRepo) Create(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.users[post.AuthorID]; !ok {
		return &domain.ForeignKeyError{AuthorID: post.AuthorID}
	}
	post.ID = uuid.Must(uuid.NewV7()).String()
	post.CreatedAt = time.Now().UTC()
	r.posts = append(r.posts, *post)
	return nil
}

func (r *memPostRepo) List(ctx context.Context) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Post, 0, len(r.posts))
	for i := len(r.posts) - 1; i >= 0; i-- {
		p := r.posts[i]
		p.Author = domain.Author{ID: p.AuthorID, DisplayName: r.users[p.AuthorID]}
		out = append(out, p)
	}
	return out, nil
}

func (r *memPostRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.posts)
}

type countingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *countingNotifier) FeedStale(ctx context.Context) {
	n.mu.Lock()
	n.calls++
	n.mu.Unlock()
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

type mockUserRepo struct {
	createFunc    func(ctx context.Context, user *domain.User) error
	getByIDFunc   func(ctx context.Context, id string) (*domain.User, error)
	getBySubjFunc func(ctx context.Context, provider, subject string) (*domain.User, error)
}

func (m *mockUserRepo) Init(ctx context.Context) error {
	return nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.createFunc(ctx, user)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByProviderSubject(ctx context.Context, provider, subject string) (*domain.User, error) {
	return m.getBySubjFunc(ctx, provider, subject)
}

func notFound() error {
	return fmt.Errorf("user: %w", repository.ErrNotFound)
}

type memSessionRepo struct {
	mu        sync.Mutex
	rows      map[string]domain.StoredSession
	createErr error
	getErr    error
	deleteErr error
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{rows: map[string]domain.StoredSession{}}
}

func (r *memSessionRepo) Init(ctx context.Context) error {
	return nil
}

func (r *memSessionRepo) Create(ctx context.Context, sess *domain.StoredSession) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[sess.ID] = *sess
	return nil
}

func (r *memSessionRepo) Get(ctx context.Context, id string) (*domain.StoredSession, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("session: %w", repository.ErrNotFound)
	}
	return &sess, nil
}

func (r *memSessionRepo) Delete(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}
