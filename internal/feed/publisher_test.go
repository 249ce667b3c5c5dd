package feed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth-blog/internal/domain"
	"auth-blog/internal/storage"
)

type upload struct {
	body []byte
	opts storage.UploadOptions
}

type mockStorage struct {
	mu      sync.Mutex
	uploads []upload
	err     error
	done    chan struct{}
}

func newMockStorage() *mockStorage {
	return &mockStorage{done: make(chan struct{}, 16)}
}

func (m *mockStorage) Upload(ctx context.Context, body io.Reader, opts storage.UploadOptions) (string, error) {
	defer func() { m.done <- struct{}{} }()
	if m.err != nil {
		return "", m.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.uploads = append(m.uploads, upload{body: b, opts: opts})
	m.mu.Unlock()
	return "s3://" + opts.Bucket + "/" + opts.Key, nil
}

func (m *mockStorage) last() upload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads[len(m.uploads)-1]
}

func waitUpload(t *testing.T, m *mockStorage) {
	t.Helper()
	select {
	case <-m.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for upload")
	}
}

func TestPublisher_PublishesOnStartAndEnqueue(t *testing.T) {
	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	src := staticLister(domain.Post{
		ID:        "p1",
		Title:     "Hello",
		Content:   "World",
		AuthorID:  "u1",
		CreatedAt: created,
		Author:    domain.Author{ID: "u1", DisplayName: "Alice"},
	})
	store := newMockStorage()
	p := NewPublisher(PublisherConfig{Bucket: "blog", KeyPrefix: "/public/", Logger: discardLogger()}, src, store)

	require.NoError(t, p.Start(context.Background()))
	defer p.Shutdown()
	waitUpload(t, store)

	up := store.last()
	assert.Equal(t, "blog", up.opts.Bucket)
	assert.Equal(t, "public/feed.json", up.opts.Key)
	assert.Equal(t, "application/json", up.opts.ContentType)

	var snap snapshot
	require.NoError(t, json.Unmarshal(up.body, &snap))
	require.Len(t, snap.Posts, 1)
	assert.Equal(t, "Hello", snap.Posts[0].Title)
	assert.Equal(t, "Alice", snap.Posts[0].Author.Name)
	assert.True(t, created.Equal(snap.Posts[0].CreatedAt))

	p.Enqueue()
	waitUpload(t, store)
	assert.GreaterOrEqual(t, src.count(), 2)
}

func TestPublisher_RequiresBucket(t *testing.T) {
	p := NewPublisher(PublisherConfig{Logger: discardLogger()}, staticLister(), newMockStorage())
	require.Error(t, p.Start(context.Background()))
}

func TestPublisher_UploadFailureKeepsRunning(t *testing.T) {
	store := newMockStorage()
	store.err = errors.New("access denied")
	src := staticLister()
	p := NewPublisher(PublisherConfig{Bucket: "blog", Logger: discardLogger()}, src, store)

	require.NoError(t, p.Start(context.Background()))
	defer p.Shutdown()
	waitUpload(t, store)

	p.Enqueue()
	waitUpload(t, store)
	assert.GreaterOrEqual(t, src.count(), 2)
}

func TestPublisher_EnqueueDoesNotBlock(t *testing.T) {
	p := NewPublisher(PublisherConfig{Bucket: "blog", Logger: discardLogger()}, staticLister(), newMockStorage())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			p.Enqueue()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked without a running publisher")
	}
}

func TestPublisher_ShutdownWithoutStart(t *testing.T) {
	p := NewPublisher(PublisherConfig{Bucket: "blog", Logger: discardLogger()}, staticLister(), newMockStorage())
	assert.NotPanics(t, p.Shutdown)
}
