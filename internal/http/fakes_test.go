package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"auth-blog/internal/domain"
	"auth-blog/internal/identity"
	"auth-blog/internal/service"
)

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type mockPosts struct {
	createFunc func(ctx context.Context, caller domain.Caller, in service.CreatePostInput) (service.CreatePostOutcome, error)
}

func (m *mockPosts) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return nil, nil
}

func (m *mockPosts) CreatePost(ctx context.Context, caller domain.Caller, in service.CreatePostInput) (service.CreatePostOutcome, error) {
	return m.createFunc(ctx, caller, in)
}

type mockFeed struct {
	posts []domain.Post
	err   error
}

func (m *mockFeed) List(ctx context.Context) ([]domain.Post, error) {
	return m.posts, m.err
}

// mockSessions treats the credential as a user id; "broken" fails resolution.
type mockSessions struct {
	names     map[string]string
	revoked   []string
	revokeErr error
}

func (m *mockSessions) Resolve(ctx context.Context, credential string) (domain.Session, error) {
	if credential == "broken" {
		return domain.Anonymous, &domain.ExternalAuthError{Err: context.DeadlineExceeded}
	}
	name, ok := m.names[credential]
	if !ok {
		return domain.Anonymous, nil
	}
	return domain.Session{UserID: credential, DisplayName: name}, nil
}

func (m *mockSessions) Issue(ctx context.Context, user *domain.User) (string, time.Time, error) {
	return "token-" + user.ID, time.Now().Add(time.Hour), nil
}

func (m *mockSessions) Revoke(ctx context.Context, credential string) error {
	if m.revokeErr != nil {
		return m.revokeErr
	}
	m.revoked = append(m.revoked, credential)
	return nil
}

type mockUsers struct {
	provisionFunc func(ctx context.Context, id domain.Identity) (*domain.User, error)
}

func (m *mockUsers) Provision(ctx context.Context, id domain.Identity) (*domain.User, error) {
	return m.provisionFunc(ctx, id)
}

func (m *mockUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, nil
}

type mockSignIn struct {
	exchangeFunc func(ctx context.Context, env identity.Env, code, state string) (domain.Identity, error)
}

func (m *mockSignIn) LoginURL(env identity.Env) (string, error) {
	if err := env.Save("state", "xyz"); err != nil {
		return "", err
	}
	return "https://provider.example/authorize?state=xyz", nil
}

func (m *mockSignIn) Exchange(ctx context.Context, env identity.Env, code, state string) (domain.Identity, error) {
	return m.exchangeFunc(ctx, env, code, state)
}

type testDeps struct {
	posts    *mockPosts
	feed     *mockFeed
	users    *mockUsers
	signIn   *mockSignIn
	sessions *mockSessions
}

func newTestRouter(t *testing.T) (*gin.Engine, *testDeps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	deps := &testDeps{
		posts:    &mockPosts{},
		feed:     &mockFeed{},
		users:    &mockUsers{},
		signIn:   &mockSignIn{},
		sessions: &mockSessions{names: map[string]string{"alice": "Alice"}},
	}

	router := gin.New()
	NewHandler(deps.posts, deps.feed, deps.sessions, deps.users, deps.signIn, CookieConfig{Name: "sess"}, discardLogger()).RegisterRoutes(router)
	return router, deps
}

func do(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func formRequest(values string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(values))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withSession(req *http.Request, credential string) *http.Request {
	req.AddCookie(&http.Cookie{Name: "sess", Value: credential})
	return req
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
