package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"auth-blog/internal/domain"
)

const stateKey = "state"

var (
	// ErrAuthFailed means the provider or the callback rejected the sign-in attempt.
	ErrAuthFailed = errors.New("auth failed")
)

// Env keeps per-browser sign-in state between the login redirect and the callback.
type Env interface {
	Save(key, val string) error
	Load(key string) (string, error)
	Clear(key string)
}

// Provider is an external OAuth2 identity provider.
type Provider interface {
	Name() string
	LoginURL(state string) string
	Exchange(ctx context.Context, code string) (domain.Identity, error)
}

const defaultTimeout = 10 * time.Second

// Authenticator drives the OAuth2 authorization code flow against a single provider.
type Authenticator struct {
	provider Provider
	timeout  time.Duration
	client   *http.Client
}

type Option func(*Authenticator)

// WithTimeout bounds each code exchange, including the provider's follow-up calls.
func WithTimeout(d time.Duration) Option {
	return func(a *Authenticator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func NewAuthenticator(p Provider, opts ...Option) *Authenticator {
	a := &Authenticator{provider: p, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(a)
	}
	a.client = &http.Client{Timeout: a.timeout}
	return a
}

func (a *Authenticator) LoginURL(env Env) (string, error) {
	state := randState(32)
	if err := env.Save(stateKey, state); err != nil {
		return "", fmt.Errorf("save state: %w", err)
	}
	return a.provider.LoginURL(state), nil
}

func (a *Authenticator) Exchange(ctx context.Context, env Env, code, state string) (domain.Identity, error) {
	saved, err := env.Load(stateKey)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("load state: %w", ErrAuthFailed)
	}
	env.Clear(stateKey)

	if saved == "" || saved != state {
		return domain.Identity{}, ErrAuthFailed
	}
	if code == "" {
		return domain.Identity{}, ErrAuthFailed
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.client)

	id, err := a.provider.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			if rerr.Response.StatusCode == http.StatusBadRequest || rerr.Response.StatusCode == http.StatusUnauthorized {
				return domain.Identity{}, ErrAuthFailed
			}
		}
		return domain.Identity{}, fmt.Errorf("exchange: %w", err)
	}
	if id.Subject == "" {
		return domain.Identity{}, fmt.Errorf("provider %s returned no subject: %w", a.provider.Name(), ErrAuthFailed)
	}
	id.Provider = a.provider.Name()

	return id, nil
}

func randState(size int) string {
	b := make([]byte, size)

	// rand.Read never returns an error
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
