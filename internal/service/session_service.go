package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"auth-blog/internal/domain"
	"auth-blog/internal/repository"
	"auth-blog/internal/token"
)

// SessionResolver turns a request credential into a verified session.
type SessionResolver interface {
	// Resolve returns domain.Anonymous when nobody is signed in. A non-nil error
	// is always a *domain.ExternalAuthError.
	Resolve(ctx context.Context, credential string) (domain.Session, error)
}

type tokenIssuer interface {
	Issue(sessionID, userID, name string) (string, time.Time, error)
	Parse(raw string) (token.Claims, error)
}

// SessionService issues session tokens at sign-in, resolves them per request
// and revokes them at sign-out. A token is only honoured while its session row exists.
type SessionService struct {
	users    UserService
	sessions repository.SessionRepository
	tokens   tokenIssuer
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewSessionService(users UserService, sessions repository.SessionRepository, tokens tokenIssuer, logger logrus.FieldLogger) *SessionService {
	return &SessionService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *SessionService) Issue(ctx context.Context, user *domain.User) (string, time.Time, error) {
	id := uuid.NewString()
	raw, expires, err := s.tokens.Issue(id, user.ID, user.DisplayName)
	if err != nil {
		return "", time.Time{}, err
	}

	if err := s.sessions.Create(ctx, &domain.StoredSession{ID: id, UserID: user.ID, ExpiresAt: expires}); err != nil {
		return "", time.Time{}, fmt.Errorf("store session: %w", err)
	}
	return raw, expires, nil
}

func (s *SessionService) Resolve(ctx context.Context, credential string) (domain.Session, error) {
	if credential == "" {
		return domain.Anonymous, nil
	}

	claims, err := s.tokens.Parse(credential)
	if err != nil {
		s.logger.WithError(err).Debug("rejected session token")
		return domain.Anonymous, nil
	}
	if claims.ID == "" {
		return domain.Anonymous, nil
	}

	stored, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.WithField("session_id", claims.ID).Debug("session revoked")
			return domain.Anonymous, nil
		}
		return domain.Anonymous, &domain.ExternalAuthError{Err: err}
	}
	if stored.UserID != claims.Subject || !s.now().Before(stored.ExpiresAt) {
		return domain.Anonymous, nil
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.WithField("user_id", claims.Subject).Info("session token for unknown user")
			return domain.Anonymous, nil
		}
		return domain.Anonymous, &domain.ExternalAuthError{Err: err}
	}

	return domain.Session{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		ExpiresAt:   stored.ExpiresAt,
	}, nil
}

// Revoke ends the session behind credential. Credentials that do not parse
// carry no session and are ignored.
func (s *SessionService) Revoke(ctx context.Context, credential string) error {
	if credential == "" {
		return nil
	}
	claims, err := s.tokens.Parse(credential)
	if err != nil || claims.ID == "" {
		return nil
	}

	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"session_id": claims.ID,
		"user_id":    claims.Subject,
	}).Info("session revoked")
	return nil
}

var _ SessionResolver = (*SessionService)(nil)
