package repository

import (
	"context"

	"auth-blog/internal/domain"
)

// SessionRepository tracks issued session tokens so they can be revoked.
type SessionRepository interface {
	Init(ctx context.Context) error
	// Create inserts the session and drops sessions that already expired.
	Create(ctx context.Context, sess *domain.StoredSession) error
	Get(ctx context.Context, id string) (*domain.StoredSession, error)
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
}
