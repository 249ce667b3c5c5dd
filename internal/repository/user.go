package repository

import (
	"context"
	"errors"

	"auth-blog/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an insert collides with a unique constraint.
	ErrConflict = errors.New("already exists")
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByProviderSubject(ctx context.Context, provider, subject string) (*domain.User, error)
}
