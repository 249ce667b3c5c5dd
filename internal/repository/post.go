package repository

import (
	"context"

	"auth-blog/internal/domain"
)

// PostRepository is the durable post collection. Posts are only ever appended.
type PostRepository interface {
	Init(ctx context.Context) error
	// Create assigns ID and CreatedAt and inserts the post durably.
	Create(ctx context.Context, post *domain.Post) error
	// List returns every post with its author, newest first.
	List(ctx context.Context) ([]domain.Post, error)
}
