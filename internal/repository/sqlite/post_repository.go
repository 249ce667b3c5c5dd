package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"auth-blog/internal/domain"
	"auth-blog/internal/repository"
)

const createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	author_id TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(author_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC, id DESC);
`

type PostRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &PostRepository{db: db, now: time.Now}
}

// Init expects the users table to exist already.
func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	var invalid []domain.FieldError
	if strings.TrimSpace(post.Title) == "" {
		invalid = append(invalid, domain.FieldError{Field: "title", Message: "title is required"})
	}
	if strings.TrimSpace(post.Content) == "" {
		invalid = append(invalid, domain.FieldError{Field: "content", Message: "content is required"})
	}
	if len(invalid) > 0 {
		return &domain.ValidationError{Fields: invalid}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return &domain.StoreWriteError{Op: "generate post id", Err: err}
	}
	createdAt := r.now().UTC()

	_, err = r.db.ExecContext(ctx, `
INSERT INTO posts (id, title, content, author_id, created_at)
VALUES (?, ?, ?, ?, ?)`,
		id.String(),
		post.Title,
		post.Content,
		post.AuthorID,
		createdAt.UnixNano(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.ForeignKeyError{AuthorID: post.AuthorID, Err: err}
		}
		return &domain.StoreWriteError{Op: "insert post", Err: err}
	}

	post.ID = id.String()
	post.CreatedAt = createdAt
	return nil
}

func (r *PostRepository) List(ctx context.Context) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT p.id, p.title, p.content, p.author_id, p.created_at, u.display_name
FROM posts AS p
JOIN users AS u ON u.id = p.author_id
ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		var (
			post      domain.Post
			createdAt int64
		)
		if err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.AuthorID, &createdAt, &post.Author.DisplayName); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		post.CreatedAt = time.Unix(0, createdAt).UTC()
		post.Author.ID = post.AuthorID
		posts = append(posts, post)
	}

	return posts, rows.Err()
}
