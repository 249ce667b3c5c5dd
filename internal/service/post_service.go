package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"auth-blog/internal/domain"
	"auth-blog/internal/repository"
)

// FeedPath is where callers are sent after a successful post.
const FeedPath = "/"

// FeedNotifier is told whenever the feed gained a post.
type FeedNotifier interface {
	FeedStale(ctx context.Context)
}

type CreatePostInput struct {
	Title   string
	Content string
}

// CreatePostOutcome tells the caller what was written and where to go next.
type CreatePostOutcome struct {
	Post domain.Post
	Next string
}

// PostService exposes the feed read and the create-post transaction.
type PostService interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
	// CreatePost fails with domain.ErrUnauthorized, *domain.ValidationError,
	// *domain.ForeignKeyError or *domain.StoreWriteError; nothing is written on failure.
	CreatePost(ctx context.Context, caller domain.Caller, in CreatePostInput) (CreatePostOutcome, error)
}

type postService struct {
	posts  repository.PostRepository
	feed   FeedNotifier
	logger logrus.FieldLogger
}

func NewPostService(posts repository.PostRepository, feed FeedNotifier, logger logrus.FieldLogger) PostService {
	return &postService{
		posts:  posts,
		feed:   feed,
		logger: logger,
	}
}

func (s *postService) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return s.posts.List(ctx)
}

func (s *postService) CreatePost(ctx context.Context, caller domain.Caller, in CreatePostInput) (CreatePostOutcome, error) {
	if caller.Err != nil {
		s.logger.WithField("auth_error", caller.Err.Error()).Warn("create post: session could not be verified")
		return CreatePostOutcome{}, domain.ErrUnauthorized
	}
	if caller.Session.IsAnonymous() {
		return CreatePostOutcome{}, domain.ErrUnauthorized
	}

	if err := validatePost(in); err != nil {
		return CreatePostOutcome{}, err
	}

	post := domain.Post{
		Title:    in.Title,
		Content:  in.Content,
		AuthorID: caller.Session.UserID,
	}
	if err := s.posts.Create(ctx, &post); err != nil {
		s.logger.WithError(err).WithField("author_id", post.AuthorID).Error("create post: write failed")
		return CreatePostOutcome{}, err
	}
	post.Author = domain.Author{ID: caller.Session.UserID, DisplayName: caller.Session.DisplayName}

	s.feed.FeedStale(ctx)
	s.logger.WithFields(logrus.Fields{
		"post_id":   post.ID,
		"author_id": post.AuthorID,
	}).Info("post created")

	return CreatePostOutcome{Post: post, Next: FeedPath}, nil
}

func validatePost(in CreatePostInput) error {
	var fields []domain.FieldError
	if strings.TrimSpace(in.Title) == "" {
		fields = append(fields, domain.FieldError{Field: "title", Message: "title is required"})
	}
	if strings.TrimSpace(in.Content) == "" {
		fields = append(fields, domain.FieldError{Field: "content", Message: "content is required"})
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
