package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auth-blog/internal/domain"
	"auth-blog/internal/repository"
)

// UserService maps provider identities onto local users.
type UserService interface {
	// Provision returns the user linked to id, creating it on first sign-in.
	Provision(ctx context.Context, id domain.Identity) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Provision(ctx context.Context, id domain.Identity) (*domain.User, error) {
	if id.Provider == "" || id.Subject == "" {
		return nil, errors.New("identity provider and subject are required")
	}

	user, err := s.users.GetByProviderSubject(ctx, id.Provider, id.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user = &domain.User{
		DisplayName: strings.TrimSpace(id.Name),
		Provider:    id.Provider,
		Subject:     id.Subject,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// a concurrent first sign-in created it
			return s.users.GetByProviderSubject(ctx, id.Provider, id.Subject)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}
