package repository

import (
	"context"
	"strings"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

type UserRepository struct {
	users collection[domain.User]
}

func NewUserRepository(store ports.Store) *UserRepository {
	return &UserRepository{users: collection[domain.User]{store: store, kind: ports.KindUsers}}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	users, err := r.users.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return &users[i], nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	err := r.users.mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		for _, u := range users {
			if strings.EqualFold(u.Username, user.Username) {
				return nil, domain.ErrUserExists
			}
		}
		return append(users, *user), nil
	})
	if err != nil {
		return nil, err
	}
	created := *user
	return &created, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	users, err := r.users.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}
