package ports

import (
	"context"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// FindByUsername matches case-insensitively.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Count(ctx context.Context) (int, error)
}

// PostRepository defines persistence operations for feedback posts.
type PostRepository interface {
	// List returns posts in stored (insertion) order.
	List(ctx context.Context) ([]domain.Post, error)
	// Create stores p, bumping p.ID until it is unique in the collection.
	Create(ctx context.Context, p *domain.Post) (*domain.Post, error)
	// AdjustUpvotes adds delta to the post's count, floored at zero, and
	// returns the new count.
	AdjustUpvotes(ctx context.Context, id int64, delta int) (int, error)
}

// UpdateRepository defines persistence operations for post updates.
type UpdateRepository interface {
	List(ctx context.Context) ([]domain.Update, error)
	ListByPost(ctx context.Context, postID int64) ([]domain.Update, error)
	Create(ctx context.Context, u *domain.Update) (*domain.Update, error)
}
