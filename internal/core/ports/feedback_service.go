package ports

import (
	"context"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
)

// CreatePostInput is the DTO passed from the transport layer to FeedbackService.
type CreatePostInput struct {
	Issue      string
	Impact     string
	Suggestion string
	Theme      string
	Author     domain.Identity
}

// AddUpdateInput carries a new update and the identity authoring it.
type AddUpdateInput struct {
	PostID  int64
	Content string
	Author  domain.Identity
}

// FeedbackService defines use-case operations for posts and updates.
type FeedbackService interface {
	CreatePost(ctx context.Context, input CreatePostInput) (*domain.Post, error)
	ListPosts(ctx context.Context) ([]domain.Post, error)
	// ToggleUpvote increments the count, or decrements it when undo is set.
	ToggleUpvote(ctx context.Context, id int64, undo bool) (int, error)
	ListUpdates(ctx context.Context, postID int64) ([]domain.Update, error)
	ListAllUpdates(ctx context.Context) ([]domain.Update, error)
	AddUpdate(ctx context.Context, input AddUpdateInput) (*domain.Update, error)
	Summary(ctx context.Context) (*domain.Report, error)
}

// EventPublisher announces feed changes. Publishing never blocks the caller.
type EventPublisher interface {
	Publish(event domain.FeedEvent)
}

// EventSink receives dispatched feed events.
type EventSink interface {
	Deliver(ctx context.Context, event domain.FeedEvent) error
}
