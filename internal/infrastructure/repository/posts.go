package repository

import (
	"context"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

type PostRepository struct {
	posts collection[domain.Post]
}

func NewPostRepository(store ports.Store) *PostRepository {
	return &PostRepository{posts: collection[domain.Post]{store: store, kind: ports.KindFeedback}}
}

func (r *PostRepository) List(ctx context.Context) ([]domain.Post, error) {
	return r.posts.load(ctx)
}

func (r *PostRepository) Create(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	var created domain.Post
	err := r.posts.mutate(ctx, func(posts []domain.Post) ([]domain.Post, error) {
		created = *p
		created.ID = uniqueID(p.ID, func(id int64) bool {
			for _, existing := range posts {
				if existing.ID == id {
					return true
				}
			}
			return false
		})
		return append(posts, created), nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *PostRepository) AdjustUpvotes(ctx context.Context, id int64, delta int) (int, error) {
	var count int
	err := r.posts.mutate(ctx, func(posts []domain.Post) ([]domain.Post, error) {
		for i := range posts {
			if posts[i].ID != id {
				continue
			}
			posts[i].Upvotes = max(posts[i].Upvotes+delta, 0)
			count = posts[i].Upvotes
			return posts, nil
		}
		return nil, domain.ErrPostNotFound
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
