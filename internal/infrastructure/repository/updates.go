package repository

import (
	"context"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

type UpdateRepository struct {
	updates collection[domain.Update]
}

func NewUpdateRepository(store ports.Store) *UpdateRepository {
	return &UpdateRepository{updates: collection[domain.Update]{store: store, kind: ports.KindUpdates}}
}

func (r *UpdateRepository) List(ctx context.Context) ([]domain.Update, error) {
	return r.updates.load(ctx)
}

// ListByPost does not check that the post exists; an unknown id yields an
// empty list.
func (r *UpdateRepository) ListByPost(ctx context.Context, postID int64) ([]domain.Update, error) {
	all, err := r.updates.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Update, 0)
	for _, u := range all {
		if u.PostID == postID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UpdateRepository) Create(ctx context.Context, u *domain.Update) (*domain.Update, error) {
	var created domain.Update
	err := r.updates.mutate(ctx, func(updates []domain.Update) ([]domain.Update, error) {
		created = *u
		created.ID = uniqueID(u.ID, func(id int64) bool {
			for _, existing := range updates {
				if existing.ID == id {
					return true
				}
			}
			return false
		})
		return append(updates, created), nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}
