package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

const unknownTheme = "Unknown"

type noopPublisher struct{}

func (noopPublisher) Publish(domain.FeedEvent) {}

// FeedbackService implements post, upvote, update and report use cases.
type FeedbackService struct {
	posts   ports.PostRepository
	updates ports.UpdateRepository
	events  ports.EventPublisher
	logger  zerolog.Logger
	now     func() time.Time
}

// NewFeedbackService returns a FeedbackService. A nil publisher disables
// feed events.
func NewFeedbackService(
	posts ports.PostRepository,
	updates ports.UpdateRepository,
	events ports.EventPublisher,
	logger zerolog.Logger,
) *FeedbackService {
	if events == nil {
		events = noopPublisher{}
	}
	return &FeedbackService{
		posts:   posts,
		updates: updates,
		events:  events,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *FeedbackService) CreatePost(ctx context.Context, in ports.CreatePostInput) (*domain.Post, error) {
	issue := strings.TrimSpace(in.Issue)
	impact := strings.TrimSpace(in.Impact)
	if issue == "" || impact == "" {
		return nil, fmt.Errorf("%w: issue and impact are required", domain.ErrValidation)
	}
	theme := strings.TrimSpace(in.Theme)
	if theme == "" {
		theme = domain.DefaultTheme
	}

	now := s.now().UTC()
	post := &domain.Post{
		ID:         now.UnixMilli(),
		Issue:      issue,
		Impact:     impact,
		Suggestion: strings.TrimSpace(in.Suggestion),
		Theme:      theme,
		CreatedAt:  now,
		Upvotes:    0,
		Author:     in.Author.Author(),
	}

	created, err := s.posts.Create(ctx, post)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create post")
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.logger.Info().Int64("post_id", created.ID).Str("theme", created.Theme).Msg("post created")
	s.events.Publish(domain.FeedEvent{Kind: domain.EventPostCreated, PostID: created.ID, At: now})
	return created, nil
}

// ListPosts returns every post newest-first. Posts sharing a timestamp keep
// their stored order.
func (s *FeedbackService) ListPosts(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *FeedbackService) ToggleUpvote(ctx context.Context, id int64, undo bool) (int, error) {
	delta := 1
	if undo {
		delta = -1
	}
	count, err := s.posts.AdjustUpvotes(ctx, id, delta)
	if err != nil {
		return 0, fmt.Errorf("toggle upvote: %w", err)
	}

	s.logger.Debug().Int64("post_id", id).Int("upvotes", count).Bool("undo", undo).Msg("upvote toggled")
	s.events.Publish(domain.FeedEvent{Kind: domain.EventUpvoted, PostID: id, At: s.now().UTC()})
	return count, nil
}

func (s *FeedbackService) ListUpdates(ctx context.Context, postID int64) ([]domain.Update, error) {
	updates, err := s.updates.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}
	return newestFirst(updates), nil
}

func (s *FeedbackService) ListAllUpdates(ctx context.Context) ([]domain.Update, error) {
	updates, err := s.updates.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}
	return newestFirst(updates), nil
}

// AddUpdate checks the author's role before anything else, so a forbidden
// caller learns nothing about the payload or the post.
func (s *FeedbackService) AddUpdate(ctx context.Context, in ports.AddUpdateInput) (*domain.Update, error) {
	if !in.Author.Role.CanAuthorUpdates() {
		return nil, domain.ErrForbidden
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}

	now := s.now().UTC()
	update := &domain.Update{
		ID:         now.UnixMilli(),
		PostID:     in.PostID,
		Content:    content,
		AuthorRole: in.Author.Role,
		Timestamp:  now,
	}

	created, err := s.updates.Create(ctx, update)
	if err != nil {
		s.logger.Error().Err(err).Int64("post_id", in.PostID).Msg("failed to add update")
		return nil, fmt.Errorf("add update: %w", err)
	}

	s.logger.Info().Int64("post_id", in.PostID).Str("role", string(in.Author.Role)).Msg("update added")
	s.events.Publish(domain.FeedEvent{Kind: domain.EventUpdateAdded, PostID: in.PostID, At: now})
	return created, nil
}

// Summary counts posts per theme and per UTC day, each sorted by key.
func (s *FeedbackService) Summary(ctx context.Context) (*domain.Report, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	perTheme := make(map[string]int)
	perDay := make(map[string]int)
	for _, p := range posts {
		theme := strings.TrimSpace(p.Theme)
		if theme == "" {
			theme = unknownTheme
		}
		perTheme[theme]++
		perDay[p.CreatedAt.UTC().Format("2006-01-02")]++
	}

	return &domain.Report{
		TotalCount:     len(posts),
		CountsPerTheme: countItems(perTheme),
		CountsPerDay:   countItems(perDay),
	}, nil
}

func newestFirst(updates []domain.Update) []domain.Update {
	sort.SliceStable(updates, func(i, j int) bool {
		return updates[i].Timestamp.After(updates[j].Timestamp)
	})
	return updates
}

func countItems(m map[string]int) []domain.CountItem {
	items := make([]domain.CountItem, 0, len(m))
	for k, v := range m {
		items = append(items, domain.CountItem{Key: k, Count: v})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
	return items
}
