package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/scrumsquad/feedback-board/internal/api/middleware"
	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

type stubAuthService struct {
	signupFn func(ctx context.Context, username, password, displayName string) (*domain.User, error)
	loginFn  func(ctx context.Context, username, password string) (*domain.User, error)
}

func (s *stubAuthService) Signup(ctx context.Context, username, password, displayName string) (*domain.User, error) {
	return s.signupFn(ctx, username, password, displayName)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Seed(context.Context, []ports.SeedUser) error { return nil }

type stubSessionService struct {
	revoked   []string
	revokeErr error
}

func (s *stubSessionService) Issue(_ context.Context, u *domain.User) (string, time.Time, error) {
	return "token-for-" + u.Username, time.Now().Add(time.Hour), nil
}

func (s *stubSessionService) Resolve(context.Context, string) domain.Identity { return domain.Guest() }

func (s *stubSessionService) Revoke(_ context.Context, token string) error {
	s.revoked = append(s.revoked, token)
	return s.revokeErr
}

type stubFeedbackService struct {
	createPostFn     func(ctx context.Context, in ports.CreatePostInput) (*domain.Post, error)
	listPostsFn      func(ctx context.Context) ([]domain.Post, error)
	toggleUpvoteFn   func(ctx context.Context, id int64, undo bool) (int, error)
	listUpdatesFn    func(ctx context.Context, postID int64) ([]domain.Update, error)
	listAllUpdatesFn func(ctx context.Context) ([]domain.Update, error)
	addUpdateFn      func(ctx context.Context, in ports.AddUpdateInput) (*domain.Update, error)
	summaryFn        func(ctx context.Context) (*domain.Report, error)
}

func (s *stubFeedbackService) CreatePost(ctx context.Context, in ports.CreatePostInput) (*domain.Post, error) {
	return s.createPostFn(ctx, in)
}

func (s *stubFeedbackService) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return s.listPostsFn(ctx)
}

func (s *stubFeedbackService) ToggleUpvote(ctx context.Context, id int64, undo bool) (int, error) {
	return s.toggleUpvoteFn(ctx, id, undo)
}

func (s *stubFeedbackService) ListUpdates(ctx context.Context, postID int64) ([]domain.Update, error) {
	return s.listUpdatesFn(ctx, postID)
}

func (s *stubFeedbackService) ListAllUpdates(ctx context.Context) ([]domain.Update, error) {
	return s.listAllUpdatesFn(ctx)
}

func (s *stubFeedbackService) AddUpdate(ctx context.Context, in ports.AddUpdateInput) (*domain.Update, error) {
	return s.addUpdateFn(ctx, in)
}

func (s *stubFeedbackService) Summary(ctx context.Context) (*domain.Report, error) {
	return s.summaryFn(ctx)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func withIdentity(c echo.Context, id domain.Identity) {
	c.Set(middleware.ContextKeyIdentity, id)
}
