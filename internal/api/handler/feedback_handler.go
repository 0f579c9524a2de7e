package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/scrumsquad/feedback-board/internal/api/metrics"
	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

// FeedbackHandler handles HTTP requests for posts, upvotes, updates and reports.
type FeedbackHandler struct {
	service ports.FeedbackService
}

func NewFeedbackHandler(service ports.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// List handles GET /api/feedback.
//
// @Summary      List feedback posts, newest first
// @Tags         feedback
// @Produce      json
// @Success      200  {array}   domain.Post
// @Failure      503  {object}  errorResponse
// @Router       /api/feedback [get]
func (h *FeedbackHandler) List(c echo.Context) error {
	posts, err := h.service.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// Create handles POST /api/feedback.
//
// @Summary      Submit a feedback post
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        body  body      createPostRequest  true  "Post content"
// @Success      200   {object}  createPostResponse
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/feedback [post]
func (h *FeedbackHandler) Create(c echo.Context) error {
	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.service.CreatePost(c.Request().Context(), ports.CreatePostInput{
		Issue:      req.Issue,
		Impact:     req.Impact,
		Suggestion: req.Suggestion,
		Theme:      req.Theme,
		Author:     identityFrom(c),
	})
	if err != nil {
		return err
	}

	metrics.PostsCreatedTotal.WithLabelValues(post.Theme).Inc()
	return c.JSON(http.StatusOK, createPostResponse{OK: true, Item: post})
}

// Upvote handles POST /api/feedback/:id/upvote.
//
// @Summary      Toggle an upvote
// @Description  Increments the count, or decrements it (never below zero) when undo is true.
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        id    path      int            true   "Post id"
// @Param        body  body      upvoteRequest  false  "Toggle direction"
// @Success      200   {object}  upvoteResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/feedback/{id}/upvote [post]
func (h *FeedbackHandler) Upvote(c echo.Context) error {
	id, err := postIDParam(c)
	if err != nil {
		return err
	}
	var req upvoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid input")
	}

	count, err := h.service.ToggleUpvote(c.Request().Context(), id, req.Undo)
	if err != nil {
		return err
	}

	direction := "up"
	if req.Undo {
		direction = "down"
	}
	metrics.UpvotesTotal.WithLabelValues(direction).Inc()
	return c.JSON(http.StatusOK, upvoteResponse{OK: true, Upvotes: count})
}

// ListUpdates handles GET /api/feedback/:id/updates.
//
// @Summary      List updates for a post, newest first
// @Tags         updates
// @Produce      json
// @Param        id   path      int  true  "Post id"
// @Success      200  {array}   domain.Update
// @Router       /api/feedback/{id}/updates [get]
func (h *FeedbackHandler) ListUpdates(c echo.Context) error {
	id, err := postIDParam(c)
	if errors.Is(err, domain.ErrPostNotFound) {
		return c.JSON(http.StatusOK, []domain.Update{})
	}

	updates, err := h.service.ListUpdates(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updates)
}

// AddUpdate handles POST /api/feedback/:id/update.
//
// @Summary      Add an update to a post (admin or employer only)
// @Tags         updates
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "Post id"
// @Param        body  body      addUpdateRequest  true  "Update text"
// @Success      200   {object}  addUpdateResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/feedback/{id}/update [post]
func (h *FeedbackHandler) AddUpdate(c echo.Context) error {
	caller := identityFrom(c)
	if !caller.Role.CanAuthorUpdates() {
		return domain.ErrForbidden
	}
	id, err := postIDParam(c)
	if err != nil {
		return err
	}
	var req addUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid input")
	}

	update, err := h.service.AddUpdate(c.Request().Context(), ports.AddUpdateInput{
		PostID:  id,
		Content: req.body(),
		Author:  caller,
	})
	if err != nil {
		return err
	}

	metrics.UpdatesAddedTotal.WithLabelValues(string(update.AuthorRole)).Inc()
	return c.JSON(http.StatusOK, addUpdateResponse{OK: true, Update: update})
}

// ListAllUpdates handles GET /api/updates.
//
// @Summary      List every update, newest first
// @Tags         updates
// @Produce      json
// @Success      200  {array}  domain.Update
// @Router       /api/updates [get]
func (h *FeedbackHandler) ListAllUpdates(c echo.Context) error {
	updates, err := h.service.ListAllUpdates(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updates)
}

// Summary handles GET /api/reports/summary.
//
// @Summary      Aggregated counts per theme and per day
// @Tags         reports
// @Produce      json
// @Success      200  {object}  domain.Report
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/reports/summary [get]
func (h *FeedbackHandler) Summary(c echo.Context) error {
	report, err := h.service.Summary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
