package handler

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/scrumsquad/feedback-board/internal/core/ports"
	"github.com/scrumsquad/feedback-board/internal/render"
)

// FeedPageHandler serves the server-rendered feed for the session identity.
type FeedPageHandler struct {
	service      ports.FeedbackService
	websocketURL string
}

func NewFeedPageHandler(service ports.FeedbackService, websocketURL string) *FeedPageHandler {
	return &FeedPageHandler{service: service, websocketURL: websocketURL}
}

// Page handles GET /feed.
//
// @Summary      HTML feed page
// @Tags         feedback
// @Produce      html
// @Success      200  {string}  string
// @Router       /feed [get]
func (h *FeedPageHandler) Page(c echo.Context) error {
	posts, err := h.service.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}

	feed := render.Build(render.Input{
		Entries: render.Entries(posts),
		Viewer:  identityFrom(c),
	})

	var buf bytes.Buffer
	if err := render.WriteHTML(&buf, render.Page{Feed: feed, WebsocketURL: h.websocketURL}); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
