package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/scrumsquad/feedback-board/internal/api/middleware"
	"github.com/scrumsquad/feedback-board/internal/core/domain"
)

// identityFrom returns the caller injected by the Session middleware. Routes
// mounted without it see a guest.
func identityFrom(c echo.Context) domain.Identity {
	return middleware.Identity(c)
}

// postIDParam parses :id. A malformed id cannot name a post, so it is
// reported as not found.
func postIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, domain.ErrPostNotFound
	}
	return id, nil
}
