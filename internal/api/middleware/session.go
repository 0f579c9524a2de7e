package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

// ContextKeyIdentity holds the caller's domain.Identity in the echo context.
const ContextKeyIdentity = "identity"

// Session resolves the session cookie into an identity and injects it into
// the context. It never rejects: a missing or bad cookie yields a guest.
func Session(sessions ports.SessionService, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := domain.Guest()
			if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
				identity = sessions.Resolve(c.Request().Context(), cookie.Value)
			}

			c.Set(ContextKeyIdentity, identity)
			c.Set("role", string(identity.Role))
			return next(c)
		}
	}
}

// Identity returns the identity injected by Session, or a guest.
func Identity(c echo.Context) domain.Identity {
	if id, ok := c.Get(ContextKeyIdentity).(domain.Identity); ok {
		return id
	}
	return domain.Guest()
}
