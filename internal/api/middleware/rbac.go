package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
)

// RequireRole enforces role-based access control. Guests get
// ErrUnauthenticated, other roles outside the allowed set get ErrForbidden.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := Identity(c)
			if identity.IsGuest() {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[identity.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
