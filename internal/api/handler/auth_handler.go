package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/scrumsquad/feedback-board/internal/api/metrics"
	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	authService ports.AuthService
	sessions    ports.SessionService
	cookie      CookieConfig
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, sessions ports.SessionService, cookie CookieConfig, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, cookie: cookie, log: log}
}

// Login authenticates an employee and starts a session.
//
// @Summary      Employee login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/employeeLogin [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid input")
	}
	if err := c.Validate(&req); err != nil {
		return errMissingCredentials
	}

	user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", authResult(err)).Inc()
		return err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("login", "ok").Inc()
	return h.startSession(c, user)
}

// Signup creates an employee account and starts a session.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "New account"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid input")
	}
	if req.Username == "" || req.Password == "" {
		return errMissingCredentials
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Signup(c.Request().Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("signup", authResult(err)).Inc()
		return err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("signup", "ok").Inc()
	h.log.Info().Str("handle", user.Handle).Msg("user signed up")
	return h.startSession(c, user)
}

// WhoAmI reports the session user, or {"ok": false} for guests.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Router       /api/whoami [get]
func (h *AuthHandler) WhoAmI(c echo.Context) error {
	id := identityFrom(c)
	if id.IsGuest() {
		return c.JSON(http.StatusOK, authResponse{OK: false})
	}
	return c.JSON(http.StatusOK, authResponse{OK: true, User: toUserResponse(id)})
}

// Logout revokes the session token and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  okResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(h.cookie.Name); err == nil && cookie.Value != "" {
		if err := h.sessions.Revoke(c.Request().Context(), cookie.Value); err != nil {
			h.log.Error().Err(err).Msg("session revoke failed")
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to logout")
		}
	}

	c.SetCookie(h.newCookie("", time.Unix(0, 0), -1))
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

func (h *AuthHandler) startSession(c echo.Context, user *domain.User) error {
	token, expires, err := h.sessions.Issue(c.Request().Context(), user)
	if err != nil {
		return err
	}
	c.SetCookie(h.newCookie(token, expires, int(time.Until(expires).Seconds())))
	return c.JSON(http.StatusOK, authResponse{OK: true, User: toUserResponse(user.Identity())})
}

func (h *AuthHandler) newCookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

var errMissingCredentials = echo.NewHTTPError(http.StatusBadRequest, "Missing username or password")

func authResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrUserExists):
		return "conflict"
	default:
		return "error"
	}
}
