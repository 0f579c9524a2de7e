package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/scrumsquad/feedback-board/docs"
	"github.com/scrumsquad/feedback-board/internal/api/handler"
	"github.com/scrumsquad/feedback-board/internal/api/middleware"
	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Auth     ports.AuthService
	Sessions ports.SessionService
	Feedback ports.FeedbackService

	Logger zerolog.Logger
	// RateLimiter guards POST /api/feedback; nil disables limiting.
	RateLimiter *middleware.IPRateLimiter
	// Websocket serves GET /ws when set.
	Websocket echo.HandlerFunc
	// Checks back GET /health/ready.
	Checks map[string]handler.Check

	SessionCookie string
	SecureCookie  bool
	CORSOrigins   []string
	// TrustedProxies may set X-Forwarded-For. With none, the client IP is
	// the connection's remote address.
	TrustedProxies []*net.IPNet
	// Metrics mounts the Prometheus middleware and GET /metrics.
	Metrics bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = ipExtractor(deps.TrustedProxies)
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	if len(deps.CORSOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			AllowCredentials: true,
		}))
	}
	if deps.Metrics {
		e.Use(echoprometheus.NewMiddleware("feedback"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Session-aware routes ---
	session := middleware.Session(deps.Sessions, deps.SessionCookie)
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Sessions, handler.CookieConfig{
		Name:   deps.SessionCookie,
		Secure: deps.SecureCookie,
	}, deps.Logger)
	feedbackHandler := handler.NewFeedbackHandler(deps.Feedback)

	wsURL := ""
	if deps.Websocket != nil {
		wsURL = "/ws?group=feed"
		e.GET("/ws", deps.Websocket)
	}
	feedPage := handler.NewFeedPageHandler(deps.Feedback, wsURL)
	e.GET("/feed", feedPage.Page, session)

	api := e.Group("/api", session)
	api.POST("/employeeLogin", authHandler.Login)
	api.POST("/signup", authHandler.Signup)
	api.GET("/whoami", authHandler.WhoAmI)
	api.POST("/logout", authHandler.Logout)

	createMiddleware := []echo.MiddlewareFunc{}
	if deps.RateLimiter != nil {
		createMiddleware = append(createMiddleware, middleware.RateLimit(deps.RateLimiter))
	}
	api.GET("/feedback", feedbackHandler.List)
	api.POST("/feedback", feedbackHandler.Create, createMiddleware...)
	api.POST("/feedback/:id/upvote", feedbackHandler.Upvote)
	api.GET("/feedback/:id/updates", feedbackHandler.ListUpdates)
	api.POST("/feedback/:id/update", feedbackHandler.AddUpdate)
	api.GET("/updates", feedbackHandler.ListAllUpdates)
	api.GET("/reports/summary", feedbackHandler.Summary,
		middleware.RequireRole(domain.RoleAdmin, domain.RoleEmployer))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

// StoreCheck adapts a store ping for the readiness probe.
func StoreCheck(store ports.Store) handler.Check {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return store.Ping(ctx)
	}
}

func ipExtractor(proxies []*net.IPNet) echo.IPExtractor {
	if len(proxies) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range proxies {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}
