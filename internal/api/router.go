package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/deppen/custody-registry/docs"
	"github.com/deppen/custody-registry/internal/api/handler"
	"github.com/deppen/custody-registry/internal/api/middleware"
	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/core/ports"
	"github.com/deppen/custody-registry/internal/infrastructure/http/handlers"
)

// Dependencies carries everything the HTTP layer needs.
type Dependencies struct {
	Accounts  ports.AccountService
	Auth      ports.AuthService
	Approvals ports.ApprovalService
	Records   ports.RecordService
	Audit     ports.AuditService
	Presence  ports.PresenceService
	Backup    ports.BackupService
	Sessions  handler.SessionTracker

	// Probes are pinged by the readiness endpoint.
	Probes map[string]handlers.Pinger

	// LoginRate and LoginBurst throttle /auth per client IP. A zero rate
	// disables throttling.
	LoginRate  float64
	LoginBurst int

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddleware("custody"))

	// --- Health probes and tooling (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Probes)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(deps.Accounts, deps.Auth, deps.Presence, deps.Sessions)
	recordHandler := handler.NewRecordHandler(deps.Records)
	accountHandler := handler.NewAccountHandler(deps.Accounts, deps.Approvals)
	adminHandler := handler.NewAdminHandler(deps.Audit, deps.Presence, deps.Backup)

	// --- Auth routes ---
	auth := e.Group("/auth")
	if deps.LoginRate > 0 {
		auth.Use(loginThrottle(deps.LoginRate, deps.LoginBurst))
	}
	auth.GET("/setup", authHandler.SetupStatus)
	auth.POST("/setup", authHandler.Setup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/password", authHandler.ChangePassword)

	// --- Authenticated routes ---
	v1 := e.Group("/v1", middleware.Auth(deps.Auth, deps.Sessions))

	v1.GET("/session", authHandler.Session)
	v1.DELETE("/session", authHandler.Logout)
	v1.POST("/session/heartbeat", authHandler.Heartbeat)

	v1.GET("/records", recordHandler.List)
	v1.GET("/records/summary", recordHandler.Summary)
	v1.POST("/records", recordHandler.Create)
	v1.PATCH("/records/:id", recordHandler.Update)
	v1.DELETE("/records/:id", recordHandler.Delete)
	v1.POST("/records/:id/complete", recordHandler.Complete)

	v1.GET("/accounts", accountHandler.List)
	v1.POST("/accounts", accountHandler.Create)
	v1.PATCH("/accounts/:email", accountHandler.Update)
	v1.PUT("/accounts/:email/block", accountHandler.Block)
	v1.DELETE("/accounts/:email", accountHandler.Remove)

	// --- Master-only views ---
	masterOnly := middleware.RequireRole(domain.RoleMaster)
	v1.GET("/requests", accountHandler.Pending, masterOnly)
	v1.POST("/requests/:email/decision", accountHandler.Decide, masterOnly)
	v1.GET("/audit", adminHandler.Audit, masterOnly)
	v1.GET("/presence", adminHandler.Presence, masterOnly)
	v1.GET("/backup", adminHandler.Backup, masterOnly)

	return e
}

// loginThrottle limits unauthenticated auth calls per client IP.
func loginThrottle(perSecond float64, burst int) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts, try again later")
		},
	})
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
