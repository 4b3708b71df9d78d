// Package http provides the API server, its router and the metrics server.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	authHTTP "github.com/allisson/accounts/internal/auth/http"
	"github.com/allisson/accounts/internal/metrics"
	sessionHTTP "github.com/allisson/accounts/internal/session/http"
	userHTTP "github.com/allisson/accounts/internal/user/http"
	valetHTTP "github.com/allisson/accounts/internal/valet/http"
)

// Handlers groups the API handlers wired into the router.
type Handlers struct {
	User    *userHTTP.UserHandler
	Auth    *authHTTP.AuthHandler
	Session *sessionHTTP.SessionHandler
	Valet   *valetHTTP.ValetHandler
}

// RouterConfig carries the router-level settings.
type RouterConfig struct {
	CORSEnabled      bool
	CORSAllowOrigins string
	SignInRPS        float64
	SignInBurst      int

	// MeterProvider enables HTTP request metrics when non-nil.
	MeterProvider    metric.MeterProvider
	MetricsNamespace string
}

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates a new API server. The database handle is used by the
// readiness endpoint; SetupRouter must be called before Start.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the Gin router with all middleware and routes.
// authMiddleware guards the routes that require an authenticated user.
func (s *Server) SetupRouter(cfg RouterConfig, handlers Handlers, authMiddleware gin.HandlerFunc) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	v1.POST("/users", handlers.User.RegisterHandler)
	v1.POST("/sign-in",
		authHTTP.SignInRateLimitMiddleware(cfg.SignInRPS, cfg.SignInBurst, s.logger),
		handlers.Auth.SignInHandler)
	v1.POST("/sessions/refresh", handlers.Auth.RefreshSessionHandler)

	authenticated := v1.Group("", authMiddleware)
	authenticated.GET("/sessions", handlers.Session.ListHandler)
	authenticated.DELETE("/sessions", handlers.Auth.SignOutHandler)
	authenticated.PUT("/users/password", handlers.Auth.ChangePasswordHandler)
	authenticated.POST("/valet-tokens", handlers.Valet.IssueHandler)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can reach its dependencies.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil {
		components["database"] = "error"
	} else if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		components["database"] = "error"
	}

	if components["database"] != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// Start starts the API server. SetupRouter must have been called first.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured, call SetupRouter first")
	}

	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
