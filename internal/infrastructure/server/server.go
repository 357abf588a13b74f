package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/lifelog/core/docs"
	httpHandlers "github.com/lifelog/core/internal/adapters/http"
	"github.com/lifelog/core/internal/adapters/repository"
	"github.com/lifelog/core/internal/application/services"
	"github.com/lifelog/core/internal/infrastructure/config"
	"github.com/lifelog/core/internal/infrastructure/database"
	"github.com/lifelog/core/internal/infrastructure/logger"
)

// Server represents the HTTP server
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *logger.Logger
	db     *database.DB
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance
func New(cfg *config.Config, db *database.DB, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Every error leaves through the envelope
	e.HTTPErrorHandler = httpHandlers.HTTPErrorHandler

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	entryRepo := repository.NewEntryRepository(db.DB)
	categoryRepo := repository.NewCategoryRepository(db.DB)
	memoRepo := repository.NewMemoRepository(db.DB)
	authRepo := repository.NewAuthRepository(db.DB)
	apiKeyRepo := repository.NewAPIKeyRepository(db.DB)

	// Initialize services
	categoryService := services.NewCategoryService(categoryRepo, appLogger)
	authService := services.NewAuthService(userRepo, authRepo, apiKeyRepo, categoryService, cfg.JWT, appLogger)
	entryService := services.NewEntryService(entryRepo, categoryRepo, appLogger)
	memoService := services.NewMemoService(memoRepo, appLogger)
	mcpService := services.NewMCPService(entryRepo, categoryRepo, appLogger)

	// Initialize handlers
	authHandler := httpHandlers.NewAuthHandler(authService, appLogger)
	entryHandler := httpHandlers.NewEntryHandler(entryService, appLogger)
	categoryHandler := httpHandlers.NewCategoryHandler(categoryService, appLogger)
	memoHandler := httpHandlers.NewMemoHandler(memoService, appLogger)
	mcpHandler := httpHandlers.NewMCPHandler(mcpService, appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
		db:     db,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup metrics before routes so the middleware sees every request
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	// Setup routes
	server.setupRoutes(authHandler, entryHandler, categoryHandler, memoHandler, mcpHandler, authService)

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
	}))

	// Rate limiting middleware
	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(s.config.Security.RateLimitRequests), Burst: s.config.Security.RateLimitRequests, ExpiresIn: s.config.Security.RateLimitWindow},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "rate limit exceeded")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	}))

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
	}))

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Timeout middleware
	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(authHandler *httpHandlers.AuthHandler, entryHandler *httpHandlers.EntryHandler, categoryHandler *httpHandlers.CategoryHandler, memoHandler *httpHandlers.MemoHandler, mcpHandler *httpHandlers.MCPHandler, authService *services.AuthService) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// Auth routes (public)
	authGroup := s.echo.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)

	// Entry routes (session authenticated)
	entryGroup := s.echo.Group("/api/entries", s.authMiddleware(authService))
	entryGroup.GET("", entryHandler.ListEntries)
	entryGroup.POST("/migrate", entryHandler.Migrate)
	entryGroup.GET("/:date", entryHandler.GetEntry)
	entryGroup.PUT("/:date", entryHandler.UpsertEntry)
	entryGroup.DELETE("/:date", entryHandler.DeleteEntry)

	// Category routes (session authenticated)
	categoryGroup := s.echo.Group("/api/categories", s.authMiddleware(authService))
	categoryGroup.GET("", categoryHandler.ListCategories)
	categoryGroup.POST("", categoryHandler.CreateCategory)
	categoryGroup.PUT("/:id", categoryHandler.UpdateCategory)
	categoryGroup.DELETE("/:id", categoryHandler.DeleteCategory)

	// Memo routes (session authenticated)
	memoGroup := s.echo.Group("/api/memos", s.authMiddleware(authService))
	memoGroup.GET("/categories", memoHandler.ListMemoCategories)
	memoGroup.POST("/categories", memoHandler.CreateMemoCategory)
	memoGroup.DELETE("/categories/:id", memoHandler.DeleteMemoCategory)
	memoGroup.GET("", memoHandler.ListMemos)
	memoGroup.POST("", memoHandler.CreateMemo)
	memoGroup.GET("/:id", memoHandler.GetMemo)
	memoGroup.PUT("/:id", memoHandler.UpdateMemo)
	memoGroup.DELETE("/:id", memoHandler.DeleteMemo)

	// API key management (session authenticated)
	settingsGroup := s.echo.Group("/api/settings/api-keys", s.authMiddleware(authService))
	settingsGroup.GET("", authHandler.ListAPIKeys)
	settingsGroup.POST("", authHandler.CreateAPIKey)
	settingsGroup.DELETE("/:id", authHandler.DeleteAPIKey)

	// MCP tool surface (API-key authenticated)
	v1 := s.echo.Group("/api/v1", s.apiKeyMiddleware(authService))
	v1.GET("/entries", mcpHandler.ListEntries)
	v1.GET("/entries/:date", mcpHandler.GetEntry)
	v1.GET("/search", mcpHandler.Search)
	v1.GET("/stats", mcpHandler.Stats)
	v1.GET("/categories", mcpHandler.Categories)
	v1.POST("/todos", mcpHandler.AddTodo)
	v1.GET("/todos/incomplete", mcpHandler.IncompleteTodos)
	v1.POST("/notes", mcpHandler.AddNote)
	v1.GET("/notes", mcpHandler.NotesByCategory)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(requestsTotal, requestDuration)

	// Custom metrics middleware
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	// Metrics endpoint
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	if err := s.db.HealthCheck(); err != nil {
		status = "error"
		checks["database"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "ok",
			"stats":  s.db.GetConnectionInfo(),
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
		},
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.db.HealthCheck(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

// Start starts the server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout
	s.echo.Server.IdleTimeout = s.config.Server.IdleTimeout

	s.logger.Infow("Starting HTTP server", "address", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}
