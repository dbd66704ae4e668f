package server

import (
	"context"
	"errors"
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

	_ "github.com/taskmaster/scheduler/docs"
	httpHandlers "github.com/taskmaster/scheduler/internal/adapters/http"
	"github.com/taskmaster/scheduler/internal/adapters/repository"
	"github.com/taskmaster/scheduler/internal/application/services"
	"github.com/taskmaster/scheduler/internal/infrastructure/cache"
	"github.com/taskmaster/scheduler/internal/infrastructure/config"
	"github.com/taskmaster/scheduler/internal/infrastructure/database"
	"github.com/taskmaster/scheduler/internal/infrastructure/logger"
	"github.com/taskmaster/scheduler/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo     *echo.Echo
	config   *config.Config
	logger   *logger.Logger
	db       *database.DB
	cache    *cache.RedisCache
	calendar *services.CalendarService
	janitor  *Janitor
}

// New wires repositories, services and handlers. redisCache may be nil,
// in which case calendar fetches go straight to the database.
func New(cfg *config.Config, db *database.DB, redisCache *cache.RedisCache, appLogger *logger.Logger) (*Server, error) {
	loc, err := cfg.Calendar.GetLocation()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.Validator = httpHandlers.NewValidator()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	taskRepo := repository.NewTaskRepository(db.DB)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg.JWT, appLogger)

	var invalidators []ports.TaskCacheInvalidator
	var source ports.TaskSource
	if redisCache != nil {
		// Reads go through an uncached service; writes invalidate.
		cached := repository.NewCachedTaskSource(services.NewTaskService(taskRepo, appLogger), redisCache, cfg.Redis.TaskTTL, appLogger)
		invalidators = append(invalidators, cached)
		source = cached
	}
	taskService := services.NewTaskService(taskRepo, appLogger, invalidators...)
	if source == nil {
		source = taskService
	}
	calendarService := services.NewCalendarService(source, loc, cfg.Calendar.ViewTTL, appLogger)

	// Initialize handlers
	authHandler := httpHandlers.NewAuthHandler(authService, appLogger)
	taskHandler := httpHandlers.NewTaskHandler(taskService, appLogger)
	calendarHandler := httpHandlers.NewCalendarHandler(calendarService, appLogger)

	server := &Server{
		echo:     e,
		config:   cfg,
		logger:   appLogger,
		db:       db,
		cache:    redisCache,
		calendar: calendarService,
		janitor:  NewJanitor(cfg.Calendar.JanitorInterval, calendarService, appLogger),
	}

	server.setupMiddleware()

	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	server.setupRoutes(authHandler, taskHandler, calendarHandler, authService)

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"request_id", values.RequestID,
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

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: splitOrigins(s.config.Security.CORSAllowedOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))

	if s.config.Security.RateLimitRequests > 0 {
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      requestRate(s.config.Security.RateLimitRequests, s.config.Security.RateLimitWindow),
				Burst:     s.config.Security.RateLimitRequests,
				ExpiresIn: s.config.Security.RateLimitWindow,
			}),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				return ctx.RealIP(), nil
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return c.JSON(http.StatusForbidden, ports.ErrorResponse{Message: "rate limit exceeded"})
			},
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return c.JSON(http.StatusTooManyRequests, ports.ErrorResponse{Message: "rate limit exceeded"})
			},
		}))
	}

	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
	}))

	if s.config.Server.RequestTimeout > 0 {
		s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Timeout: s.config.Server.RequestTimeout,
		}))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(authHandler *httpHandlers.AuthHandler, taskHandler *httpHandlers.TaskHandler, calendarHandler *httpHandlers.CalendarHandler, authService TokenValidator) {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/ready", s.readinessCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := s.echo.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	authed := authMiddleware(authService, s.logger)

	userGroup := v1.Group("/users", authed)
	userGroup.GET("/me", authHandler.GetCurrentUser)

	taskGroup := v1.Group("/tasks", authed)
	taskGroup.GET("", taskHandler.ListTasks)
	taskGroup.POST("", taskHandler.CreateTask)
	taskGroup.GET("/:id", taskHandler.GetTask)
	taskGroup.PATCH("/:id", taskHandler.UpdateTask)
	taskGroup.DELETE("/:id", taskHandler.DeleteTask)

	calendarGroup := v1.Group("/calendar", authed)
	calendarGroup.GET("", calendarHandler.GetMonth)
	calendarGroup.POST("/views", calendarHandler.OpenView)
	calendarGroup.GET("/views/:id", calendarHandler.GetView)
	calendarGroup.POST("/views/:id/navigate", calendarHandler.Navigate)
	calendarGroup.POST("/views/:id/today", calendarHandler.Today)
	calendarGroup.POST("/views/:id/jump", calendarHandler.Jump)
	calendarGroup.POST("/views/:id/refresh", calendarHandler.Refresh)
	calendarGroup.DELETE("/views/:id", calendarHandler.CloseView)
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

	openViews := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "calendar_open_views",
			Help: "Number of calendar views currently held in memory",
		},
		func() float64 { return float64(s.calendar.ActiveViews()) },
	)

	registry.MustRegister(requestsTotal, requestDuration, openViews)

	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			}

			requestsTotal.WithLabelValues(c.Request().Method, c.Path(), fmt.Sprintf("%d", status)).Inc()
			requestDuration.WithLabelValues(c.Request().Method, c.Path()).Observe(time.Since(start).Seconds())

			return err
		}
	})

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"time":           time.Now().UTC().Format(time.RFC3339),
		"version":        s.config.App.Version,
		"calendar_views": s.calendar.ActiveViews(),
	})
}

func (s *Server) readinessCheck(c echo.Context) error {
	ctx := c.Request().Context()

	if err := s.db.HealthCheck(ctx); err != nil {
		s.logger.WithError(err).Warnw("Readiness check failed", "dependency", "database")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "database_not_ready",
		})
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			s.logger.WithError(err).Warnw("Readiness check failed", "dependency", "redis")
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": "cache_not_ready",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ready",
		"time":     time.Now().UTC().Format(time.RFC3339),
		"database": s.db.GetConnectionInfo(),
	})
}

// Run serves HTTP and runs the janitor until ctx is canceled, then shuts
// the server down within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	httpServer := &http.Server{
		Addr:         address,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.janitor.Run(janitorCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("Starting server", "address", address)
		errCh <- s.echo.StartServer(httpServer)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler renders errors as JSON and logs server-side failures.
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		var he *echo.HTTPError
		var ve validator.ValidationErrors
		switch {
		case errors.As(err, &he):
			code = he.Code
			msg = ports.ErrorResponse{Message: fmt.Sprint(he.Message)}
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		case errors.As(err, &ve):
			code = http.StatusBadRequest
			msg = ports.ErrorResponse{Message: ve.Error()}
		default:
			msg = ports.ErrorResponse{Message: http.StatusText(code)}
		}

		if code >= http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Errorw("Error sending response", "error", err)
			}
		}
	}
}

// requestRate spreads n requests over window.
func requestRate(n int, window time.Duration) rate.Limit {
	if window <= 0 {
		return rate.Limit(n)
	}
	return rate.Limit(float64(n) / window.Seconds())
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
