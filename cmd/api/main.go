package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tastebud/tastebud-api/config"
	"github.com/tastebud/tastebud-api/internal/cache"
	"github.com/tastebud/tastebud-api/internal/database/postgres"
	"github.com/tastebud/tastebud-api/internal/handlers"
	"github.com/tastebud/tastebud-api/internal/middleware"
	"github.com/tastebud/tastebud-api/internal/ratingflow"
	"github.com/tastebud/tastebud-api/internal/repository"
	"github.com/tastebud/tastebud-api/internal/services"
	"github.com/tastebud/tastebud-api/pkg/db"
	"github.com/tastebud/tastebud-api/pkg/httpclient"
	"github.com/tastebud/tastebud-api/pkg/logger"
	"github.com/tastebud/tastebud-api/pkg/metrics"
	"github.com/tastebud/tastebud-api/pkg/profiling"
	"github.com/tastebud/tastebud-api/pkg/storage"
	"github.com/tastebud/tastebud-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// registerRatingFlowRoutes registers the session-protected rating wizard routes
func registerRatingFlowRoutes(
	group *gin.RouterGroup,
	flowRateLimiter, photoRateLimiter *middleware.RateLimiter,
	ratingFlowHandler *handlers.RatingFlowHandler,
) {
	group.POST("", flowRateLimiter.Middleware(), ratingFlowHandler.StartSession)
	group.GET("/:sessionId", flowRateLimiter.Middleware(), ratingFlowHandler.GetSession)
	group.DELETE("/:sessionId", flowRateLimiter.Middleware(), ratingFlowHandler.AbandonSession)
	group.POST("/:sessionId/restaurant", flowRateLimiter.Middleware(), ratingFlowHandler.SelectRestaurant)
	group.POST("/:sessionId/dishes", flowRateLimiter.Middleware(), ratingFlowHandler.ConfirmDishes)
	group.POST("/:sessionId/rate", flowRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), ratingFlowHandler.RateDish)
	group.POST("/:sessionId/feedback", flowRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), ratingFlowHandler.SubmitFeedback)
	group.POST("/:sessionId/skip", flowRateLimiter.Middleware(), ratingFlowHandler.SkipFeedback)
	group.POST("/:sessionId/back", flowRateLimiter.Middleware(), ratingFlowHandler.Back)
	// Base64 payloads are ~33% larger than the decoded photo, so the limit
	// leaves headroom over the 10MB photo cap
	group.POST("/:sessionId/photos", photoRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(15*1024*1024), ratingFlowHandler.UploadPhoto)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Tastebud API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Continuous profiling (opt-in)
	if cfg.Profiling.Enabled {
		stopProfiler, profErr := profiling.InitProfiler(
			cfg.Profiling,
			cfg.Observability.ServiceName,
			cfg.Observability.ServiceNamespace,
			cfg.Observability.ServiceVersion,
			cfg.Observability.ServiceInstanceID,
			cfg.Server.AppEnv,
		)
		if profErr != nil {
			logger.Error("Failed to initialize profiler", zap.Error(profErr))
		} else {
			defer stopProfiler()
		}
	}

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Initialize PostgreSQL connection pool
	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer pool.Close()

	// NOTE: Database migrations are run separately via the migrate command

	// Initialize the photo storage client
	var photoClient *storage.PhotoClient
	if cfg.PhotoStorage.AccessKeyID != "" && cfg.PhotoStorage.SecretAccessKey != "" {
		photoClient, err = storage.NewPhotoClient(
			cfg.PhotoStorage.AccessKeyID,
			cfg.PhotoStorage.SecretAccessKey,
			cfg.PhotoStorage.BucketName,
			cfg.PhotoStorage.Endpoint,
			cfg.PhotoStorage.Region,
		)
		if err != nil {
			logger.Fatal("Failed to initialize photo storage client", zap.Error(err))
		}
	} else {
		logger.Warn("Photo storage credentials not configured - photo uploads disabled")
	}

	// Data access layer
	pgClient := postgres.NewClient(pool)
	dataSource := repository.NewPostgresDataSource(pgClient)

	// Restaurant catalog cache, populated synchronously before the container
	// is marked healthy
	restaurantCache := cache.NewRestaurantCache(dataSource, dataSource, cfg.Cache.RestaurantTTLSeconds)
	if cfg.Cache.DisableRestaurantsCache {
		logger.Warn("Restaurant cache is DISABLED - reading from database on every request (experimental feature)")
	} else {
		if err := restaurantCache.Initialize(); err != nil {
			logger.Fatal("Failed to initialize restaurant cache", zap.Error(err))
		}
	}

	// In-memory rating flow session store
	sessionStore := ratingflow.NewSessionStore(time.Duration(cfg.RatingFlow.SessionTTLMinutes) * time.Minute)

	// HTTP client for event triggers
	httpClient := httpclient.NewStandardClient()

	// Initialize services
	restaurantService := services.NewRestaurantService(restaurantCache, dataSource, dataSource, dataSource, cfg)
	ratingFlowService := services.NewRatingFlowService(sessionStore, restaurantCache, dataSource, dataSource, dataSource, photoClient, cfg, httpClient)
	preferencesService := services.NewPreferencesService(dataSource, cfg)
	pointsService := services.NewPointsService(dataSource)
	dinerAuthService := services.NewDinerAuthService(cfg)

	// Initialize handlers
	restaurantHandler := handlers.NewRestaurantHandler(restaurantService)
	ratingFlowHandler := handlers.NewRatingFlowHandler(ratingFlowService)
	preferencesHandler := handlers.NewPreferencesHandler(preferencesService)
	pointsHandler := handlers.NewPointsHandler(pointsService)
	dinerAuthHandler := handlers.NewDinerAuthHandler(dinerAuthService)
	internalHandler := handlers.NewInternalHandler(restaurantCache)

	// Health check: if the cache is disabled, readiness does not depend on it
	cacheReadyFunc := restaurantCache.IsReady
	if cfg.Cache.DisableRestaurantsCache {
		cacheReadyFunc = func() bool { return true }
	}
	healthHandler := handlers.NewHealthHandler(cacheReadyFunc)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS configuration - SECURITY: Only allow specific origins
	allowedOrigins := cfg.Server.AllowedOrigins
	// Allow localhost in development
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "x-internal-tastebud-auth-token", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // Required for diner session cookies
		MaxAge:           12 * time.Hour,
	}))

	// SECURITY: Rate limiters to prevent abuse and DoS attacks
	generalRateLimiter := middleware.NewRateLimiter(100, 200) // 100 req/sec, burst of 200
	authRateLimiter := middleware.NewRateLimiter(1, 5)        // 1 req/sec, burst of 5 (session churn abuse)
	flowRateLimiter := middleware.NewRateLimiter(20, 40)      // 20 req/sec, burst of 40
	photoRateLimiter := middleware.NewRateLimiter(2, 5)       // 2 req/sec, burst of 5 (uploads are expensive)

	sessionMiddleware := middleware.DinerSessionMiddleware(
		dinerAuthService.GetTokenManager(),
		dinerAuthService.GetCookieDomain(),
		dinerAuthService.GetCookieSecure(),
	)
	optionalSessionMiddleware := middleware.OptionalDinerSessionMiddleware(dinerAuthService.GetTokenManager())

	// Utility endpoints (not versioned - operational endpoints)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))

	// Internal service-to-service endpoints
	internal := api.Group("/internal", generalRateLimiter.Middleware(), middleware.InternalAPIAuthMiddleware(cfg.Auth.InternalAPIToken))
	internal.POST("/cache/refresh", internalHandler.RefreshCache)
	internal.GET("/restaurants", internalHandler.GetRestaurants)
	internal.POST("/restaurants/:slug/refresh", internalHandler.RefreshRestaurant)

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Diner session lifecycle (public)
	auth := v1.Group("/auth")
	auth.POST("/session", authRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(10*1024), dinerAuthHandler.StartSession)
	auth.POST("/logout", authRateLimiter.Middleware(), dinerAuthHandler.EndSession)

	// Restaurant catalog (public; search personalizes when a session exists)
	restaurants := v1.Group("/restaurants", generalRateLimiter.Middleware())
	restaurants.GET("", restaurantHandler.ListRestaurants)
	restaurants.POST("/search", optionalSessionMiddleware, middleware.BodySizeLimitMiddleware(100*1024), restaurantHandler.SearchRestaurants)
	restaurants.GET("/:slug", restaurantHandler.GetRestaurant)
	restaurants.GET("/:slug/dishes", optionalSessionMiddleware, restaurantHandler.GetRestaurantDishes)

	// Rating flow (session-protected)
	ratingFlow := v1.Group("/rating-flow", sessionMiddleware)
	registerRatingFlowRoutes(ratingFlow, flowRateLimiter, photoRateLimiter, ratingFlowHandler)

	// Preferences and points (session-protected)
	preferences := v1.Group("/preferences", generalRateLimiter.Middleware(), sessionMiddleware)
	preferences.GET("/filters", preferencesHandler.GetFilters)
	preferences.PUT("/filters", middleware.BodySizeLimitMiddleware(100*1024), preferencesHandler.SaveFilters)

	points := v1.Group("/points", generalRateLimiter.Middleware(), sessionMiddleware)
	points.GET("", pointsHandler.GetSummary)

	// Create HTTP server
	// SECURITY: Bind to all interfaces for Docker Compose networking
	// Network isolation is enforced by Docker Compose (backend has no public ports)
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // SECURITY: 1 MB max header size
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
