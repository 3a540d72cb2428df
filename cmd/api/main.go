package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bookstore_api/internal/cache"
	"github.com/GTDGit/bookstore_api/internal/catalog"
	"github.com/GTDGit/bookstore_api/internal/config"
	"github.com/GTDGit/bookstore_api/internal/database"
	"github.com/GTDGit/bookstore_api/internal/handler"
	"github.com/GTDGit/bookstore_api/internal/middleware"
	"github.com/GTDGit/bookstore_api/internal/repository"
	"github.com/GTDGit/bookstore_api/internal/service"
	"github.com/GTDGit/bookstore_api/internal/sse"
	"github.com/GTDGit/bookstore_api/internal/worker"
	"github.com/GTDGit/bookstore_api/pkg/ghn"
)

// main is the entrypoint of the bookstore shipping API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting bookstore shipping api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect database
	db, err := database.Connect(ctx, &cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 4. Redis is optional; without it every lookup goes to the catalog.
	var (
		dimensionCache service.DimensionCacher
		cachePinger    handler.Pinger
	)
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable - dimension cache disabled")
		} else {
			defer redisClient.Close()
			dimensionCache = cache.NewDimensionCache(redisClient, cfg.Cache.DimensionTTL)
			cachePinger = handler.PingFunc(redisClient.Ping)
			log.Info().Msg("redis connected successfully")
		}
	}

	// 5. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 6. External clients
	ghnClient := ghn.NewClient(cfg.GHN.ClientConfig())
	ghnClient.SetMetrics(ghn.NewMetrics(registry))
	if err := ghnClient.ValidateConfig(); err != nil {
		log.Warn().Err(err).Msg("GHN is not configured - shipping endpoints will report CONFIG_ERROR")
	}

	var catalogClient *catalog.Client
	if cfg.Catalog.BaseURL != "" {
		catalogClient = catalog.NewClient(catalog.Config{
			BaseURL: cfg.Catalog.BaseURL,
			Timeout: cfg.Catalog.Timeout,
		})
	} else {
		log.Warn().Msg("CATALOG_BASE_URL not set - cart lines without dimensions use defaults")
	}

	// 7. Repositories and services
	quoteRepo := repository.NewQuoteRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	shippingSvc := service.NewShippingService(ghnClient, service.NewDimensionResolver(dimensionCache))
	shippingSvc.SetQuoteRecorder(quoteRepo)
	quoteHub := sse.NewHub()
	shippingSvc.SetNotifier(sse.NewHubNotifier(quoteHub))
	shippingSvc.SetOrderDefaults(service.OrderDefaults{
		Sender:       cfg.GHN.Sender,
		Note:         cfg.GHN.OrderNote,
		RequiredNote: cfg.GHN.RequiredNote,
	})
	locationSvc := service.NewLocationService(ghnClient)
	sessions := service.NewSessionStore(ghnClient, shippingSvc)
	adminAuthSvc := service.NewAdminAuthService(adminRepo, cfg.JWTSecret)

	loginLimiter := middleware.NewInvalidAuthRateLimiter(5, 15*time.Minute)

	// 8. Handlers
	handlers := &Handlers{
		Health:     handler.NewHealthHandler(ghnClient, db, cachePinger),
		Location:   handler.NewLocationHandler(locationSvc),
		Shipping:   handler.NewShippingHandler(shippingSvc, catalogClient),
		Checkout:   handler.NewCheckoutHandler(sessions, catalogClient),
		Auth:       handler.NewAuthHandler(adminAuthSvc, loginLimiter),
		AdminQuote: handler.NewAdminQuoteHandler(quoteRepo),
		SSE:        handler.NewSSEHandler(quoteHub, cfg.JWTSecret),
	}

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedHosts...))
	router.Use(middleware.LoggingMiddleware())
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	setupRoutes(router, handlers, middleware.NewJWTMiddleware(cfg.JWTSecret), loginLimiter)

	// 10. Start workers
	go worker.NewSessionSweeper(sessions, cfg.Session.SweepInterval, cfg.Session.IdleTTL).Start(ctx)
	go loginLimiter.Cleanup(ctx, time.Minute)

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health     *handler.HealthHandler
	Location   *handler.LocationHandler
	Shipping   *handler.ShippingHandler
	Checkout   *handler.CheckoutHandler
	Auth       *handler.AuthHandler
	AdminQuote *handler.AdminQuoteHandler
	SSE        *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, loginLimiter *middleware.InvalidAuthRateLimiter) {
	router.GET("/health", handlers.Health.GetHealth)
	router.GET("/v1/health", handlers.Health.GetHealth)

	locations := router.Group("/v1/locations")
	{
		locations.GET("/provinces", handlers.Location.GetProvinces)
		locations.GET("/provinces/:provinceId/districts", handlers.Location.GetDistricts)
		locations.GET("/districts/:districtId/wards", handlers.Location.GetWards)
		locations.GET("/search", handlers.Location.Search)
	}

	shipping := router.Group("/v1/shipping")
	{
		shipping.POST("/fee", handlers.Shipping.CalculateFee)
		shipping.POST("/estimate", handlers.Shipping.Estimate)
		shipping.POST("/services", handlers.Shipping.GetServices)
		shipping.GET("/orders/:code", handlers.Shipping.GetOrder)
		shipping.POST("/orders", handlers.Shipping.CreateOrder)
	}

	// Checkout location selection, one session per open checkout form
	sessions := router.Group("/v1/checkout/sessions")
	{
		sessions.POST("", handlers.Checkout.CreateSession)
		sessions.GET("/:id", handlers.Checkout.GetSession)
		sessions.DELETE("/:id", handlers.Checkout.DeleteSession)
		sessions.PUT("/:id/province", handlers.Checkout.SelectProvince)
		sessions.PUT("/:id/district", handlers.Checkout.SelectDistrict)
		sessions.PUT("/:id/ward", handlers.Checkout.SelectWard)
		sessions.POST("/:id/reload", handlers.Checkout.Reload)
		sessions.POST("/:id/quote", handlers.Checkout.CalculateQuote)
		sessions.POST("/:id/reset", handlers.Checkout.Reset)
		sessions.GET("/:id/location", handlers.Checkout.GetLocationData)
	}

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", loginLimiter.Handle(), handlers.Auth.Login)
	admin.GET("/quotes/stream", handlers.SSE.Stream)
	admin.Use(jwtMiddleware.Handle())
	{
		admin.GET("/quotes", handlers.AdminQuote.ListQuotes)
		admin.GET("/quotes/:id", handlers.AdminQuote.GetQuote)
	}
}

func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
