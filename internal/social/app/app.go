package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/circle/internal/social/authn"
	httpapi "github.com/aussiebroadwan/circle/internal/social/http"
	"github.com/aussiebroadwan/circle/internal/social/mailer"
	"github.com/aussiebroadwan/circle/internal/social/media"
	"github.com/aussiebroadwan/circle/internal/social/metrics"
	"github.com/aussiebroadwan/circle/internal/social/push"
	"github.com/aussiebroadwan/circle/internal/social/service"
	"github.com/aussiebroadwan/circle/internal/social/sessioncache"
	"github.com/aussiebroadwan/circle/internal/social/store/drivers/sqlite"
	"github.com/aussiebroadwan/circle/pkg/cryptox"
	"github.com/aussiebroadwan/circle/pkg/jwtx"
	"github.com/aussiebroadwan/circle/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the social service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       *sqlite.Store
	cache    sessioncache.Cache
	codec    *jwtx.Codec
	registry *prometheus.Registry
	metrics  *metrics.Collector

	// Push hub runs until hubCancel is called
	hub       *push.Hub
	hubCancel context.CancelFunc

	// Services
	notificationService *service.NotificationService
	followService       *service.FollowService
	ratingService       *service.RatingService
	userService         *service.UserService
	sessionService      *service.SessionService
	housekeepingService *service.HousekeepingService
	housekeepingRunning bool

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	return NewWithLogger(cfg, slogx.New(slogx.Config{
		Service: "social-service",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	}))
}

// NewWithLogger is New with a caller supplied logger.
func NewWithLogger(cfg Config, logger *slog.Logger) (*Application, error) {
	app := &Application{cfg: cfg, logger: logger}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	codec, err := InitCodec(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initCache(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initMetrics()
	app.initPush()

	if err := app.initServices(); err != nil {
		app.hubCancel()
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()
	app.housekeepingRunning = true

	app.logger.Info("social service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down social service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Close push connections
	app.hubCancel()

	// Stop the housekeeping service
	if app.housekeepingRunning {
		app.housekeepingService.Stop()
		app.housekeepingRunning = false
	}

	if r, ok := app.cache.(*sessioncache.Redis); ok {
		if err := r.Close(); err != nil {
			app.logger.Error("error closing session cache", "error", err)
		}
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("social service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initCache connects the session cache. Without a Redis address sessions
// live in process memory.
func (app *Application) initCache() error {
	if app.cfg.RedisAddr == "" {
		app.cache = sessioncache.NewMemory()
		app.logger.Info("session cache: in-process")
		return nil
	}

	r := sessioncache.NewRedis(sessioncache.RedisConfig{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx); err != nil {
		_ = r.Close()
		return fmt.Errorf("failed to connect to session cache: %w", err)
	}

	app.cache = r
	app.logger.Info("session cache: redis", "addr", app.cfg.RedisAddr)
	return nil
}

func (app *Application) initMetrics() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.NewCollector(app.registry)
}

func (app *Application) initPush() {
	ctx, cancel := context.WithCancel(context.Background())
	app.hub = push.NewHub(app.logger, app.metrics)
	app.hubCancel = cancel
	go app.hub.Run(ctx)
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	app.notificationService = &service.NotificationService{
		Store:    app.db,
		Notifier: app.hub,
		Metrics:  app.metrics,
	}
	app.followService = &service.FollowService{
		Store:         app.db,
		Notifications: app.notificationService,
		Metrics:       app.metrics,
	}
	app.ratingService = &service.RatingService{
		Store:         app.db,
		Notifications: app.notificationService,
		Metrics:       app.metrics,
	}

	app.userService = &service.UserService{
		Store:    app.db,
		Cache:    app.cache,
		Mailer:   app.initMailer(),
		Presence: app.hub,
		Follows:  app.followService,
		Metrics:  app.metrics,

		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	if app.cfg.S3Bucket != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s3, err := media.NewS3(ctx, media.S3Config{
			Region:   app.cfg.S3Region,
			Bucket:   app.cfg.S3Bucket,
			Endpoint: app.cfg.S3Endpoint,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize media storage: %w", err)
		}
		app.userService.Media = s3
		app.logger.Info("media storage: s3", "bucket", app.cfg.S3Bucket)
	} else {
		app.logger.Warn("media storage not configured, image uploads are disabled")
	}

	app.sessionService = &service.SessionService{
		Store:      app.db,
		Cache:      app.cache,
		Codec:      app.codec,
		Presence:   app.hub,
		Metrics:    app.metrics,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.NotificationRetention = app.cfg.NotificationRetention
	if mem, ok := app.cache.(*sessioncache.Memory); ok {
		app.housekeepingService.Sweeper = mem
	}

	return nil
}

func (app *Application) initMailer() mailer.Mailer {
	if app.cfg.SMTPHost == "" {
		app.logger.Warn("smtp not configured, mail will be logged")
		return mailer.Log{Logger: app.logger}
	}
	return mailer.NewSMTP(mailer.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
	})
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	if app.cfg.HandoffSecret == "" {
		app.logger.Warn("HANDOFF_SECRET not set, external session handoff is disabled")
	}

	gate := &authn.Gate{
		Codec:          app.codec,
		Cache:          app.cache,
		ExternalHeader: app.cfg.ExternalHeader,
	}

	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.cache,
		gate,
		app.logger,
	)

	// Wire services to router
	router.UserService = app.userService
	router.SessionService = app.sessionService
	router.FollowService = app.followService
	router.RatingService = app.ratingService
	router.NotificationService = app.notificationService
	router.Hub = app.hub
	router.Metrics = app.metrics
	router.Gatherer = app.registry
	router.Cookies = httpapi.Cookies{Secure: app.cfg.CookieSecure}
	router.PushOriginPatterns = app.cfg.PushOriginPatterns
	router.HandoffSecret = app.cfg.HandoffSecret
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
