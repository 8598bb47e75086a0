package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/lostfound/internal/auth/http"
	"github.com/aussiebroadwan/lostfound/internal/auth/service"
	"github.com/aussiebroadwan/lostfound/internal/auth/store"
	"github.com/aussiebroadwan/lostfound/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/lostfound/internal/auth/verification"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	redis    *redis.Client // nil when REDIS_ADDR is empty
	sessions *service.SessionIssuer
	verifier verification.Verifier

	// Services
	authService         *service.AuthService
	twoFactorService    *service.TwoFactorService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "lostfound-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.cfg.ensureSecrets(app.logger); err != nil {
		return nil, err
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	sessions, err := service.NewSessionIssuer(
		[]byte(app.cfg.AccessTokenSecret),
		[]byte(app.cfg.RefreshTokenSecret),
		app.cfg.Issuer,
		app.cfg.AccessTokenTTL,
		app.cfg.RefreshTokenTTL,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize session tokens: %w", err)
	}
	app.sessions = sessions

	totp := &service.TOTPVerifier{Issuer: app.cfg.TOTPIssuer}
	secondFactor := &service.SecondFactor{
		Store:    app.db,
		TOTP:     totp,
		Attempts: app.attemptLimiter(),
	}

	app.authService = &service.AuthService{
		Store:        app.db,
		Sessions:     sessions,
		SecondFactor: secondFactor,
	}
	app.twoFactorService = &service.TwoFactorService{
		Store:        app.db,
		TOTP:         totp,
		SecondFactor: secondFactor,
	}
	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.PendingTwoFactorTTL,
	)

	app.verifier = app.externalVerifier()
	return nil
}

// attemptLimiter returns a Redis-backed limiter when REDIS_ADDR is set.
func (app *Application) attemptLimiter() service.AttemptLimiter {
	if app.cfg.RedisAddr == "" {
		app.logger.Info("second-factor attempt limiter disabled, REDIS_ADDR not set")
		return service.NoopLimiter{}
	}

	app.redis = redis.NewClient(&redis.Options{Addr: app.cfg.RedisAddr})
	app.logger.Info("second-factor attempt limiter enabled",
		"redis_addr", app.cfg.RedisAddr,
		"max_attempts", app.cfg.SecondFactorMaxAttempts,
		"lockout", app.cfg.SecondFactorLockout,
	)
	return &service.RedisLimiter{
		Redis:       app.redis,
		MaxAttempts: app.cfg.SecondFactorMaxAttempts,
		Window:      app.cfg.SecondFactorLockout,
	}
}

func (app *Application) externalVerifier() verification.Verifier {
	if app.cfg.RecaptchaSecretKey == "" {
		app.logger.Warn("RECAPTCHA_SECRET_KEY not set, accepting any non-empty verification token")
		return verification.PermissiveVerifier{}
	}
	return verification.NewRecaptchaVerifier(app.cfg.RecaptchaSecretKey, app.cfg.RecaptchaVerifyURL)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.sessions.AccessVerifier,
		BuildVersion,
		app.db,
		app.logger,
		app.cfg.IsDev(),
	)

	router.AuthService = app.authService
	router.TwoFactorService = app.twoFactorService
	router.UserService = app.userService
	router.Verification = app.verifier
	router.AllowedOrigins = app.cfg.CORSAllowedOrigins
	if app.redis != nil {
		router.Cache = func(ctx context.Context) error {
			return app.redis.Ping(ctx).Err()
		}
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
