package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/observability"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	console := logging.Setup(cfg.Env, cfg.LogLevel)

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// ERROR+ records are also batched into system_logs
	dbLogHandler := logging.NewDBHandler(database.DB, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(console, dbLogHandler)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Shared storage for sessions and rate limits; in-process memory without Redis
	var redisClient *redis.Client
	var sharedStorage fiber.Storage
	if cfg.RedisURL != "" {
		redisClient, err = storage.Dial(context.Background(), cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, falling back to in-memory sessions", "error", err)
		} else {
			sharedStorage = storage.NewRedisStorage(redisClient, "babypool:")
			slog.Info("redis connected")
		}
	}

	sessionStore := session.New(session.Config{
		Expiration:     cfg.SessionExpiry,
		Storage:        sharedStorage,
		KeyLookup:      "cookie:" + middleware.SessionCookieName,
		CookieHTTPOnly: true,
		CookieSecure:   cfg.IsProduction(),
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})

	// Tracing
	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  observability.ServiceName,
		Environment:  cfg.Env,
		Exporter:     cfg.OTelExporter,
		OTLPEndpoint: cfg.OTelEndpoint,
		SamplerRatio: 1.0,
	})
	if err != nil {
		slog.Error("tracing init failed", "error", err)
		os.Exit(1)
	}

	// Services
	authService := services.NewAuthService(database.DB, cfg)
	eventService := services.NewEventService(database.DB)
	guessService := services.NewGuessService(database.DB, services.NewContentFilter())
	guestService := services.NewGuestService(database.DB)
	paymentService := services.NewPaymentService(database.DB)
	uploadService := services.NewUploadService(cfg.UploadDir, cfg.MaxUploadBytes)

	// Handlers
	sessions := handlers.NewSessions(sessionStore, authService, cfg)
	h := routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService, sessions),
		Events:  handlers.NewEventHandler(eventService, uploadService),
		Guesses: handlers.NewGuessHandler(guessService),
		Guests:  handlers.NewGuestHandler(guestService, paymentService),
		Health:  handlers.NewHealthHandler(database.DB),
	}
	if cfg.GoogleEnabled() {
		h.Google = handlers.NewGoogleHandler(services.NewGoogleOAuth(database.DB, cfg), authService, sessions)
	} else {
		slog.Info("google sign-in disabled, GOOGLE_OAUTH_CLIENT_ID not set")
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Env,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    int(cfg.MaxUploadBytes) + 1024*1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.Tracing())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	prom := fiberprometheus.New(observability.ServiceName)
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	authn := middleware.Authenticate(cfg, sessionStore, authService.GetUser)
	routes.Setup(app, cfg, sharedStorage, authn, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(ctx); err != nil {
		slog.Error("tracing shutdown error", "error", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := database.Close(database.DB); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"error", err.Error(),
			"request_id", c.Locals("requestid"),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
