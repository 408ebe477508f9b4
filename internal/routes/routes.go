package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers groups everything Setup mounts. Google is nil when sign-in with
// Google is not configured.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Google  *handlers.GoogleHandler
	Events  *handlers.EventHandler
	Guesses *handlers.GuessHandler
	Guests  *handlers.GuestHandler
	Health  *handlers.HealthHandler
}

// rateLimit keys on scope+IP so limiters sharing one storage stay independent.
func rateLimit(scope string, limit int, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               limit,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return scope + ":" + c.IP() },
		Storage:           storage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "Too many requests, slow down",
			})
		},
	})
}

// Setup mounts the API, auth and static routes. authn must run before any
// handler that reads the current user.
func Setup(app *fiber.App, cfg *config.Config, storage fiber.Storage, authn fiber.Handler, h Handlers) {
	requireAuth := middleware.RequireAuth()
	requireHost := middleware.RequireHost()

	app.Static("/static/uploads", cfg.UploadDir)
	app.Static("/static", cfg.StaticDir)

	// General API rate limiter: 60 req/min per IP
	api := app.Group("/api", rateLimit("api", 60, storage), authn)
	api.Get("/health", h.Health.Check)

	api.Get("/users/me", requireAuth, h.Auth.Me)
	api.Put("/users/me", requireAuth, h.Auth.UpdateMe)

	events := api.Group("/events")
	events.Get("/", requireAuth, h.Events.List)
	events.Post("/", requireHost, h.Events.Create)
	events.Get("/code/:code", h.Events.ByCode)
	events.Get("/find-by-mother", h.Events.FindByMother)
	events.Get("/:id", h.Events.Get)
	events.Put("/:id", requireAuth, h.Events.Update)
	events.Delete("/:id", requireAuth, h.Events.Delete)
	events.Post("/:id/image", requireHost, h.Events.UploadImage)
	events.Get("/:id/dates", h.Guesses.DateWindow)
	events.Get("/:id/user/guesses", requireAuth, h.Guesses.UserGuesses)

	// Guest management (event host only)
	events.Post("/:id/add-guest", requireHost, h.Guests.Add)
	events.Get("/:id/guests", requireHost, h.Guests.List)
	events.Get("/:id/guests/:uid", requireHost, h.Guests.Detail)
	events.Post("/:id/guests/:uid/payment", requireHost, h.Guests.Payment)
	events.Delete("/:id/guests/:uid", requireHost, h.Guests.Remove)

	// Guesses: listings are public, creating needs a login
	for _, kind := range []string{models.KindDate, models.KindHour, models.KindMinute, models.KindName} {
		events.Get("/:id/guesses/"+kind, h.Guesses.List(kind))
	}
	events.Post("/:id/guesses/date", requireAuth, h.Guesses.CreateDate)
	events.Post("/:id/guesses/hour", requireAuth, h.Guesses.CreateHour)
	events.Post("/:id/guesses/minute", requireAuth, h.Guesses.CreateMinute)
	events.Post("/:id/guesses/name", requireAuth, h.Guesses.CreateName)
	events.Delete("/:id/guesses/:kind/:guess_id", requireAuth, h.Guesses.Delete)

	// Auth-specific rate limit: 20 req/min per IP (stricter)
	auth := app.Group("/auth", rateLimit("auth", 20, storage), authn)
	auth.Post("/host/register", h.Auth.HostRegister)
	auth.Post("/host/login", h.Auth.HostLogin)
	auth.Post("/guest/login", h.Auth.GuestLogin)
	auth.Post("/guest/select-event", h.Auth.SelectEvent)
	auth.Post("/logout", h.Auth.Logout)
	auth.Get("/logout", h.Auth.Logout)
	auth.Put("/update-profile", requireAuth, h.Auth.UpdateProfile)
	auth.Post("/token/refresh", h.Auth.Refresh)
	auth.Get("/token/verify", h.Auth.Verify)
	auth.Get("/verify-token", h.Auth.Verify)

	google := app.Group("/google_auth", rateLimit("google", 20, storage))
	if h.Google != nil {
		google.Get("/google_login", h.Google.Login)
		google.Get("/google_login/callback", h.Google.Callback)
	} else {
		google.Get("/*", handlers.GoogleDisabled)
	}

	app.Get("/*", handlers.SPA(cfg.StaticDir))
}
