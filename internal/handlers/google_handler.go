package handlers

import (
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type GoogleHandler struct {
	google      *services.GoogleOAuth
	authService *services.AuthService
	sessions    *Sessions
}

func NewGoogleHandler(google *services.GoogleOAuth, authService *services.AuthService, sessions *Sessions) *GoogleHandler {
	return &GoogleHandler{google: google, authService: authService, sessions: sessions}
}

func (h *GoogleHandler) Login(c *fiber.Ctx) error {
	state, err := h.google.NewState()
	if err != nil {
		return writeServiceError(c, err)
	}
	if err := h.sessions.SetOAuthState(c, state); err != nil {
		return writeServiceError(c, err)
	}
	return c.Redirect(h.google.AuthCodeURL(state))
}

func (h *GoogleHandler) Callback(c *fiber.Ctx) error {
	expected, err := h.sessions.TakeOAuthState(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	if expected == "" || c.Query("state") != expected {
		return fail(c, fiber.StatusBadRequest, "Invalid OAuth state")
	}

	ctx := c.UserContext()
	info, err := h.google.Exchange(ctx, c.Query("code"))
	if err != nil {
		return writeServiceError(c, err)
	}
	user, err := h.google.FindOrCreateUser(ctx, info)
	if err != nil {
		return writeServiceError(c, err)
	}
	if _, err := h.sessions.Login(c, user, "google"); err != nil {
		return writeServiceError(c, err)
	}

	target, err := h.authService.PostLoginRedirect(ctx, user)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Redirect(target)
}

// GoogleDisabled answers the Google routes when no client is configured.
func GoogleDisabled(c *fiber.Ctx) error {
	return fail(c, fiber.StatusNotFound, "Google sign-in is not configured")
}
