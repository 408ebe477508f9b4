package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
	sessions    *Sessions
}

func NewAuthHandler(authService *services.AuthService, sessions *Sessions) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

func (h *AuthHandler) authResponse(user *models.User, pair *dto.TokenPair, message string) dto.AuthResponse {
	return dto.AuthResponse{
		UserResponse: services.ToUserResponse(user),
		Message:      message,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}

func (h *AuthHandler) HostRegister(c *fiber.Ctx) error {
	var req dto.HostRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := h.authService.RegisterHost(c.UserContext(), &req)
	if err != nil {
		return writeServiceError(c, err)
	}
	pair, err := h.sessions.Login(c, user, "host_register")
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.authResponse(user, pair, "Host registration successful"))
}

func (h *AuthHandler) HostLogin(c *fiber.Ctx) error {
	var req dto.HostLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := h.authService.LoginHost(c.UserContext(), &req)
	if err != nil {
		return writeServiceError(c, err)
	}
	pair, err := h.sessions.Login(c, user, "host")
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(h.authResponse(user, pair, "Login successful"))
}

func (h *AuthHandler) GuestLogin(c *fiber.Ctx) error {
	var req dto.GuestLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	result, err := h.authService.GuestLogin(c.UserContext(), &req, h.sessions.TempEmail(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return h.finishGuestLogin(c, result)
}

func (h *AuthHandler) SelectEvent(c *fiber.Ctx) error {
	var req dto.SelectEventRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	result, err := h.authService.SelectEvent(c.UserContext(), &req, h.sessions.TempEmail(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return h.finishGuestLogin(c, result)
}

func (h *AuthHandler) finishGuestLogin(c *fiber.Ctx, result *services.GuestLoginResult) error {
	switch {
	case result.StashEmail != "":
		if err := h.sessions.SetTempEmail(c, result.StashEmail); err != nil {
			return writeServiceError(c, err)
		}
	case result.ClearStash:
		if err := h.sessions.SetTempEmail(c, ""); err != nil {
			return writeServiceError(c, err)
		}
	}

	resp := result.Response
	if result.User != nil {
		pair, err := h.sessions.Login(c, result.User, "guest")
		if err != nil {
			return writeServiceError(c, err)
		}
		resp.AccessToken = pair.AccessToken
		resp.RefreshToken = pair.RefreshToken
	}
	return c.JSON(resp)
}

// Logout accepts GET from browser links and POST from the SPA.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	_ = c.BodyParser(&req)
	if err := h.authService.RevokeRefreshToken(c.UserContext(), req.RefreshToken); err != nil {
		return writeServiceError(c, err)
	}
	if err := h.sessions.Logout(c); err != nil {
		return writeServiceError(c, err)
	}

	if c.Method() == fiber.MethodGet && c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMETextHTML {
		return c.Redirect("/")
	}
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

// Refresh rotates the refresh token taken from the body or a Bearer header.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	_ = c.BodyParser(&req)
	raw := req.RefreshToken
	if raw == "" {
		raw = strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "))
	}

	user, pair, err := h.authService.Refresh(c.UserContext(), raw)
	if err != nil {
		return writeServiceError(c, err)
	}
	h.sessions.setAccessCookie(c, pair.AccessToken, h.sessions.cfg.AccessExpiry(user.IsHost))
	return c.JSON(pair)
}

func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	user := identity.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.VerifyTokenResponse{Valid: false})
	}
	resp := services.ToUserResponse(user)
	return c.JSON(dto.VerifyTokenResponse{Valid: true, User: &resp})
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	return h.updateProfile(c, "Profile updated successfully")
}

// UpdateMe backs PUT /api/users/me.
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	return h.updateProfile(c, "User updated successfully")
}

func (h *AuthHandler) updateProfile(c *fiber.Ctx, message string) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	}

	user, err := h.authService.UpdateProfile(c.UserContext(), userID, &req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(dto.ProfileResponse{Message: message, User: services.ToUserResponse(user)})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := identity.CurrentUser(c)
	if user == nil {
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	}
	resp, err := h.authService.Profile(c.UserContext(), user)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(resp)
}
