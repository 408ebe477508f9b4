package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type errorMapping struct {
	err     error
	status  int
	message string
}

var errorStatuses = []errorMapping{
	{services.ErrEventNotFound, fiber.StatusNotFound, "Event not found"},
	{services.ErrUserNotFound, fiber.StatusNotFound, "User not found"},
	{services.ErrGuessNotFound, fiber.StatusNotFound, "Guess not found"},
	{services.ErrNoEventsFound, fiber.StatusNotFound, "No events found with that mother's name"},
	{services.ErrNotEventHost, fiber.StatusForbidden, "Unauthorized"},
	{services.ErrForbidden, fiber.StatusForbidden, "Unauthorized"},
	{services.ErrHostOnly, fiber.StatusForbidden, "Only hosts can create events"},
	{services.ErrNotHost, fiber.StatusForbidden, "This account is not registered as a host"},
	{services.ErrUseHostLogin, fiber.StatusForbidden, "This account belongs to a host. Please use host login"},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized, "Invalid email or password"},
	{services.ErrInvalidToken, fiber.StatusUnauthorized, "Invalid or expired refresh token"},
	{services.ErrNameGameDisabled, fiber.StatusBadRequest, "Name game is not enabled for this event"},
	{services.ErrInvalidAmount, fiber.StatusBadRequest, "Valid amount is required"},
	{services.ErrNotAGuest, fiber.StatusBadRequest, "User is not a guest of this event"},
	{services.ErrAlreadyGuest, fiber.StatusBadRequest, "User is already a guest for this event"},
	{services.ErrGuestHasGuesses, fiber.StatusBadRequest, "Cannot remove guest with existing guesses"},
	{services.ErrEmailTaken, fiber.StatusBadRequest, "Email already exists"},
	{services.ErrEmailNotVerified, fiber.StatusBadRequest, "User email not available or not verified by Google."},
	{services.ErrNoFile, fiber.StatusBadRequest, "No selected file"},
	{services.ErrFileTypeNotAllowed, fiber.StatusBadRequest, "File type not allowed"},
	{services.ErrInvalidImage, fiber.StatusBadRequest, "Invalid image file"},
	{services.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge, "File too large (max 5MB)"},
	{services.ErrCodeExhausted, fiber.StatusServiceUnavailable, "Could not generate an event code, please try again"},
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// writeServiceError maps a service error to its HTTP response. Anything
// unrecognized is logged and reported as a 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return fail(c, fiber.StatusBadRequest, verr.Message)
	}
	var taken *services.SlotTakenError
	if errors.As(err, &taken) {
		return fail(c, fiber.StatusBadRequest, taken.Error())
	}
	var dup *services.AlreadyGuessedError
	if errors.As(err, &dup) {
		return fail(c, fiber.StatusBadRequest, dup.Error())
	}
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return fail(c, ferr.Code, ferr.Message)
	}

	for _, m := range errorStatuses {
		if errors.Is(err, m.err) {
			return fail(c, m.status, m.message)
		}
	}

	attrs := []any{
		"method", c.Method(),
		"path", c.Path(),
		"error", err.Error(),
		"request_id", c.Locals("requestid"),
		"trace_id", c.Locals("trace_id"),
	}
	if uid, idErr := identity.GetUserID(c); idErr == nil {
		attrs = append(attrs, "user_id", identity.Subject(uid))
	}
	if eventID := c.Params("id"); eventID != "" {
		attrs = append(attrs, "event_id", eventID)
	}
	slog.Error("request failed", attrs...)
	return fail(c, fiber.StatusInternalServerError, "Internal server error")
}

func invalidBody(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, "Invalid request body")
}

// paramID reads a positive integer route parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}
