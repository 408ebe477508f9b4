package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type GuessHandler struct {
	guesses *services.GuessService
}

func NewGuessHandler(guesses *services.GuessService) *GuessHandler {
	return &GuessHandler{guesses: guesses}
}

// caller returns the event id from the route and the authenticated user id.
func caller(c *fiber.Ctx) (eventID, userID uint, err error) {
	if eventID, err = paramID(c, "id"); err != nil {
		return 0, 0, err
	}
	userID, err = identity.GetUserID(c)
	if err != nil {
		return 0, 0, fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}
	return eventID, userID, nil
}

func created(c *fiber.Ctx, id uint, kind string) error {
	return c.Status(fiber.StatusCreated).JSON(dto.GuessCreatedResponse{
		ID:      id,
		Message: strings.ToUpper(kind[:1]) + kind[1:] + " guess created successfully",
	})
}

func (h *GuessHandler) CreateDate(c *fiber.Ctx) error {
	eventID, userID, err := caller(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req dto.DateGuessRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	guess, err := h.guesses.CreateDateGuess(c.UserContext(), userID, eventID, req.Date)
	if err != nil {
		return writeServiceError(c, err)
	}
	return created(c, guess.ID, models.KindDate)
}

func (h *GuessHandler) CreateHour(c *fiber.Ctx) error {
	eventID, userID, err := caller(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req dto.HourGuessRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	guess, err := h.guesses.CreateHourGuess(c.UserContext(), userID, eventID, req.Hour, req.AmPm)
	if err != nil {
		return writeServiceError(c, err)
	}
	return created(c, guess.ID, models.KindHour)
}

func (h *GuessHandler) CreateMinute(c *fiber.Ctx) error {
	eventID, userID, err := caller(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req dto.MinuteGuessRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	guess, err := h.guesses.CreateMinuteGuess(c.UserContext(), userID, eventID, req.Minute)
	if err != nil {
		return writeServiceError(c, err)
	}
	return created(c, guess.ID, models.KindMinute)
}

func (h *GuessHandler) CreateName(c *fiber.Ctx) error {
	eventID, userID, err := caller(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req dto.NameGuessRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	guess, err := h.guesses.CreateNameGuess(c.UserContext(), userID, eventID, req.Name)
	if err != nil {
		return writeServiceError(c, err)
	}
	return created(c, guess.ID, models.KindName)
}

// List returns a handler for the public listing of one guess kind.
func (h *GuessHandler) List(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		eventID, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		viewerID, _ := identity.GetUserID(c)
		views, err := h.guesses.ListGuesses(c.UserContext(), eventID, kind, viewerID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(views)
	}
}

func (h *GuessHandler) Delete(c *fiber.Ctx) error {
	eventID, userID, err := caller(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	guessID, err := paramID(c, "guess_id")
	if err != nil {
		return writeServiceError(c, err)
	}
	kind := c.Params("kind")
	if err := h.guesses.DeleteGuess(c.UserContext(), userID, eventID, kind, guessID); err != nil {
		return writeServiceError(c, err)
	}
	label := strings.ToUpper(kind[:1]) + kind[1:] + "Guess"
	return c.JSON(dto.MessageResponse{Message: label + " deleted successfully"})
}

func (h *GuessHandler) UserGuesses(c *fiber.Ctx) error {
	eventID, userID, err := caller(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp, err := h.guesses.UserGuesses(c.UserContext(), userID, eventID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(resp)
}

func (h *GuessHandler) DateWindow(c *fiber.Ctx) error {
	eventID, err := paramID(c, "id")
	if err != nil {
		return writeServiceError(c, err)
	}
	viewerID, _ := identity.GetUserID(c)
	resp, err := h.guesses.DateWindow(c.UserContext(), eventID, viewerID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(resp)
}
