package handlers

import (
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// GuestHandler serves the host's guest management and payment ledger.
type GuestHandler struct {
	guests   *services.GuestService
	payments *services.PaymentService
}

func NewGuestHandler(guests *services.GuestService, payments *services.PaymentService) *GuestHandler {
	return &GuestHandler{guests: guests, payments: payments}
}

func (h *GuestHandler) Add(c *fiber.Ctx) error {
	eventID, hostID, err := caller(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req dto.AddGuestRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if _, err := h.guests.AddGuest(c.UserContext(), hostID, eventID, req.Email); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Guest added successfully"})
}

func (h *GuestHandler) List(c *fiber.Ctx) error {
	eventID, hostID, err := caller(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	guests, err := h.guests.ListGuests(c.UserContext(), hostID, eventID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(guests)
}

func (h *GuestHandler) Detail(c *fiber.Ctx) error {
	eventID, hostID, err := caller(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	guestID, err := paramID(c, "uid")
	if err != nil {
		return writeServiceError(c, err)
	}
	detail, err := h.guests.GuestDetail(c.UserContext(), hostID, eventID, guestID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(detail)
}

func (h *GuestHandler) Payment(c *fiber.Ctx) error {
	eventID, hostID, err := caller(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	guestID, err := paramID(c, "uid")
	if err != nil {
		return writeServiceError(c, err)
	}
	var req dto.PaymentActionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	message, summary, err := h.payments.Apply(c.UserContext(), hostID, eventID, guestID, req.Action, req.Amount)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(dto.PaymentActionResponse{Message: message, Summary: summary})
}

func (h *GuestHandler) Remove(c *fiber.Ctx) error {
	eventID, hostID, err := caller(c)
	if err != nil {
		return writeServiceError(c, err)
	}
	guestID, err := paramID(c, "uid")
	if err != nil {
		return writeServiceError(c, err)
	}
	if err := h.guests.RemoveGuest(c.UserContext(), hostID, eventID, guestID); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Guest removed successfully"})
}
