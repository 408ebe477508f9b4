package handlers

import (
	"io"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type EventHandler struct {
	events  *services.EventService
	uploads *services.UploadService
}

func NewEventHandler(events *services.EventService, uploads *services.UploadService) *EventHandler {
	return &EventHandler{events: events, uploads: uploads}
}

func (h *EventHandler) List(c *fiber.Ctx) error {
	user := identity.CurrentUser(c)
	events, err := h.events.ListForUser(c.UserContext(), user)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(services.EventBriefs(events))
}

func (h *EventHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	event, err := h.events.Create(c.UserContext(), identity.CurrentUser(c), &req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreateEventResponse{
		ID:        event.ID,
		EventCode: event.EventCode,
		Message:   "Event created successfully",
	})
}

// Get is public; the response depends on who is asking.
func (h *EventHandler) Get(c *fiber.Ctx) error {
	eventID, err := paramID(c, "id")
	if err != nil {
		return writeServiceError(c, err)
	}
	view, err := h.events.View(c.UserContext(), eventID, identity.CurrentUser(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(view)
}

func (h *EventHandler) Update(c *fiber.Ctx) error {
	eventID, err := paramID(c, "id")
	if err != nil {
		return writeServiceError(c, err)
	}
	var req dto.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	userID, _ := identity.GetUserID(c)
	if _, err := h.events.Update(c.UserContext(), userID, eventID, &req); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Event updated successfully"})
}

func (h *EventHandler) Delete(c *fiber.Ctx) error {
	eventID, err := paramID(c, "id")
	if err != nil {
		return writeServiceError(c, err)
	}
	userID, _ := identity.GetUserID(c)
	if err := h.events.Delete(c.UserContext(), userID, eventID); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Event deleted successfully"})
}

func (h *EventHandler) ByCode(c *fiber.Ctx) error {
	event, err := h.events.FindByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(dto.EventByCodeResponse{
		ID:         event.ID,
		Title:      event.Title,
		MotherName: event.MotherName,
		EventDate:  services.FormatDate(event.EventDate),
		DueDate:    services.FormatDate(event.DueDate),
		Host:       event.Host.FullName(),
	})
}

func (h *EventHandler) FindByMother(c *fiber.Ctx) error {
	events, err := h.events.SearchByMother(c.UserContext(), c.Query("name"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(services.EventBriefs(events))
}

// UploadImage stores the multipart "image" field as the event picture.
func (h *EventHandler) UploadImage(c *fiber.Ctx) error {
	eventID, err := paramID(c, "id")
	if err != nil {
		return writeServiceError(c, err)
	}
	userID, _ := identity.GetUserID(c)
	ctx := c.UserContext()
	if err := h.events.CheckHost(ctx, userID, eventID); err != nil {
		return writeServiceError(c, err)
	}

	header, err := c.FormFile("image")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "No file part")
	}
	if header.Size > h.uploads.MaxBytes() {
		return writeServiceError(c, services.ErrFileTooLarge)
	}
	file, err := header.Open()
	if err != nil {
		return writeServiceError(c, err)
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, h.uploads.MaxBytes()+1))
	if err != nil {
		return writeServiceError(c, err)
	}

	stored, err := h.uploads.SaveImage(header.Filename, content)
	if err != nil {
		return writeServiceError(c, err)
	}
	if err := h.events.SetImage(ctx, userID, eventID, stored.Path); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(dto.ImageUploadResponse{
		Message:       "Image uploaded successfully",
		ImagePath:     stored.Path,
		ThumbnailPath: stored.ThumbnailPath,
	})
}
