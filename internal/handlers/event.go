package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"compas/internal/middleware"
	"compas/internal/models"
	"compas/internal/repositories"
	"compas/internal/services/event"
	"compas/internal/utils"
	"compas/internal/validation"
)

type EventHandler struct {
	eventService event.Service
}

func NewEventHandler(eventService event.Service) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type eventInput struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	Capacity    int       `json:"capacity" validate:"min=0"`
	Published   bool      `json:"published"`
}

func (h *EventHandler) Create(c *fiber.Ctx) error {
	var input eventInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	e := &models.Event{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		StartsAt:    input.StartsAt,
		Capacity:    input.Capacity,
		Published:   input.Published,
	}
	if err := h.eventService.Create(c.Context(), e); err != nil {
		if errors.Is(err, event.ErrInvalidEvent) {
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalError(c, "could not create event")
	}
	return utils.Created(c, e)
}

func (h *EventHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.BadRequest(c, "invalid event id")
	}

	existing, err := h.eventService.GetByID(c.Context(), uint(id))
	if err != nil {
		return utils.NotFound(c, "event not found")
	}

	var input eventInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.Location = input.Location
	existing.StartsAt = input.StartsAt
	existing.Capacity = input.Capacity
	existing.Published = input.Published

	if err := h.eventService.Update(c.Context(), existing); err != nil {
		if errors.Is(err, event.ErrInvalidEvent) {
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalError(c, "could not update event")
	}
	return utils.Success(c, existing)
}

func (h *EventHandler) Publish(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.BadRequest(c, "invalid event id")
	}
	if err := h.eventService.Publish(c.Context(), uint(id)); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return utils.NotFound(c, "event not found")
		}
		return utils.InternalError(c, "could not publish event")
	}
	return utils.Success(c, fiber.Map{"message": "event published"})
}

func (h *EventHandler) ListUpcoming(c *fiber.Ctx) error {
	claims, _ := middleware.Claims(c)
	includeUnpublished := claims != nil && claims.Role == models.RoleAdmin

	list, err := h.eventService.ListUpcoming(c.Context(), time.Now(), includeUnpublished)
	if err != nil {
		return utils.InternalError(c, "could not list events")
	}
	return utils.Success(c, fiber.Map{"events": list})
}

func (h *EventHandler) Register(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.BadRequest(c, "invalid event id")
	}

	err = h.eventService.Register(c.Context(), uint(id), claims.UserID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrEventNotFound):
			return utils.NotFound(c, "event not found")
		case errors.Is(err, event.ErrEventFull),
			errors.Is(err, event.ErrEventStarted),
			errors.Is(err, repositories.ErrAlreadyRegistered):
			return utils.Conflict(c, err.Error())
		}
		return utils.InternalError(c, "could not register for event")
	}
	return utils.Created(c, fiber.Map{"message": "registered"})
}

func (h *EventHandler) Unregister(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.BadRequest(c, "invalid event id")
	}

	if err := h.eventService.Unregister(c.Context(), uint(id), claims.UserID); err != nil {
		return utils.InternalError(c, "could not unregister")
	}
	return utils.Success(c, fiber.Map{"message": "unregistered"})
}

func (h *EventHandler) MyRegistrations(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	list, err := h.eventService.MyRegistrations(c.Context(), claims.UserID)
	if err != nil {
		return utils.InternalError(c, "could not list registrations")
	}
	return utils.Success(c, fiber.Map{"registrations": list})
}
