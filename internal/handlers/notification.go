package handlers

import (
	"github.com/gofiber/fiber/v2"

	"compas/internal/middleware"
	"compas/internal/services/notification"
	"compas/internal/utils"
	"compas/internal/validation"
)

type NotificationHandler struct {
	notificationService notification.Service
}

func NewNotificationHandler(notificationService notification.Service) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	p := utils.GetPagination(c)
	unreadOnly := c.QueryBool("unread", false)

	list, total, err := h.notificationService.ListForUser(c.Context(), claims.UserID, unreadOnly, p.Offset, p.Limit)
	if err != nil {
		return utils.InternalError(c, "could not list notifications")
	}
	return utils.Success(c, utils.NewPaginated(list, total, p))
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.BadRequest(c, "invalid notification id")
	}

	if err := h.notificationService.MarkRead(c.Context(), uint(id), claims.UserID); err != nil {
		return utils.NotFound(c, "notification not found")
	}
	return utils.Success(c, fiber.Map{"message": "marked read"})
}

func (h *NotificationHandler) RegisterPushToken(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}

	var input struct {
		Token    string `json:"token" validate:"required"`
		Platform string `json:"platform" validate:"required,oneof=ios android"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	err := h.notificationService.RegisterPushToken(c.Context(), claims.UserID, input.Token, input.Platform)
	if err != nil {
		return utils.InternalError(c, "could not register push token")
	}
	return utils.Created(c, fiber.Map{"message": "push token registered"})
}
