package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"compas/internal/middleware"
	"compas/internal/models"
	"compas/internal/repositories"
	"compas/internal/services/enrollment"
	"compas/internal/utils"
	"compas/internal/validation"
)

type EnrollmentHandler struct {
	enrollmentService enrollment.Service
}

func NewEnrollmentHandler(enrollmentService enrollment.Service) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

func (h *EnrollmentHandler) Request(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}

	var input struct {
		CourseID uint `json:"course_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	e, err := h.enrollmentService.Request(c.Context(), claims.UserID, input.CourseID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrCourseNotFound):
			return utils.NotFound(c, "course not found")
		case errors.Is(err, enrollment.ErrCourseInactive),
			errors.Is(err, enrollment.ErrCourseFull):
			return utils.Conflict(c, err.Error())
		case errors.Is(err, enrollment.ErrAlreadyRequested):
			return utils.Conflict(c, err.Error())
		}
		log.Printf("enrollment request failed for user %d: %v", claims.UserID, err)
		return utils.InternalError(c, "could not create enrollment request")
	}
	return utils.Created(c, e)
}

func (h *EnrollmentHandler) Mine(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	list, err := h.enrollmentService.ListByStudent(c.Context(), claims.UserID)
	if err != nil {
		return utils.InternalError(c, "could not list enrollments")
	}
	return utils.Success(c, fiber.Map{"enrollments": list})
}

func (h *EnrollmentHandler) Cancel(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.BadRequest(c, "invalid enrollment id")
	}

	e, err := h.enrollmentService.Cancel(c.Context(), uint(id), claims.UserID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrEnrollmentNotFound):
			return utils.NotFound(c, "enrollment not found")
		case errors.Is(err, enrollment.ErrNotOwner):
			return utils.Forbidden(c, err.Error())
		case errors.Is(err, enrollment.ErrNotPending):
			return utils.Conflict(c, err.Error())
		}
		return utils.InternalError(c, "could not cancel enrollment")
	}
	return utils.Success(c, e)
}

// ListPending is the admin's approval queue.
func (h *EnrollmentHandler) ListPending(c *fiber.Ctx) error {
	p := utils.GetPagination(c)
	status := c.Query("status", models.EnrollmentPending)

	list, total, err := h.enrollmentService.ListByStatus(c.Context(), status, p.Offset, p.Limit)
	if err != nil {
		return utils.InternalError(c, "could not list enrollments")
	}
	return utils.Success(c, utils.NewPaginated(list, total, p))
}

func (h *EnrollmentHandler) Approve(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.BadRequest(c, "invalid enrollment id")
	}

	e, err := h.enrollmentService.Approve(c.Context(), uint(id), claims.UserID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrEnrollmentNotFound):
			return utils.NotFound(c, "enrollment not found")
		case errors.Is(err, enrollment.ErrNotPending):
			return utils.Conflict(c, err.Error())
		case errors.Is(err, enrollment.ErrCourseFull):
			return utils.Conflict(c, err.Error())
		}
		log.Printf("enrollment approval failed: %v", err)
		return utils.InternalError(c, "could not approve enrollment")
	}
	return utils.Success(c, e)
}

func (h *EnrollmentHandler) Reject(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.BadRequest(c, "invalid enrollment id")
	}

	var input struct {
		Note string `json:"note"`
	}
	_ = c.BodyParser(&input)

	e, err := h.enrollmentService.Reject(c.Context(), uint(id), claims.UserID, input.Note, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrEnrollmentNotFound):
			return utils.NotFound(c, "enrollment not found")
		case errors.Is(err, enrollment.ErrNotPending):
			return utils.Conflict(c, err.Error())
		}
		return utils.InternalError(c, "could not reject enrollment")
	}
	return utils.Success(c, e)
}
