package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"compas/internal/middleware"
	"compas/internal/models"
	"compas/internal/repositories"
	"compas/internal/services/attendance"
	"compas/internal/utils"
	"compas/internal/validation"
)

type AttendanceHandler struct {
	attendanceService attendance.Service
}

func NewAttendanceHandler(attendanceService attendance.Service) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

func (h *AttendanceHandler) CheckIn(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}

	var input struct {
		CourseID  uint   `json:"course_id" validate:"required"`
		StudentID uint   `json:"student_id" validate:"required"`
		ClassDate string `json:"class_date" validate:"required"`
		Mark      string `json:"mark" validate:"required,oneof=present absent excused"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	classDate, err := time.Parse("2006-01-02", input.ClassDate)
	if err != nil {
		return utils.BadRequest(c, "invalid class date, expected YYYY-MM-DD")
	}

	isAdmin := claims.Role == models.RoleAdmin
	err = h.attendanceService.CheckIn(c.Context(), input.CourseID, input.StudentID,
		claims.UserID, isAdmin, classDate, input.Mark)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrCourseNotFound):
			return utils.NotFound(c, "course not found")
		case errors.Is(err, attendance.ErrNotInstructing):
			return utils.Forbidden(c, err.Error())
		case errors.Is(err, attendance.ErrInvalidMark):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, repositories.ErrAttendanceExists):
			return utils.Conflict(c, "attendance already recorded for this class")
		}
		return utils.InternalError(c, "could not record attendance")
	}
	return utils.Created(c, fiber.Map{"message": "attendance recorded"})
}

func (h *AttendanceHandler) ListByCourse(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return utils.BadRequest(c, "invalid course id")
	}
	classDate, err := parseDateQuery(c, "date", time.Now())
	if err != nil {
		return utils.BadRequest(c, "invalid date, expected YYYY-MM-DD")
	}

	list, err := h.attendanceService.ListByCourse(c.Context(), uint(courseID), classDate)
	if err != nil {
		return utils.InternalError(c, "could not list attendance")
	}
	return utils.Success(c, fiber.Map{"attendance": list})
}

// MyAttendance returns the logged-in student's history, defaulting to
// the last three months.
func (h *AttendanceHandler) MyAttendance(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}

	now := time.Now()
	from, err := parseDateQuery(c, "from", now.AddDate(0, -3, 0))
	if err != nil {
		return utils.BadRequest(c, "invalid from date, expected YYYY-MM-DD")
	}
	to, err := parseDateQuery(c, "to", now)
	if err != nil {
		return utils.BadRequest(c, "invalid to date, expected YYYY-MM-DD")
	}

	list, err := h.attendanceService.ListByStudent(c.Context(), claims.UserID, from, to)
	if err != nil {
		return utils.InternalError(c, "could not list attendance")
	}
	return utils.Success(c, fiber.Map{"attendance": list})
}
