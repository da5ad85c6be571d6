package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"compas/internal/models"
	"compas/internal/repositories"
	"compas/internal/services/course"
	"compas/internal/utils"
	"compas/internal/validation"
)

type CourseHandler struct {
	courseService course.Service
}

func NewCourseHandler(courseService course.Service) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

type courseInput struct {
	Name         string `json:"name" validate:"required"`
	Style        string `json:"style" validate:"required"`
	Description  string `json:"description"`
	InstructorID uint   `json:"instructor_id" validate:"required"`
	Weekday      int    `json:"weekday" validate:"min=0,max=6"`
	StartTime    string `json:"start_time" validate:"required"`
	DurationMin  int    `json:"duration_min" validate:"required,min=15"`
	Capacity     int    `json:"capacity" validate:"min=0"`
}

func (h *CourseHandler) Create(c *fiber.Ctx) error {
	var input courseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	m := &models.Course{
		Name:         input.Name,
		Style:        input.Style,
		Description:  input.Description,
		InstructorID: input.InstructorID,
		Weekday:      input.Weekday,
		StartTime:    input.StartTime,
		DurationMin:  input.DurationMin,
		Capacity:     input.Capacity,
	}
	if err := h.courseService.Create(c.Context(), m); err != nil {
		if errors.Is(err, course.ErrInvalidSchedule) {
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalError(c, "could not create course")
	}
	return utils.Created(c, m)
}

func (h *CourseHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.BadRequest(c, "invalid course id")
	}

	existing, err := h.courseService.GetByID(c.Context(), uint(id))
	if err != nil {
		return utils.NotFound(c, "course not found")
	}

	var input courseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	existing.Name = input.Name
	existing.Style = input.Style
	existing.Description = input.Description
	existing.InstructorID = input.InstructorID
	existing.Weekday = input.Weekday
	existing.StartTime = input.StartTime
	existing.DurationMin = input.DurationMin
	existing.Capacity = input.Capacity

	if err := h.courseService.Update(c.Context(), existing); err != nil {
		if errors.Is(err, course.ErrInvalidSchedule) {
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalError(c, "could not update course")
	}
	return utils.Success(c, existing)
}

func (h *CourseHandler) Deactivate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.BadRequest(c, "invalid course id")
	}
	if err := h.courseService.Deactivate(c.Context(), uint(id)); err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return utils.NotFound(c, "course not found")
		}
		return utils.InternalError(c, "could not deactivate course")
	}
	return utils.Success(c, fiber.Map{"message": "course deactivated"})
}

func (h *CourseHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.BadRequest(c, "invalid course id")
	}
	m, err := h.courseService.GetByID(c.Context(), uint(id))
	if err != nil {
		return utils.NotFound(c, "course not found")
	}
	return utils.Success(c, m)
}

func (h *CourseHandler) List(c *fiber.Ctx) error {
	p := utils.GetPagination(c)
	activeOnly := c.QueryBool("active", true)

	list, total, err := h.courseService.List(c.Context(), activeOnly, p.Offset, p.Limit)
	if err != nil {
		return utils.InternalError(c, "could not list courses")
	}
	return utils.Success(c, utils.NewPaginated(list, total, p))
}
