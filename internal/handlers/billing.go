package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"compas/internal/middleware"
	"compas/internal/models"
	"compas/internal/services/billing"
	"compas/internal/utils"
	"compas/internal/validation"
)

type BillingHandler struct {
	billingService billing.Service
}

func NewBillingHandler(billingService billing.Service) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// QuoteEnrollment prices adding ?courses=N courses for the logged-in
// student without committing anything.
func (h *BillingHandler) QuoteEnrollment(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}

	courses := c.QueryInt("courses", 1)
	quote, err := h.billingService.QuoteEnrollment(c.Context(), claims.UserID, courses, time.Now())
	if err != nil {
		if errors.Is(err, billing.ErrNoCoursesSelected) {
			return utils.BadRequest(c, err.Error())
		}
		log.Printf("enrollment quote failed for user %d: %v", claims.UserID, err)
		return utils.InternalError(c, "could not compute quote")
	}
	return utils.Success(c, quote)
}

// QuoteRenewal prices the logged-in student's next monthly payment,
// penalty included if they are past grace.
func (h *BillingHandler) QuoteRenewal(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}

	quote, err := h.billingService.QuoteRenewal(c.Context(), claims.UserID, time.Now())
	if err != nil {
		if errors.Is(err, billing.ErrNoMembership) {
			return utils.NotFound(c, "no membership to renew")
		}
		log.Printf("renewal quote failed for user %d: %v", claims.UserID, err)
		return utils.InternalError(c, "could not compute quote")
	}
	return utils.Success(c, quote)
}

func (h *BillingHandler) ListTariffs(c *fiber.Ctx) error {
	entries, err := h.billingService.Tariffs(c.Context())
	if err != nil {
		return utils.InternalError(c, "could not load tariffs")
	}
	return utils.Success(c, fiber.Map{"tariffs": entries})
}

func (h *BillingHandler) UpsertTariff(c *fiber.Ctx) error {
	var input struct {
		Kind       string `json:"kind" validate:"required"`
		NumCourses int    `json:"num_courses"`
		Fare       int64  `json:"fare"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	entry := &models.TariffEntry{
		Kind:       input.Kind,
		NumCourses: input.NumCourses,
		Fare:       input.Fare,
	}
	if err := h.billingService.UpsertTariff(c.Context(), entry); err != nil {
		if errors.Is(err, billing.ErrInvalidTariff) {
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalError(c, "could not save tariff")
	}
	return utils.Created(c, entry)
}

func (h *BillingHandler) DeleteTariff(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.BadRequest(c, "invalid tariff id")
	}
	if err := h.billingService.DeleteTariff(c.Context(), uint(id)); err != nil {
		return utils.InternalError(c, "could not delete tariff")
	}
	return utils.Success(c, fiber.Map{"message": "tariff deleted"})
}
