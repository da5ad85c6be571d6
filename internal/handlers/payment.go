package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"compas/internal/middleware"
	"compas/internal/services/billing"
	"compas/internal/services/payment"
	"compas/internal/utils"
	"compas/internal/validation"
)

type PaymentHandler struct {
	paymentService payment.Service
	billingService billing.Service
}

func NewPaymentHandler(paymentService payment.Service, billingService billing.Service) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, billingService: billingService}
}

type payInput struct {
	Method    string `json:"method" validate:"required,oneof=cash card"`
	CardToken string `json:"card_token"`
}

// PayRenewal settles the logged-in student's monthly payment.
func (h *PaymentHandler) PayRenewal(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}

	var input payInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	p, err := h.paymentService.PayRenewal(c.Context(), claims.UserID, input.Method, input.CardToken, time.Now())
	if err != nil {
		return h.payError(c, claims.UserID, err)
	}
	return utils.Created(c, p)
}

// PayEnrollment quotes and settles an enrollment charge in one request,
// for ?courses=N additional courses.
func (h *PaymentHandler) PayEnrollment(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}

	var input payInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	now := time.Now()
	courses := c.QueryInt("courses", 1)
	quote, err := h.billingService.QuoteEnrollment(c.Context(), claims.UserID, courses, now)
	if err != nil {
		if errors.Is(err, billing.ErrNoCoursesSelected) {
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalError(c, "could not compute quote")
	}

	p, err := h.paymentService.Settle(c.Context(), quote, input.Method, input.CardToken, now)
	if err != nil {
		return h.payError(c, claims.UserID, err)
	}
	return utils.Created(c, p)
}

func (h *PaymentHandler) MyPayments(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	p := utils.GetPagination(c)
	list, total, err := h.paymentService.HistoryForStudent(c.Context(), claims.UserID, p.Offset, p.Limit)
	if err != nil {
		return utils.InternalError(c, "could not list payments")
	}
	return utils.Success(c, utils.NewPaginated(list, total, p))
}

func (h *PaymentHandler) GetReceipt(c *fiber.Ctx) error {
	receipt := c.Params("receipt")
	p, err := h.paymentService.GetByReceipt(c.Context(), receipt)
	if err != nil {
		return utils.NotFound(c, "receipt not found")
	}
	return utils.Success(c, p)
}

// List is the admin view over a date range, defaulting to the current
// month.
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	from, err := parseDateQuery(c, "from", monthStart)
	if err != nil {
		return utils.BadRequest(c, "invalid from date, expected YYYY-MM-DD")
	}
	to, err := parseDateQuery(c, "to", monthStart.AddDate(0, 1, 0))
	if err != nil {
		return utils.BadRequest(c, "invalid to date, expected YYYY-MM-DD")
	}

	p := utils.GetPagination(c)
	list, total, err := h.paymentService.List(c.Context(), from, to, p.Offset, p.Limit)
	if err != nil {
		return utils.InternalError(c, "could not list payments")
	}
	return utils.Success(c, utils.NewPaginated(list, total, p))
}

func (h *PaymentHandler) payError(c *fiber.Ctx, userID uint, err error) error {
	switch {
	case errors.Is(err, billing.ErrNoMembership):
		return utils.NotFound(c, "no membership to renew")
	case errors.Is(err, payment.ErrUnsupportedMethod),
		errors.Is(err, payment.ErrCardTokenRequired):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, payment.ErrChargeFailed):
		return utils.Error(c, fiber.StatusPaymentRequired, "card charge was declined")
	}
	log.Printf("payment failed for user %d: %v", userID, err)
	return utils.InternalError(c, "payment failed")
}

func parseDateQuery(c *fiber.Ctx, name string, fallback time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", raw)
}
