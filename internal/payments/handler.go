package payments

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/carewallet/carewallet/internal/apierror"
	"github.com/carewallet/carewallet/internal/ledger"
	"github.com/carewallet/carewallet/internal/middleware"
	"github.com/carewallet/carewallet/internal/validation"
	"github.com/carewallet/carewallet/internal/wallet"
)

// Handler exposes payment endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type paymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description" validate:"omitempty,max=255"`
	AppointmentID string          `json:"appointmentId" validate:"omitempty,max=100"`
}

type refundRequest struct {
	Amount                decimal.Decimal `json:"amount"`
	Description           string          `json:"description" validate:"omitempty,max=255"`
	OriginalTransactionID string          `json:"originalTransactionId" validate:"required,max=100"`
}

// Pay debits the caller's wallet for a healthcare service.
func (h *Handler) Pay(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Pay(c.UserContext(), PaymentInput{
		UserID:         p.UserID,
		Amount:         req.Amount,
		Description:    req.Description,
		AppointmentID:  req.AppointmentID,
		IdempotencyKey: c.Get(middleware.IdempotencyKeyHeader),
	})
	if errors.Is(err, ledger.ErrDuplicateTransaction) {
		return c.Status(http.StatusOK).JSON(wallet.MutationResponse("Payment already processed", res, true))
	}
	if err != nil {
		return apierror.FromLedger(err)
	}
	return c.Status(http.StatusOK).JSON(wallet.MutationResponse("Payment processed successfully", res, false))
}

// Refund credits the wallet of :userId against one of its payments.
func (h *Handler) Refund(c *fiber.Ctx) error {
	var req refundRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Refund(c.UserContext(), RefundInput{
		UserID:                c.Params("userId"),
		Amount:                req.Amount,
		Description:           req.Description,
		OriginalTransactionID: req.OriginalTransactionID,
		IdempotencyKey:        c.Get(middleware.IdempotencyKeyHeader),
	})
	switch {
	case errors.Is(err, ledger.ErrDuplicateTransaction):
		return c.Status(http.StatusOK).JSON(wallet.MutationResponse("Refund already processed", res, true))
	case errors.Is(err, ErrOriginalRequired):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case err != nil:
		return apierror.FromLedger(err)
	}
	return c.Status(http.StatusOK).JSON(wallet.MutationResponse("Refund processed successfully", res, false))
}
