package funding

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/carewallet/carewallet/internal/apierror"
	"github.com/carewallet/carewallet/internal/ledger"
	"github.com/carewallet/carewallet/internal/middleware"
	"github.com/carewallet/carewallet/internal/validation"
	"github.com/carewallet/carewallet/internal/wallet"
)

// Handler exposes the wallet recharge endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a funding handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Recharge adds money to the caller's wallet.
func (h *Handler) Recharge(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	var req RechargeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	reference := req.ReferenceID
	if reference == "" {
		reference = c.Get(middleware.IdempotencyKeyHeader)
	}

	result, err := h.service.Recharge(c.UserContext(), RechargeInput{
		UserID:        p.UserID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		ReferenceID:   reference,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrDuplicateTransaction):
			return c.Status(http.StatusOK).JSON(wallet.MutationResponse("Recharge already processed", result.Result, true))
		case errors.Is(err, ErrPaymentMethodRequired):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrRechargeDeclined):
			return fiber.NewError(http.StatusPaymentRequired, err.Error())
		default:
			return apierror.FromLedger(err)
		}
	}

	return c.Status(http.StatusOK).JSON(wallet.MutationResponse("Wallet recharged successfully", result.Result, false))
}
