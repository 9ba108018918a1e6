// Package apierror maps domain failures onto HTTP responses.
package apierror

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/carewallet/carewallet/internal/access"
	"github.com/carewallet/carewallet/internal/identity"
	"github.com/carewallet/carewallet/internal/ledger"
)

const internalMessage = "internal server error"

// FromLedger converts a ledger or identity error into a *fiber.Error. Storage
// and unknown failures never leak their details to the client.
func FromLedger(err error) error {
	if err == nil {
		return nil
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	switch {
	case errors.Is(err, ledger.ErrStorage):
		return fiber.NewError(http.StatusInternalServerError, internalMessage)
	case errors.Is(err, ledger.ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return fiber.NewError(http.StatusBadRequest, ledger.ErrInsufficientBalance.Error())
	case errors.Is(err, ledger.ErrWalletNotFound):
		return fiber.NewError(http.StatusNotFound, ledger.ErrWalletNotFound.Error())
	case errors.Is(err, ledger.ErrOriginalNotFound):
		return fiber.NewError(http.StatusNotFound, ledger.ErrOriginalNotFound.Error())
	case errors.Is(err, ledger.ErrRefundExceedsPayment):
		return fiber.NewError(http.StatusConflict, ledger.ErrRefundExceedsPayment.Error())
	case errors.Is(err, identity.ErrUserNotFound):
		return fiber.NewError(http.StatusNotFound, identity.ErrUserNotFound.Error())
	case errors.Is(err, access.ErrForbidden):
		return fiber.NewError(http.StatusForbidden, access.ErrForbidden.Error())
	}
	return fiber.NewError(http.StatusInternalServerError, internalMessage)
}

// Handler renders every error returned by a route as
// {"success": false, "error": "..."}.
func Handler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			logger.Error("unhandled error", slog.String("path", c.Path()), slog.Any("error", err))
			fe = fiber.NewError(http.StatusInternalServerError, internalMessage)
		}
		return c.Status(fe.Code).JSON(fiber.Map{"success": false, "error": fe.Message})
	}
}
