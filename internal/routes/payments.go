package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carewallet/carewallet/internal/access"
	"github.com/carewallet/carewallet/internal/middleware"
	"github.com/carewallet/carewallet/internal/payments"
)

// RegisterPaymentRoutes wires payment and refund endpoints.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler) {
	r.Post("/wallet/payment", middleware.RequireCapability(access.WalletPay), h.Pay)
	r.Post("/admin/wallets/:userId/refund", middleware.RequireCapability(access.WalletRefund), h.Refund)
}
