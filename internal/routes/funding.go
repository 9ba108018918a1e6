package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carewallet/carewallet/internal/access"
	"github.com/carewallet/carewallet/internal/funding"
	"github.com/carewallet/carewallet/internal/middleware"
)

// RegisterFundingRoutes wires wallet recharge.
func RegisterFundingRoutes(r fiber.Router, h *funding.Handler) {
	r.Post("/wallet/recharge", middleware.RequireCapability(access.WalletRecharge), h.Recharge)
}
