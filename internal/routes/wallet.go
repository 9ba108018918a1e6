package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carewallet/carewallet/internal/access"
	"github.com/carewallet/carewallet/internal/middleware"
	"github.com/carewallet/carewallet/internal/wallet"
)

// RegisterWalletRoutes wires wallet read endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	view := middleware.RequireCapability(access.WalletView)
	r.Get("/wallet", view, h.Me)
	r.Get("/wallet/transactions", view, h.Transactions)
	r.Get("/admin/wallets/:userId/transactions", middleware.RequireCapability(access.FinanceOverview), h.UserTransactions)
}
