package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carewallet/carewallet/internal/access"
	"github.com/carewallet/carewallet/internal/middleware"
	"github.com/carewallet/carewallet/internal/reports"
)

// RegisterReportRoutes wires the administrative financial overview.
func RegisterReportRoutes(r fiber.Router, h *reports.Handler) {
	r.Get("/admin/financial", middleware.RequireCapability(access.FinanceOverview), h.Financial)
}
