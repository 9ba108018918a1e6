package reports

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/carewallet/carewallet/internal/apierror"
	"github.com/carewallet/carewallet/internal/ledger"
	"github.com/carewallet/carewallet/internal/wallet"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Financial serves GET /admin/financial.
func (h *Handler) Financial(c *fiber.Ctx) error {
	limit := DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return fiber.NewError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	ov, err := h.service.Financial(c.UserContext(), limit)
	if err != nil {
		return apierror.FromLedger(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"totals": fiber.Map{
			"recharges":         ledger.Format(ov.Totals.Recharged),
			"revenue":           ledger.Format(ov.Totals.Paid),
			"refunds":           ledger.Format(ov.Totals.Refunded),
			"net_revenue":       ledger.Format(ov.Totals.Paid.Sub(ov.Totals.Refunded)),
			"transaction_count": ov.Totals.Count,
		},
		"recent_transactions": wallet.NewTransactionViews(ov.Recent),
		"generated_at":        ov.GeneratedAt,
	})
}
