package wallet

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/carewallet/carewallet/internal/apierror"
	"github.com/carewallet/carewallet/internal/ledger"
	"github.com/carewallet/carewallet/internal/middleware"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Me returns the caller's wallet, balance and summary.
func (h *Handler) Me(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	ov, err := h.service.Overview(c.UserContext(), p.UserID)
	if err != nil {
		return apierror.FromLedger(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"wallet": walletView{
			ID:        ov.Wallet.ID,
			UserID:    ov.Wallet.UserID,
			Currency:  ov.Wallet.Currency,
			CreatedAt: ov.Wallet.CreatedAt,
		},
		"balance": ledger.Format(ov.Wallet.Balance),
		"summary": NewSummaryView(ov.Totals),
	})
}

// Transactions lists the caller's transactions.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	return h.history(c, p.UserID)
}

// UserTransactions lists the transactions of the wallet owned by :userId.
func (h *Handler) UserTransactions(c *fiber.Ctx) error {
	return h.history(c, c.Params("userId"))
}

func (h *Handler) history(c *fiber.Ctx, userID string) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}
	txs, page, err := h.service.History(c.UserContext(), userID, limit, offset)
	if err != nil {
		return apierror.FromLedger(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":      true,
		"user_id":      userID,
		"transactions": NewTransactionViews(txs),
		"limit":        page.Limit,
		"offset":       page.Offset,
	})
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(c *fiber.Ctx, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fiber.NewError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return n, nil
}
