package wallet

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/carewallet/carewallet/internal/ledger"
)

// TransactionView is the JSON shape of a ledger transaction. Amounts are
// rendered as fixed two-decimal strings.
type TransactionView struct {
	ID                    string    `json:"id"`
	WalletID              string    `json:"wallet_id"`
	UserID                string    `json:"user_id"`
	Type                  string    `json:"type"`
	Amount                string    `json:"amount"`
	Description           string    `json:"description"`
	ReferenceID           string    `json:"reference_id,omitempty"`
	OriginalTransactionID string    `json:"original_transaction_id,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

func NewTransactionView(tx ledger.Transaction) TransactionView {
	return TransactionView{
		ID:                    tx.ID,
		WalletID:              tx.WalletID,
		UserID:                tx.UserID,
		Type:                  string(tx.Kind),
		Amount:                ledger.Format(tx.Amount),
		Description:           tx.Description,
		ReferenceID:           tx.ReferenceID,
		OriginalTransactionID: tx.OriginalTransactionID,
		CreatedAt:             tx.CreatedAt,
	}
}

func NewTransactionViews(txs []ledger.Transaction) []TransactionView {
	out := make([]TransactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, NewTransactionView(tx))
	}
	return out
}

type walletView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// SummaryView renders ledger totals.
type SummaryView struct {
	TotalRecharged   string `json:"total_recharged"`
	TotalPaid        string `json:"total_paid"`
	TotalRefunded    string `json:"total_refunded"`
	Net              string `json:"net"`
	TransactionCount int64  `json:"transaction_count"`
}

func NewSummaryView(t ledger.Totals) SummaryView {
	return SummaryView{
		TotalRecharged:   ledger.Format(t.Recharged),
		TotalPaid:        ledger.Format(t.Paid),
		TotalRefunded:    ledger.Format(t.Refunded),
		Net:              ledger.Format(t.Net()),
		TransactionCount: t.Count,
	}
}

// MutationResponse is the body returned by recharge, payment and refund.
func MutationResponse(message string, res ledger.Result, duplicate bool) fiber.Map {
	body := fiber.Map{
		"success":     true,
		"message":     message,
		"transaction": NewTransactionView(res.Transaction),
		"balance":     ledger.Format(res.Balance),
	}
	if duplicate {
		body["duplicate"] = true
	}
	return body
}
