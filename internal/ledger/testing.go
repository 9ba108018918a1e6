package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fund is a test helper that provisions the user's wallet if needed and
// recharges it with amount, keeping the balance consistent with the log.
func Fund(ctx context.Context, l Ledger, userID string, amount string) (Result, error) {
	if _, _, err := l.EnsureWallet(ctx, userID, "USD"); err != nil {
		return Result{}, err
	}
	return l.Append(ctx, Entry{
		UserID:      userID,
		Kind:        KindRecharge,
		Amount:      decimal.RequireFromString(amount),
		Description: "test funding",
		ReferenceID: "seed-" + uuid.NewString(),
	})
}
