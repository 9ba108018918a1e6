package ledger

import (
	"context"
	"errors"

	"github.com/carewallet/carewallet/internal/metrics"
)

type instrumented struct {
	Ledger
}

// Instrumented wraps l so every Append is counted by kind and outcome.
func Instrumented(l Ledger) Ledger {
	return instrumented{Ledger: l}
}

func (i instrumented) EnsureWallet(ctx context.Context, userID, currency string) (Wallet, bool, error) {
	w, created, err := i.Ledger.EnsureWallet(ctx, userID, currency)
	if err == nil && created {
		metrics.RecordWalletProvisioned()
	}
	return w, created, err
}

func (i instrumented) Append(ctx context.Context, entry Entry) (Result, error) {
	res, err := i.Ledger.Append(ctx, entry)
	kind := string(entry.Kind)
	switch {
	case err == nil:
		metrics.RecordTransaction(kind, metrics.OutcomeApplied, res.Transaction.Amount.InexactFloat64())
	case errors.Is(err, ErrDuplicateTransaction):
		metrics.RecordTransaction(kind, metrics.OutcomeDuplicate, 0)
	case errors.Is(err, ErrStorage):
		metrics.RecordTransaction(kind, metrics.OutcomeFailed, 0)
	default:
		metrics.RecordTransaction(kind, metrics.OutcomeRejected, 0)
	}
	return res, err
}
