package funding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carewallet/carewallet/internal/ledger"
	"github.com/carewallet/carewallet/internal/notification"
)

// Service records wallet recharges after the acquirer has approved them.
type Service struct {
	ledger   ledger.Ledger
	acquirer Acquirer
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService prepares a funding service. A nil acquirer approves everything.
func NewService(ledgerBackend ledger.Ledger, acquirer Acquirer, notifier notification.Notifier, logger *slog.Logger) *Service {
	if acquirer == nil {
		acquirer = StaticAcquirer{}
	}
	return &Service{ledger: ledgerBackend, acquirer: acquirer, notifier: notifier, logger: logger}
}

// RechargeInput captures the data required for a wallet recharge.
type RechargeInput struct {
	UserID        string
	Amount        decimal.Decimal
	PaymentMethod string
	// ReferenceID is the caller's external reference or idempotency key.
	ReferenceID string
}

// RechargeResult represents the domain outcome of a recharge.
type RechargeResult struct {
	ledger.Result
	AcquirerReference string
}

// Recharge authorizes and records money added to the user's wallet. A repeated
// reference returns the original transaction together with
// ledger.ErrDuplicateTransaction.
func (s *Service) Recharge(ctx context.Context, input RechargeInput) (RechargeResult, error) {
	if err := ledger.ValidateAmount(input.Amount); err != nil {
		return RechargeResult{}, err
	}
	method := strings.TrimSpace(input.PaymentMethod)
	if method == "" {
		return RechargeResult{}, ErrPaymentMethodRequired
	}
	w, err := s.ledger.Wallet(ctx, input.UserID)
	if err != nil {
		return RechargeResult{}, err
	}

	// A retried reference must not reach the acquirer a second time.
	reference := strings.TrimSpace(input.ReferenceID)
	if reference != "" {
		existing, err := s.ledger.FindByReference(ctx, input.UserID, ledger.KindRecharge, reference)
		switch {
		case err == nil:
			return RechargeResult{Result: ledger.Result{Transaction: existing, Balance: w.Balance}}, ledger.ErrDuplicateTransaction
		case !errors.Is(err, ledger.ErrTransactionNotFound):
			return RechargeResult{}, err
		}
	} else {
		reference = "REF-" + uuid.NewString()
	}

	decision, err := s.acquirer.Authorize(ctx, Authorization{
		UserID:        input.UserID,
		PaymentMethod: method,
		Amount:        input.Amount,
	})
	if err != nil {
		return RechargeResult{}, err
	}
	if decision.Status != statusApproved {
		return RechargeResult{}, ErrRechargeDeclined
	}

	res, err := s.ledger.Append(ctx, ledger.Entry{
		UserID:      input.UserID,
		Kind:        ledger.KindRecharge,
		Amount:      input.Amount,
		Description: "Wallet recharge via " + method,
		ReferenceID: reference,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateTransaction) {
			return RechargeResult{Result: res, AcquirerReference: decision.Reference}, err
		}
		return RechargeResult{}, err
	}

	notification.Deliver(ctx, s.notifier, s.logger, notification.Message{
		Kind:        notification.KindWalletRecharged,
		Destination: input.UserID,
		Body:        fmt.Sprintf("Your wallet was recharged with %s. New balance: %s", ledger.Format(res.Transaction.Amount), ledger.Format(res.Balance)),
	})
	return RechargeResult{Result: res, AcquirerReference: decision.Reference}, nil
}
