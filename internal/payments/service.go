package payments

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

const (
	defaultPaymentDescription = "Healthcare payment"
	defaultRefundDescription  = "Refund"
)

// Service posts healthcare payments and their refunds to the ledger.
type Service struct {
	ledger   ledger.Ledger
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService constructs a payment service.
func NewService(ledger ledger.Ledger, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{ledger: ledger, notifier: notifier, logger: logger}
}

// PaymentInput captures a debit of the patient's wallet.
type PaymentInput struct {
	UserID        string
	Amount        decimal.Decimal
	Description   string
	AppointmentID string
	// IdempotencyKey is used as reference when no appointment is given.
	IdempotencyKey string
}

// Pay debits the wallet. The balance check and the debit happen atomically,
// so concurrent payments can never overdraw the wallet.
func (s *Service) Pay(ctx context.Context, input PaymentInput) (ledger.Result, error) {
	if err := ledger.ValidateAmount(input.Amount); err != nil {
		return ledger.Result{}, err
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		description = defaultPaymentDescription
	}
	reference := firstNonEmpty(input.AppointmentID, input.IdempotencyKey)
	if reference == "" {
		reference = "PAY-" + uuid.NewString()
	}

	res, err := s.ledger.Append(ctx, ledger.Entry{
		UserID:      input.UserID,
		Kind:        ledger.KindPayment,
		Amount:      input.Amount,
		Description: description,
		ReferenceID: reference,
	})
	if err != nil {
		return res, err
	}

	notification.Deliver(ctx, s.notifier, s.logger, notification.Message{
		Kind:        notification.KindPaymentReceived,
		Destination: input.UserID,
		Body:        fmt.Sprintf("Payment of %s for %s. Remaining balance: %s", ledger.Format(input.Amount), description, ledger.Format(res.Balance)),
	})
	return res, nil
}

// RefundInput captures money returned to a wallet against an earlier payment.
type RefundInput struct {
	UserID      string
	Amount      decimal.Decimal
	Description string
	// OriginalTransactionID is the id or reference id of the refunded payment.
	OriginalTransactionID string
	IdempotencyKey        string
}

// Refund credits the wallet. The total refunded against one payment never
// exceeds that payment's amount.
func (s *Service) Refund(ctx context.Context, input RefundInput) (ledger.Result, error) {
	if err := ledger.ValidateAmount(input.Amount); err != nil {
		return ledger.Result{}, err
	}
	original := strings.TrimSpace(input.OriginalTransactionID)
	if original == "" {
		return ledger.Result{}, ErrOriginalRequired
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		description = defaultRefundDescription
	}
	reference := strings.TrimSpace(input.IdempotencyKey)
	if reference == "" {
		reference = "REFUND-" + original + "-" + uuid.NewString()
	}

	res, err := s.ledger.Append(ctx, ledger.Entry{
		UserID:      input.UserID,
		Kind:        ledger.KindRefund,
		Amount:      input.Amount,
		Description: description,
		ReferenceID: reference,
		OriginalRef: original,
	})
	if err != nil {
		return res, err
	}

	notification.Deliver(ctx, s.notifier, s.logger, notification.Message{
		Kind:        notification.KindRefundIssued,
		Destination: input.UserID,
		Body:        fmt.Sprintf("Refund of %s issued. New balance: %s", ledger.Format(input.Amount), ledger.Format(res.Balance)),
	})
	return res, nil
}

// ErrOriginalRequired indicates a refund without the payment it reverses.
var ErrOriginalRequired = errors.New("original transaction id is required")

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
