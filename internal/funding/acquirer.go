package funding

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrRechargeDeclined      = errors.New("recharge declined by payment provider")
	ErrPaymentMethodRequired = errors.New("payment method is required")
)

const statusApproved = "approved"

// Acquirer represents a connector to the external processor that collects
// recharge money (card, transfer, cash desk).
type Acquirer interface {
	Authorize(ctx context.Context, input Authorization) (AuthorizationDecision, error)
}

// AuthorizationDecision captures the response from the acquirer.
type AuthorizationDecision struct {
	Reference string
	Status    string
}

// Authorization describes the money the acquirer is asked to collect.
type Authorization struct {
	UserID        string
	PaymentMethod string
	Amount        decimal.Decimal
}

// StaticAcquirer simulates a successful acquirer integration.
type StaticAcquirer struct{}

// Authorize approves the request with a synthetic reference.
func (StaticAcquirer) Authorize(_ context.Context, _ Authorization) (AuthorizationDecision, error) {
	return AuthorizationDecision{Reference: uuid.NewString(), Status: statusApproved}, nil
}
