package funding

import "github.com/shopspring/decimal"

// RechargeRequest is the body of POST /wallet/recharge. Amount accepts a JSON
// number or a decimal string.
type RechargeRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod" validate:"required,max=50"`
	ReferenceID   string          `json:"referenceId" validate:"omitempty,max=100"`
}
