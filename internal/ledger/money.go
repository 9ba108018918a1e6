package ledger

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	// AmountScale is the number of fractional digits a currency amount may carry.
	AmountScale = 2
	// MaxIntegerDigits matches the NUMERIC(18,2) amount and balance columns.
	MaxIntegerDigits = 16
)

// ValidateAmount rejects zero, negative, sub-cent and oversized amounts. It
// works on the coefficient and exponent directly so an extreme exponent is
// never rescaled.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	exp := int64(amount.Exponent())
	digits := int64(amount.NumDigits())
	if digits+exp > MaxIntegerDigits {
		return fmt.Errorf("%w: exceeds %d integer digits", ErrInvalidAmount, MaxIntegerDigits)
	}
	if extra := -AmountScale - exp; extra > 0 {
		// every surplus fractional digit must be a trailing zero
		if extra >= digits {
			return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, AmountScale)
		}
		unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(extra), nil)
		if new(big.Int).Rem(amount.Coefficient(), unit).Sign() != 0 {
			return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, AmountScale)
		}
	}
	return nil
}

// ParseAmount reads a decimal amount from its textual form and validates it.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// Format renders an amount for display with exactly two decimals.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(AmountScale)
}
