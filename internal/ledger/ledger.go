package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned for missing, zero, negative or over-precise
	// amounts. It is raised before any storage access.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrWalletNotFound indicates the user has no provisioned wallet. Wallets are
	// never created implicitly on the transaction path.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInsufficientBalance occurs when a payment exceeds the current balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrDuplicateTransaction indicates the reference id was already used for the
	// same wallet and kind. The original transaction is returned alongside it.
	ErrDuplicateTransaction = errors.New("duplicate transaction")

	// ErrOriginalNotFound is returned when a refund does not point at a payment
	// of the same wallet.
	ErrOriginalNotFound = errors.New("original payment not found")

	// ErrRefundExceedsPayment is returned when a refund would return more than
	// what is left refundable on the original payment.
	ErrRefundExceedsPayment = errors.New("refund exceeds refundable amount")

	// ErrTransactionNotFound is returned by reference lookups that match nothing.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrStorage marks failures of the underlying store. Nothing is committed
	// when it is returned.
	ErrStorage = errors.New("ledger storage failure")
)

// Kind is the type of a ledger transaction.
type Kind string

const (
	KindRecharge Kind = "recharge"
	KindPayment  Kind = "payment"
	KindRefund   Kind = "refund"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindRecharge, KindPayment, KindRefund:
		return true
	}
	return false
}

// Signed returns the balance effect of amount for this kind.
func (k Kind) Signed(amount decimal.Decimal) decimal.Decimal {
	if k == KindPayment {
		return amount.Neg()
	}
	return amount
}

// Wallet is the per-user account. Balance is maintained in the same atomic
// unit as every transaction insert.
type Wallet struct {
	ID        string
	UserID    string
	Balance   decimal.Decimal
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transaction is an immutable ledger record.
type Transaction struct {
	ID                    string
	Seq                   int64
	WalletID              string
	UserID                string
	Kind                  Kind
	Amount                decimal.Decimal
	Description           string
	ReferenceID           string
	OriginalTransactionID string
	CreatedAt             time.Time
}

// Entry is a request to append a transaction to a user's wallet.
type Entry struct {
	UserID      string
	Kind        Kind
	Amount      decimal.Decimal
	Description string
	ReferenceID string
	// OriginalRef is the id or reference id of the payment a refund reverses.
	OriginalRef string
}

// Result is the outcome of an append: the stored transaction and the wallet
// balance right after it.
type Result struct {
	Transaction Transaction
	Balance     decimal.Decimal
}

// Filter selects a page of transactions. An empty UserID selects every wallet.
type Filter struct {
	UserID string
	Limit  int
	Offset int
}

// Totals aggregates the full transaction log of one wallet or of all wallets.
type Totals struct {
	Recharged decimal.Decimal
	Paid      decimal.Decimal
	Refunded  decimal.Decimal
	Count     int64
}

// Net returns recharges plus refunds minus payments.
func (t Totals) Net() decimal.Decimal {
	return t.Recharged.Add(t.Refunded).Sub(t.Paid)
}

func (t *Totals) add(kind Kind, amount decimal.Decimal) {
	switch kind {
	case KindRecharge:
		t.Recharged = t.Recharged.Add(amount)
	case KindPayment:
		t.Paid = t.Paid.Add(amount)
	case KindRefund:
		t.Refunded = t.Refunded.Add(amount)
	}
	t.Count++
}

// Ledger defines the contract implemented by ledger backends (memory, Postgres).
type Ledger interface {
	// EnsureWallet provisions the user's wallet; it is a no-op returning the
	// existing wallet when one is already there. created reports whether this
	// call opened the wallet.
	EnsureWallet(ctx context.Context, userID, currency string) (w Wallet, created bool, err error)
	Wallet(ctx context.Context, userID string) (Wallet, error)
	// FindByReference returns the wallet's transaction of kind carrying
	// reference, or ErrTransactionNotFound.
	FindByReference(ctx context.Context, userID string, kind Kind, reference string) (Transaction, error)
	// Append validates and stores entry together with the balance update as a
	// single atomic unit.
	Append(ctx context.Context, entry Entry) (Result, error)
	Transactions(ctx context.Context, filter Filter) ([]Transaction, error)
	Totals(ctx context.Context, userID string) (Totals, error)
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps the page window to sane bounds.
func (f Filter) Normalize() Filter {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

func validateEntry(e Entry) error {
	if !e.Kind.Valid() {
		return errors.New("unknown transaction kind")
	}
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	if e.Kind == KindRefund && e.OriginalRef == "" {
		return ErrOriginalNotFound
	}
	return nil
}

func storageErr(err error) error {
	return errors.Join(ErrStorage, err)
}
