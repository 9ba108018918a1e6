package wallet

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/carewallet/carewallet/internal/ledger"
)

// Service exposes wallet read operations and provisioning backed by the ledger.
type Service struct {
	ledger   ledger.Ledger
	currency string
}

// NewService builds a wallet service instance. Wallets are opened in currency.
func NewService(l ledger.Ledger, currency string) *Service {
	if currency == "" {
		currency = "USD"
	}
	return &Service{ledger: l, currency: currency}
}

// Provision opens the user's wallet if it does not exist and returns its id.
func (s *Service) Provision(ctx context.Context, userID string) (string, error) {
	w, _, err := s.ledger.EnsureWallet(ctx, userID, s.currency)
	if err != nil {
		return "", err
	}
	return w.ID, nil
}

// Balance returns the current wallet balance.
func (s *Service) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	w, err := s.ledger.Wallet(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return w.Balance, nil
}

// Overview is a wallet together with the totals of its full history.
type Overview struct {
	Wallet ledger.Wallet
	Totals ledger.Totals
}

func (s *Service) Overview(ctx context.Context, userID string) (Overview, error) {
	w, err := s.ledger.Wallet(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	totals, err := s.ledger.Totals(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	return Overview{Wallet: w, Totals: totals}, nil
}

// History lists a page of the user's transactions, newest first. The
// normalized page window is returned alongside.
func (s *Service) History(ctx context.Context, userID string, limit, offset int) ([]ledger.Transaction, ledger.Filter, error) {
	if _, err := s.ledger.Wallet(ctx, userID); err != nil {
		return nil, ledger.Filter{}, err
	}
	filter := ledger.Filter{UserID: userID, Limit: limit, Offset: offset}.Normalize()
	txs, err := s.ledger.Transactions(ctx, filter)
	if err != nil {
		return nil, ledger.Filter{}, err
	}
	return txs, filter, nil
}
