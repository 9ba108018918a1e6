// Package reports builds the administrative financial overview.
package reports

import (
	"context"
	"time"

	"github.com/carewallet/carewallet/internal/ledger"
)

const DefaultRecentLimit = 50

// Overview aggregates every wallet's transactions. Payments are revenue.
type Overview struct {
	Totals      ledger.Totals
	Recent      []ledger.Transaction
	GeneratedAt time.Time
}

type Service struct {
	ledger ledger.Ledger
	now    func() time.Time
}

func NewService(l ledger.Ledger) *Service {
	return &Service{ledger: l, now: func() time.Time { return time.Now().UTC() }}
}

// Financial returns totals over all transactions plus the newest recent ones.
func (s *Service) Financial(ctx context.Context, recent int) (Overview, error) {
	if recent <= 0 {
		recent = DefaultRecentLimit
	}
	totals, err := s.ledger.Totals(ctx, "")
	if err != nil {
		return Overview{}, err
	}
	txs, err := s.ledger.Transactions(ctx, ledger.Filter{Limit: recent})
	if err != nil {
		return Overview{}, err
	}
	return Overview{Totals: totals, Recent: txs, GeneratedAt: s.now()}, nil
}
