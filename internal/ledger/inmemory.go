package ledger

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memoryWallet struct {
	mu     sync.Mutex
	wallet Wallet
	txs    []Transaction
	refs   map[string]int // kind:reference -> index into txs
}

type inMemoryLedger struct {
	mu      sync.RWMutex
	wallets map[string]*memoryWallet
	seq     atomic.Int64
	now     func() time.Time
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit tests
// and local development. Appends on different wallets never contend.
func NewInMemory() Ledger {
	return newInMemory(func() time.Time { return time.Now().UTC() })
}

func newInMemory(now func() time.Time) *inMemoryLedger {
	return &inMemoryLedger{wallets: make(map[string]*memoryWallet), now: now}
}

func (l *inMemoryLedger) EnsureWallet(_ context.Context, userID, currency string) (Wallet, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.wallets[userID]; ok {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.wallet, false, nil
	}
	now := l.now()
	w := &memoryWallet{
		wallet: Wallet{
			ID:        uuid.NewString(),
			UserID:    userID,
			Balance:   decimal.Zero,
			Currency:  currency,
			CreatedAt: now,
			UpdatedAt: now,
		},
		refs: make(map[string]int),
	}
	l.wallets[userID] = w
	return w.wallet, true, nil
}

func (l *inMemoryLedger) lookup(userID string) (*memoryWallet, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	w, ok := l.wallets[userID]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return w, nil
}

func (l *inMemoryLedger) Wallet(_ context.Context, userID string) (Wallet, error) {
	w, err := l.lookup(userID)
	if err != nil {
		return Wallet{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.wallet, nil
}

func (l *inMemoryLedger) FindByReference(_ context.Context, userID string, kind Kind, reference string) (Transaction, error) {
	w, err := l.lookup(userID)
	if err != nil {
		return Transaction{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if idx, ok := w.refs[string(kind)+":"+reference]; ok && reference != "" {
		return w.txs[idx], nil
	}
	return Transaction{}, ErrTransactionNotFound
}

func (l *inMemoryLedger) Append(ctx context.Context, e Entry) (Result, error) {
	if err := validateEntry(e); err != nil {
		return Result{}, err
	}
	w, err := l.lookup(e.UserID)
	if err != nil {
		return Result{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, storageErr(err)
	}

	refKey := string(e.Kind) + ":" + e.ReferenceID
	if e.ReferenceID != "" {
		if idx, exists := w.refs[refKey]; exists {
			return Result{Transaction: w.txs[idx], Balance: w.wallet.Balance}, ErrDuplicateTransaction
		}
	}

	var originalID string
	switch e.Kind {
	case KindPayment:
		if w.wallet.Balance.LessThan(e.Amount) {
			return Result{}, ErrInsufficientBalance
		}
	case KindRefund:
		original, ok := w.findPayment(e.OriginalRef)
		if !ok {
			return Result{}, ErrOriginalNotFound
		}
		if w.refundedAgainst(original.ID).Add(e.Amount).GreaterThan(original.Amount) {
			return Result{}, ErrRefundExceedsPayment
		}
		originalID = original.ID
	}

	now := l.now()
	tx := Transaction{
		ID:                    uuid.NewString(),
		Seq:                   l.seq.Add(1),
		WalletID:              w.wallet.ID,
		UserID:                e.UserID,
		Kind:                  e.Kind,
		Amount:                e.Amount,
		Description:           e.Description,
		ReferenceID:           e.ReferenceID,
		OriginalTransactionID: originalID,
		CreatedAt:             now,
	}

	w.txs = append(w.txs, tx)
	if e.ReferenceID != "" {
		w.refs[refKey] = len(w.txs) - 1
	}
	w.wallet.Balance = w.wallet.Balance.Add(e.Kind.Signed(e.Amount))
	w.wallet.UpdatedAt = now

	return Result{Transaction: tx, Balance: w.wallet.Balance}, nil
}

func (w *memoryWallet) findPayment(ref string) (Transaction, bool) {
	for _, tx := range w.txs {
		if tx.Kind == KindPayment && (tx.ID == ref || tx.ReferenceID == ref) {
			return tx, true
		}
	}
	return Transaction{}, false
}

func (w *memoryWallet) refundedAgainst(originalID string) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range w.txs {
		if tx.Kind == KindRefund && tx.OriginalTransactionID == originalID {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

func (l *inMemoryLedger) Transactions(_ context.Context, f Filter) ([]Transaction, error) {
	f = f.Normalize()

	var all []Transaction
	if f.UserID != "" {
		w, err := l.lookup(f.UserID)
		if err != nil {
			return nil, err
		}
		w.mu.Lock()
		all = append(all, w.txs...)
		w.mu.Unlock()
	} else {
		for _, w := range l.snapshot() {
			w.mu.Lock()
			all = append(all, w.txs...)
			w.mu.Unlock()
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].Seq > all[j].Seq
	})

	if f.Offset >= len(all) {
		return []Transaction{}, nil
	}
	end := f.Offset + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[f.Offset:end], nil
}

func (l *inMemoryLedger) Totals(_ context.Context, userID string) (Totals, error) {
	var wallets []*memoryWallet
	if userID != "" {
		w, err := l.lookup(userID)
		if err != nil {
			return Totals{}, err
		}
		wallets = []*memoryWallet{w}
	} else {
		wallets = l.snapshot()
	}

	var t Totals
	for _, w := range wallets {
		w.mu.Lock()
		for _, tx := range w.txs {
			t.add(tx.Kind, tx.Amount)
		}
		w.mu.Unlock()
	}
	return t, nil
}

func (l *inMemoryLedger) snapshot() []*memoryWallet {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*memoryWallet, 0, len(l.wallets))
	for _, w := range l.wallets {
		out = append(out, w)
	}
	return out
}
