package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresLedger persists wallets and their transaction log in PostgreSQL.
// The wallet row is locked for the duration of every append, which serializes
// debits per wallet while leaving other wallets untouched.
type PostgresLedger struct {
	db  *pgxpool.Pool
	now func() time.Time
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const walletColumns = `id, user_id, balance, currency, created_at, updated_at`

const transactionColumns = `id, seq, wallet_id, user_id, kind, amount, description,
        COALESCE(reference_id, ''), COALESCE(original_transaction_id::text, ''), created_at`

// EnsureWallet guarantees a wallet exists for the user.
func (l *PostgresLedger) EnsureWallet(ctx context.Context, userID, currency string) (Wallet, bool, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Wallet{}, false, err
	}
	now := l.now()
	tag, err := l.db.Exec(ctx, `INSERT INTO wallets (id, user_id, balance, currency, created_at, updated_at)
        VALUES ($1, $2, 0, $3, $4, $4)
        ON CONFLICT (user_id) DO NOTHING`, uuid.New(), uid, currency, now)
	if err != nil {
		return Wallet{}, false, storageErr(err)
	}
	w, err := l.Wallet(ctx, userID)
	return w, tag.RowsAffected() == 1, err
}

// Wallet fetches the wallet owned by userID.
func (l *PostgresLedger) Wallet(ctx context.Context, userID string) (Wallet, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Wallet{}, ErrWalletNotFound
	}
	row := l.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, uid)
	return scanWallet(row)
}

// FindByReference looks up a transaction by its wallet-scoped reference.
func (l *PostgresLedger) FindByReference(ctx context.Context, userID string, kind Kind, reference string) (Transaction, error) {
	w, err := l.Wallet(ctx, userID)
	if err != nil {
		return Transaction{}, err
	}
	if reference == "" {
		return Transaction{}, ErrTransactionNotFound
	}
	t, err := scanTransaction(l.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM wallet_transactions
        WHERE wallet_id = $1 AND kind = $2 AND reference_id = $3`, uuid.MustParse(w.ID), string(kind), reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrTransactionNotFound
		}
		return Transaction{}, storageErr(err)
	}
	return t, nil
}

// Append records the entry and updates the maintained balance in one database
// transaction.
func (l *PostgresLedger) Append(ctx context.Context, e Entry) (Result, error) {
	if err := validateEntry(e); err != nil {
		return Result{}, err
	}
	uid, err := uuid.Parse(e.UserID)
	if err != nil {
		return Result{}, ErrWalletNotFound
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Result{}, storageErr(err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var (
		walletID uuid.UUID
		balance  decimal.Decimal
	)
	err = tx.QueryRow(ctx, `SELECT id, balance FROM wallets WHERE user_id = $1 FOR UPDATE`, uid).Scan(&walletID, &balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Result{}, ErrWalletNotFound
		}
		return Result{}, storageErr(err)
	}

	if e.ReferenceID != "" {
		const existingQuery = `SELECT ` + transactionColumns + ` FROM wallet_transactions
            WHERE wallet_id = $1 AND kind = $2 AND reference_id = $3`
		existing, err := scanTransaction(tx.QueryRow(ctx, existingQuery, walletID, string(e.Kind), e.ReferenceID))
		if err == nil {
			return Result{Transaction: existing, Balance: balance}, ErrDuplicateTransaction
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return Result{}, storageErr(err)
		}
	}

	var originalID *uuid.UUID
	switch e.Kind {
	case KindPayment:
		if balance.LessThan(e.Amount) {
			return Result{}, ErrInsufficientBalance
		}
	case KindRefund:
		id, err := checkRefundable(ctx, tx, walletID, e.OriginalRef, e.Amount)
		if err != nil {
			return Result{}, err
		}
		originalID = &id
	}

	txID := uuid.New()
	now := l.now()
	var seq int64
	err = tx.QueryRow(ctx, `INSERT INTO wallet_transactions
        (id, wallet_id, user_id, kind, amount, description, reference_id, original_transaction_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
        RETURNING seq`,
		txID, walletID, uid, string(e.Kind), e.Amount, e.Description, e.ReferenceID, originalID, now).Scan(&seq)
	if err != nil {
		return Result{}, storageErr(err)
	}

	var updated decimal.Decimal
	err = tx.QueryRow(ctx, `UPDATE wallets SET balance = balance + $1, updated_at = $2 WHERE id = $3 RETURNING balance`,
		e.Kind.Signed(e.Amount), now, walletID).Scan(&updated)
	if err != nil {
		return Result{}, storageErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Result{}, storageErr(err)
	}

	record := Transaction{
		ID:          txID.String(),
		Seq:         seq,
		WalletID:    walletID.String(),
		UserID:      e.UserID,
		Kind:        e.Kind,
		Amount:      e.Amount,
		Description: e.Description,
		ReferenceID: e.ReferenceID,
		CreatedAt:   now,
	}
	if originalID != nil {
		record.OriginalTransactionID = originalID.String()
	}
	return Result{Transaction: record, Balance: updated}, nil
}

// checkRefundable resolves the original payment by id or reference id and
// verifies the refund fits in what is left of it.
func checkRefundable(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, ref string, amount decimal.Decimal) (uuid.UUID, error) {
	const originalQuery = `SELECT id, amount FROM wallet_transactions
        WHERE wallet_id = $1 AND kind = 'payment' AND (id::text = $2 OR reference_id = $2)
        ORDER BY seq LIMIT 1`
	var (
		originalID     uuid.UUID
		originalAmount decimal.Decimal
	)
	if err := tx.QueryRow(ctx, originalQuery, walletID, ref).Scan(&originalID, &originalAmount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrOriginalNotFound
		}
		return uuid.Nil, storageErr(err)
	}

	const refundedQuery = `SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions
        WHERE original_transaction_id = $1 AND kind = 'refund'`
	var refunded decimal.Decimal
	if err := tx.QueryRow(ctx, refundedQuery, originalID).Scan(&refunded); err != nil {
		return uuid.Nil, storageErr(err)
	}
	if refunded.Add(amount).GreaterThan(originalAmount) {
		return uuid.Nil, ErrRefundExceedsPayment
	}
	return originalID, nil
}

// Transactions returns a page ordered newest first; seq breaks timestamp ties.
func (l *PostgresLedger) Transactions(ctx context.Context, f Filter) ([]Transaction, error) {
	f = f.Normalize()

	var userArg *uuid.UUID
	if f.UserID != "" {
		if _, err := l.Wallet(ctx, f.UserID); err != nil {
			return nil, err
		}
		uid := uuid.MustParse(f.UserID)
		userArg = &uid
	}

	rows, err := l.db.Query(ctx, `SELECT `+transactionColumns+` FROM wallet_transactions
        WHERE ($1::uuid IS NULL OR user_id = $1)
        ORDER BY created_at DESC, seq DESC
        LIMIT $2 OFFSET $3`, userArg, f.Limit, f.Offset)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	out := []Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, storageErr(err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

// Totals aggregates the complete log of one wallet, or of all wallets when
// userID is empty.
func (l *PostgresLedger) Totals(ctx context.Context, userID string) (Totals, error) {
	var userArg *uuid.UUID
	if userID != "" {
		if _, err := l.Wallet(ctx, userID); err != nil {
			return Totals{}, err
		}
		uid := uuid.MustParse(userID)
		userArg = &uid
	}

	rows, err := l.db.Query(ctx, `SELECT kind, COALESCE(SUM(amount), 0), COUNT(*) FROM wallet_transactions
        WHERE ($1::uuid IS NULL OR user_id = $1)
        GROUP BY kind`, userArg)
	if err != nil {
		return Totals{}, storageErr(err)
	}
	defer rows.Close()

	t := Totals{Recharged: decimal.Zero, Paid: decimal.Zero, Refunded: decimal.Zero}
	for rows.Next() {
		var (
			kind  string
			sum   decimal.Decimal
			count int64
		)
		if err := rows.Scan(&kind, &sum, &count); err != nil {
			return Totals{}, storageErr(err)
		}
		switch Kind(kind) {
		case KindRecharge:
			t.Recharged = sum
		case KindPayment:
			t.Paid = sum
		case KindRefund:
			t.Refunded = sum
		}
		t.Count += count
	}
	if err := rows.Err(); err != nil {
		return Totals{}, storageErr(err)
	}
	return t, nil
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w       Wallet
		id, uid uuid.UUID
	)
	if err := row.Scan(&id, &uid, &w.Balance, &w.Currency, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrWalletNotFound
		}
		return Wallet{}, storageErr(err)
	}
	w.ID = id.String()
	w.UserID = uid.String()
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	return w, nil
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var (
		t                 Transaction
		id, walletID, uid uuid.UUID
		kind              string
	)
	if err := row.Scan(&id, &t.Seq, &walletID, &uid, &kind, &t.Amount, &t.Description,
		&t.ReferenceID, &t.OriginalTransactionID, &t.CreatedAt); err != nil {
		return Transaction{}, err
	}
	t.ID = id.String()
	t.WalletID = walletID.String()
	t.UserID = uid.String()
	t.Kind = Kind(kind)
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}
