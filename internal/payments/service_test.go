package payments

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carewallet/carewallet/internal/ledger"
	"github.com/carewallet/carewallet/internal/logging"
	"github.com/carewallet/carewallet/internal/notification"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, msg notification.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fundedUser(t *testing.T, led ledger.Ledger, amount string) string {
	t.Helper()
	userID := uuid.NewString()
	_, err := ledger.Fund(context.Background(), led, userID, amount)
	require.NoError(t, err)
	return userID
}

func TestPaymentAndRefundScenario(t *testing.T) {
	ctx := context.Background()
	led := ledger.NewInMemory()
	notifier := &mockNotifier{}
	notifier.On("Send", mock.Anything, mock.MatchedBy(func(m notification.Message) bool {
		return m.Kind == notification.KindPaymentReceived
	})).Return(nil).Once()
	notifier.On("Send", mock.Anything, mock.MatchedBy(func(m notification.Message) bool {
		return m.Kind == notification.KindRefundIssued
	})).Return(errors.New("delivery failed")).Once()
	svc := NewService(led, notifier, logging.Discard())

	userID := fundedUser(t, led, "50")

	paid, err := svc.Pay(ctx, PaymentInput{UserID: userID, Amount: amt("30"), AppointmentID: "appt-1"})
	require.NoError(t, err)
	assert.Equal(t, "20.00", ledger.Format(paid.Balance))
	assert.Equal(t, "Healthcare payment", paid.Transaction.Description)
	assert.Equal(t, "appt-1", paid.Transaction.ReferenceID)

	_, err = svc.Pay(ctx, PaymentInput{UserID: userID, Amount: amt("25")})
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	// a failed notification does not fail the refund
	refunded, err := svc.Refund(ctx, RefundInput{UserID: userID, Amount: amt("10"), OriginalTransactionID: paid.Transaction.ID})
	require.NoError(t, err)
	assert.Equal(t, "30.00", ledger.Format(refunded.Balance))
	assert.Equal(t, paid.Transaction.ID, refunded.Transaction.OriginalTransactionID)
	assert.True(t, strings.HasPrefix(refunded.Transaction.ReferenceID, "REFUND-"+paid.Transaction.ID+"-"))

	txs, err := led.Transactions(ctx, ledger.Filter{UserID: userID})
	require.NoError(t, err)
	assert.Len(t, txs, 3)
	notifier.AssertExpectations(t)
}

func TestPaymentDuplicateAppointment(t *testing.T) {
	ctx := context.Background()
	led := ledger.NewInMemory()
	svc := NewService(led, nil, logging.Discard())
	userID := fundedUser(t, led, "100")

	first, err := svc.Pay(ctx, PaymentInput{UserID: userID, Amount: amt("40"), AppointmentID: "appt-9"})
	require.NoError(t, err)
	again, err := svc.Pay(ctx, PaymentInput{UserID: userID, Amount: amt("40"), AppointmentID: "appt-9"})
	require.ErrorIs(t, err, ledger.ErrDuplicateTransaction)
	assert.Equal(t, first.Transaction.ID, again.Transaction.ID)
	assert.Equal(t, "60.00", ledger.Format(again.Balance))
}

func TestPaymentIdempotencyKeyFallback(t *testing.T) {
	ctx := context.Background()
	led := ledger.NewInMemory()
	svc := NewService(led, nil, logging.Discard())
	userID := fundedUser(t, led, "100")

	res, err := svc.Pay(ctx, PaymentInput{UserID: userID, Amount: amt("1"), IdempotencyKey: "idem-1", Description: "  Lab test "})
	require.NoError(t, err)
	assert.Equal(t, "idem-1", res.Transaction.ReferenceID)
	assert.Equal(t, "Lab test", res.Transaction.Description)

	res, err = svc.Pay(ctx, PaymentInput{UserID: userID, Amount: amt("1")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Transaction.ReferenceID, "PAY-"))
}

func TestPaymentValidation(t *testing.T) {
	ctx := context.Background()
	led := ledger.NewInMemory()
	svc := NewService(led, nil, logging.Discard())
	userID := fundedUser(t, led, "10")

	_, err := svc.Pay(ctx, PaymentInput{UserID: userID, Amount: amt("0")})
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
	_, err = svc.Pay(ctx, PaymentInput{UserID: userID, Amount: amt("0.001")})
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
	_, err = svc.Pay(ctx, PaymentInput{UserID: "ghost", Amount: amt("1")})
	assert.ErrorIs(t, err, ledger.ErrWalletNotFound)
}

func TestRefundRules(t *testing.T) {
	ctx := context.Background()
	led := ledger.NewInMemory()
	svc := NewService(led, nil, logging.Discard())
	userID := fundedUser(t, led, "100")
	otherID := fundedUser(t, led, "100")

	paid, err := svc.Pay(ctx, PaymentInput{UserID: userID, Amount: amt("40"), AppointmentID: "appt-2"})
	require.NoError(t, err)

	_, err = svc.Refund(ctx, RefundInput{UserID: userID, Amount: amt("5")})
	assert.ErrorIs(t, err, ErrOriginalRequired)

	_, err = svc.Refund(ctx, RefundInput{UserID: userID, Amount: amt("5"), OriginalTransactionID: "missing"})
	assert.ErrorIs(t, err, ledger.ErrOriginalNotFound)

	// another wallet's payment cannot be refunded here
	_, err = svc.Refund(ctx, RefundInput{UserID: otherID, Amount: amt("5"), OriginalTransactionID: paid.Transaction.ID})
	assert.ErrorIs(t, err, ledger.ErrOriginalNotFound)

	// lookup by reference id works too
	_, err = svc.Refund(ctx, RefundInput{UserID: userID, Amount: amt("25"), OriginalTransactionID: "appt-2"})
	require.NoError(t, err)

	_, err = svc.Refund(ctx, RefundInput{UserID: userID, Amount: amt("15.01"), OriginalTransactionID: paid.Transaction.ID})
	assert.ErrorIs(t, err, ledger.ErrRefundExceedsPayment)

	res, err := svc.Refund(ctx, RefundInput{UserID: userID, Amount: amt("15"), OriginalTransactionID: paid.Transaction.ID})
	require.NoError(t, err)
	assert.Equal(t, "100.00", ledger.Format(res.Balance))
}

func TestConcurrentPaymentsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	led := ledger.NewInMemory()
	svc := NewService(led, nil, logging.Discard())
	userID := fundedUser(t, led, "100")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Pay(ctx, PaymentInput{UserID: userID, Amount: amt("60")})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ledger.ErrInsufficientBalance):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	w, err := led.Wallet(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "40.00", ledger.Format(w.Balance))
}
