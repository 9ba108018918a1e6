package funding

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

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

type decliningAcquirer struct{}

func (decliningAcquirer) Authorize(context.Context, Authorization) (AuthorizationDecision, error) {
	return AuthorizationDecision{Reference: "r", Status: "declined"}, nil
}

type countingAcquirer struct {
	calls int
}

func (a *countingAcquirer) Authorize(ctx context.Context, in Authorization) (AuthorizationDecision, error) {
	a.calls++
	return StaticAcquirer{}.Authorize(ctx, in)
}

func newWalletUser(t *testing.T, led ledger.Ledger) string {
	t.Helper()
	userID := uuid.NewString()
	if _, _, err := led.EnsureWallet(context.Background(), userID, "USD"); err != nil {
		t.Fatalf("ensure wallet: %v", err)
	}
	return userID
}

func TestServiceRecharge(t *testing.T) {
	ctx := context.Background()
	led := ledger.NewInMemory()
	notifier := &mockNotifier{}
	notifier.On("Send", mock.Anything, mock.MatchedBy(func(m notification.Message) bool {
		return m.Kind == notification.KindWalletRecharged
	})).Return(nil).Once()

	service := NewService(led, StaticAcquirer{}, notifier, logging.Discard())
	userID := newWalletUser(t, led)

	res, err := service.Recharge(ctx, RechargeInput{
		UserID:        userID,
		Amount:        decimal.RequireFromString("50"),
		PaymentMethod: "card",
		ReferenceID:   "ext-1",
	})
	if err != nil {
		t.Fatalf("recharge: %v", err)
	}
	if ledger.Format(res.Balance) != "50.00" {
		t.Fatalf("expected balance 50.00, got %s", ledger.Format(res.Balance))
	}
	if res.Transaction.Description != "Wallet recharge via card" {
		t.Fatalf("unexpected description %q", res.Transaction.Description)
	}
	if res.AcquirerReference == "" {
		t.Fatalf("expected acquirer reference")
	}

	dup, err := service.Recharge(ctx, RechargeInput{
		UserID:        userID,
		Amount:        decimal.RequireFromString("50"),
		PaymentMethod: "card",
		ReferenceID:   "ext-1",
	})
	if !errors.Is(err, ledger.ErrDuplicateTransaction) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if dup.Transaction.ID != res.Transaction.ID || ledger.Format(dup.Balance) != "50.00" {
		t.Fatalf("duplicate must return the original transaction, got %+v", dup)
	}
	notifier.AssertExpectations(t)
}

func TestServiceRechargeGeneratesReference(t *testing.T) {
	led := ledger.NewInMemory()
	service := NewService(led, nil, nil, logging.Discard())
	userID := newWalletUser(t, led)

	for i := 0; i < 2; i++ {
		res, err := service.Recharge(context.Background(), RechargeInput{UserID: userID, Amount: decimal.NewFromInt(5), PaymentMethod: "cash"})
		if err != nil {
			t.Fatalf("recharge %d: %v", i, err)
		}
		if len(res.Transaction.ReferenceID) < len("REF-") || res.Transaction.ReferenceID[:4] != "REF-" {
			t.Fatalf("unexpected reference %q", res.Transaction.ReferenceID)
		}
	}
	balance, _ := led.Wallet(context.Background(), userID)
	if ledger.Format(balance.Balance) != "10.00" {
		t.Fatalf("expected 10.00, got %s", ledger.Format(balance.Balance))
	}
}

func TestServiceRechargeRejections(t *testing.T) {
	ctx := context.Background()
	led := ledger.NewInMemory()
	service := NewService(led, nil, nil, logging.Discard())
	userID := newWalletUser(t, led)

	cases := []struct {
		name  string
		input RechargeInput
		want  error
	}{
		{"zero amount", RechargeInput{UserID: userID, Amount: decimal.Zero, PaymentMethod: "card"}, ledger.ErrInvalidAmount},
		{"negative amount", RechargeInput{UserID: userID, Amount: decimal.NewFromInt(-3), PaymentMethod: "card"}, ledger.ErrInvalidAmount},
		{"three decimals", RechargeInput{UserID: userID, Amount: decimal.RequireFromString("1.005"), PaymentMethod: "card"}, ledger.ErrInvalidAmount},
		{"no method", RechargeInput{UserID: userID, Amount: decimal.NewFromInt(1), PaymentMethod: "  "}, ErrPaymentMethodRequired},
		{"no wallet", RechargeInput{UserID: "ghost", Amount: decimal.NewFromInt(1), PaymentMethod: "card"}, ledger.ErrWalletNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.Recharge(ctx, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	declining := NewService(led, decliningAcquirer{}, nil, logging.Discard())
	if _, err := declining.Recharge(ctx, RechargeInput{UserID: userID, Amount: decimal.NewFromInt(1), PaymentMethod: "card"}); !errors.Is(err, ErrRechargeDeclined) {
		t.Fatalf("expected ErrRechargeDeclined, got %v", err)
	}

	w, _ := led.Wallet(ctx, userID)
	if !w.Balance.IsZero() {
		t.Fatalf("rejected recharges must not change the balance, got %s", w.Balance)
	}
}

func TestServiceRechargeRetryDoesNotReauthorize(t *testing.T) {
	ctx := context.Background()
	led := ledger.NewInMemory()
	acquirer := &countingAcquirer{}
	service := NewService(led, acquirer, nil, logging.Discard())
	userID := newWalletUser(t, led)

	input := RechargeInput{UserID: userID, Amount: decimal.NewFromInt(50), PaymentMethod: "card", ReferenceID: "ext-1"}
	first, err := service.Recharge(ctx, input)
	if err != nil {
		t.Fatalf("recharge: %v", err)
	}
	retry, err := service.Recharge(ctx, input)
	if !errors.Is(err, ledger.ErrDuplicateTransaction) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if retry.Transaction.ID != first.Transaction.ID {
		t.Fatalf("expected original transaction %s, got %s", first.Transaction.ID, retry.Transaction.ID)
	}
	if acquirer.calls != 1 {
		t.Fatalf("expected a single authorization, got %d", acquirer.calls)
	}
	w, _ := led.Wallet(ctx, userID)
	if ledger.Format(w.Balance) != "50.00" {
		t.Fatalf("expected balance 50.00, got %s", ledger.Format(w.Balance))
	}
}
