package notification

import (
	"context"
	"log/slog"
)

const (
	KindWalletRecharged = "wallet_recharged"
	KindPaymentReceived = "payment_received"
	KindRefundIssued    = "refund_issued"
)

// Message describes a notification payload. Destination is the user id of
// the wallet owner.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to downstream systems. Delivery is best
// effort; callers never fail a ledger operation because of it.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", slog.String("kind", message.Kind), slog.String("destination", message.Destination), slog.String("body", message.Body))
	return nil
}

// Deliver sends message and logs, rather than returns, a failure.
func Deliver(ctx context.Context, n Notifier, logger *slog.Logger, message Message) {
	if n == nil {
		return
	}
	if err := n.Send(ctx, message); err != nil && logger != nil {
		logger.Warn("notification failed", slog.String("kind", message.Kind), slog.String("destination", message.Destination), slog.Any("error", err))
	}
}
