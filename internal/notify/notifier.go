// Package notify is the thin outbound-notification boundary. Delivery is
// best-effort everywhere: callers log failures and move on, a broken broker
// never fails the operation that triggered the notification.
package notify

import (
	"context"
	"log/slog"
)

// Notifier delivers a subject/body message. recipient is the identity id of
// the addressee (the delivery worker resolves it to an address via the
// identity service); key is a dotted topic ("identity.welcome",
// "booking.confirmed") that delivery workers bind on.
type Notifier interface {
	Notify(ctx context.Context, recipient, key, subject, body string) error
	Close() error
}

// Console logs notifications instead of delivering them. Used in dev and
// whenever AMQP is not configured.
type Console struct{}

func NewConsole() *Console { return &Console{} }

func (c *Console) Notify(_ context.Context, recipient, key, subject, body string) error {
	slog.Info("notification", "recipient", recipient, "key", key, "subject", subject, "body", body)
	return nil
}

func (c *Console) Close() error { return nil }
