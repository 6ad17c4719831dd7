// Package notify delivers transactional SMS and email to clients.
// Delivery is best effort: callers never fail a sale because a message
// could not go out.
package notify

import "context"

// Dispatcher hands messages off for delivery. Implementations must not
// return delivery failures to the caller; they log and move on.
type Dispatcher interface {
	SMS(ctx context.Context, phone, body string)
	Email(ctx context.Context, to, subject, body string)
}

// Nop discards every message. Used in tests and when no transport is
// configured.
type Nop struct{}

func (Nop) SMS(ctx context.Context, phone, body string)         {}
func (Nop) Email(ctx context.Context, to, subject, body string) {}
