// Package gateway talks to the hosted-checkout payment processor.
package gateway

import (
	"context"
	"time"
)

// Checkout events the webhook endpoint acts on.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

type CheckoutRequest struct {
	AmountCents    int64
	Currency       string
	Description    string
	SuccessURL     string
	CancelURL      string
	Metadata       map[string]string
	IdempotencyKey string
	ExpiresAt      time.Time
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a verified webhook notification reduced to what bookings need.
type Event struct {
	ID        string
	Type      string
	SessionID string
	Metadata  map[string]string
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

type WebhookVerifier interface {
	VerifyWebhook(payload []byte, signatureHeader string) (*Event, error)
}

// MinCheckoutLifetime is the shortest time a hosted checkout stays payable,
// whatever expiry was requested.
const MinCheckoutLifetime = 31 * time.Minute

// Error carries the processor's human readable message so it can be shown
// to the client as is.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
