package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// Stripe accepts checkout expiry between 30 minutes and 24 hours out.
const (
	minSessionLifetime = 30 * time.Minute
	maxSessionLifetime = 24 * time.Hour
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
	MaxRetries    int64

	// BaseURL overrides the API endpoint, used to point at a fake server.
	BaseURL string
}

type StripeGateway struct {
	api           *client.API
	webhookSecret string
	now           func() time.Time
	log           *zap.Logger
}

func NewStripeGateway(cfg StripeConfig, log *zap.Logger) *StripeGateway {
	log = log.With(zap.String("gateway", "stripe"))

	backendConfig := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		MaxNetworkRetries: stripe.Int64(cfg.MaxRetries),
		LeveledLogger:     log.Sugar(),
	}
	if cfg.BaseURL != "" {
		backendConfig.URL = stripe.String(cfg.BaseURL)
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig)
	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})

	return &StripeGateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		now:           time.Now,
		log:           log,
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(req.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	if !req.ExpiresAt.IsZero() {
		params.ExpiresAt = stripe.Int64(g.clampExpiry(req.ExpiresAt).Unix())
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	params.Context = ctx

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		g.log.Error("Failed to create checkout session",
			zap.Error(err),
			zap.String("idempotency_key", req.IdempotencyKey),
		)
		return nil, wrapStripeError(err)
	}

	g.log.Info("Checkout session created",
		zap.String("session_id", session.ID),
		zap.Int64("amount_cents", req.AmountCents),
	)

	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (g *StripeGateway) clampExpiry(at time.Time) time.Time {
	now := g.now()
	if at.Before(now.Add(minSessionLifetime)) {
		// MinCheckoutLifetime leaves a minute of slack so the request is not rejected in flight
		return now.Add(MinCheckoutLifetime)
	}
	if at.After(now.Add(maxSessionLifetime)) {
		return now.Add(maxSessionLifetime)
	}
	return at
}

// VerifyWebhook checks the Stripe-Signature header and decodes checkout
// session events. Other event types come back with only ID and Type set.
func (g *StripeGateway) VerifyWebhook(payload []byte, signatureHeader string) (*Event, error) {
	if g.webhookSecret == "" {
		return nil, errors.New("webhook secret not configured")
	}

	evt, err := webhook.ConstructEventWithOptions(payload, signatureHeader, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("verify webhook: %w", err)
	}

	out := &Event{ID: evt.ID, Type: string(evt.Type)}
	switch out.Type {
	case EventCheckoutCompleted, EventCheckoutExpired:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.SessionID = session.ID
		out.Metadata = session.Metadata
	}

	return out, nil
}

func wrapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return &Error{Message: stripeErr.Msg, Err: err}
	}
	return &Error{Message: err.Error(), Err: err}
}
