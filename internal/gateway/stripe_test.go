package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewStripeGateway(StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: "whsec_test",
		Timeout:       5 * time.Second,
		BaseURL:       srv.URL,
	}, zap.NewNop())
}

func TestCreateCheckoutSession_SendsAmountInCents(t *testing.T) {
	var form map[string]string
	var idempotencyKey string

	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		idempotencyKey = r.Header.Get("Idempotency-Key")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	})

	session, err := gw.CreateCheckoutSession(context.Background(), CheckoutRequest{
		AmountCents:    15050,
		Currency:       "usd",
		Description:    "Rental #10 - Toyota Corolla",
		SuccessURL:     "https://app.test/payment-success/10",
		CancelURL:      "https://app.test/payment-cancel/10",
		Metadata:       map[string]string{"rental_id": "10", "user_id": "7"},
		IdempotencyKey: "rental-10-checkout",
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", session.URL)

	assert.Equal(t, "15050", form["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, "usd", form["line_items[0][price_data][currency]"])
	assert.Equal(t, "1", form["line_items[0][quantity]"])
	assert.Equal(t, "payment", form["mode"])
	assert.Equal(t, "https://app.test/payment-success/10", form["success_url"])
	assert.Equal(t, "https://app.test/payment-cancel/10", form["cancel_url"])
	assert.Equal(t, "10", form["metadata[rental_id]"])
	assert.Equal(t, "rental-10-checkout", idempotencyKey)
}

func TestCreateCheckoutSession_SurfacesProviderMessage(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid currency: xyz"}}`))
	})

	_, err := gw.CreateCheckoutSession(context.Background(), CheckoutRequest{
		AmountCents: 100,
		Currency:    "xyz",
		Description: "Rental #1",
	})
	require.Error(t, err)

	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "Invalid currency: xyz", gwErr.Message)
}

func TestClampExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	gw := &StripeGateway{now: func() time.Time { return now }}

	assert.Equal(t, now.Add(31*time.Minute), gw.clampExpiry(now.Add(5*time.Minute)))
	assert.Equal(t, now.Add(45*time.Minute), gw.clampExpiry(now.Add(45*time.Minute)))
	assert.Equal(t, now.Add(24*time.Hour), gw.clampExpiry(now.Add(48*time.Hour)))
}

func TestVerifyWebhook(t *testing.T) {
	gw := NewStripeGateway(StripeConfig{SecretKey: "sk_test", WebhookSecret: "whsec_test"}, zap.NewNop())

	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_1", "object": "checkout.session", "metadata": {"rental_id": "10"}}}
	}`)

	t.Run("valid signature", func(t *testing.T) {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload:   payload,
			Secret:    "whsec_test",
			Timestamp: time.Now(),
		})

		evt, err := gw.VerifyWebhook(signed.Payload, signed.Header)
		require.NoError(t, err)
		assert.Equal(t, EventCheckoutCompleted, evt.Type)
		assert.Equal(t, "cs_1", evt.SessionID)
		assert.Equal(t, "10", evt.Metadata["rental_id"])
	})

	t.Run("wrong secret", func(t *testing.T) {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload:   payload,
			Secret:    "whsec_other",
			Timestamp: time.Now(),
		})

		_, err := gw.VerifyWebhook(signed.Payload, signed.Header)
		assert.Error(t, err)
	})

	t.Run("not configured", func(t *testing.T) {
		bare := NewStripeGateway(StripeConfig{SecretKey: "sk_test"}, zap.NewNop())
		_, err := bare.VerifyWebhook(payload, "t=1,v1=abc")
		assert.Error(t, err)
	})
}
