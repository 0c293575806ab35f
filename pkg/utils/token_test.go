package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackSigner_RoundTrip(t *testing.T) {
	s := NewCallbackSigner("secret", 30*time.Minute)
	now := time.Now()

	token, err := s.Sign(10, CallbackPaymentSuccess, now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.NoError(t, s.Verify(token, 10, CallbackPaymentSuccess))
	assert.ErrorIs(t, s.Verify(token, 11, CallbackPaymentSuccess), ErrInvalidCallbackToken)
	assert.ErrorIs(t, s.Verify("", 10, CallbackPaymentSuccess), ErrInvalidCallbackToken)
	assert.ErrorIs(t, s.Verify("garbage", 10, CallbackPaymentSuccess), ErrInvalidCallbackToken)
}

func TestCallbackSigner_Expired(t *testing.T) {
	s := NewCallbackSigner("secret", time.Minute)

	token, err := s.Sign(10, CallbackPaymentSuccess, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Verify(token, 10, CallbackPaymentSuccess), ErrInvalidCallbackToken)
}

func TestCallbackSigner_OtherSecret(t *testing.T) {
	token, err := NewCallbackSigner("a", time.Minute).Sign(10, CallbackPaymentSuccess, time.Now())
	require.NoError(t, err)

	assert.ErrorIs(t, NewCallbackSigner("b", time.Minute).Verify(token, 10, CallbackPaymentSuccess), ErrInvalidCallbackToken)
}

func TestCallbackSigner_Disabled(t *testing.T) {
	s := NewCallbackSigner("", time.Minute)
	assert.False(t, s.Enabled())

	token, err := s.Sign(10, CallbackPaymentSuccess, time.Now())
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.NoError(t, s.Verify("", 10, CallbackPaymentSuccess))

	var nilSigner *CallbackSigner
	assert.False(t, nilSigner.Enabled())
	assert.NoError(t, nilSigner.Verify("", 10, CallbackPaymentSuccess))
}

func TestCallbackSigner_BoundToPurpose(t *testing.T) {
	s := NewCallbackSigner("secret", 30*time.Minute)

	cancelToken, err := s.Sign(10, CallbackPaymentCancel, time.Now())
	require.NoError(t, err)
	successToken, err := s.Sign(10, CallbackPaymentSuccess, time.Now())
	require.NoError(t, err)

	assert.NotEqual(t, cancelToken, successToken)
	assert.NoError(t, s.Verify(cancelToken, 10, CallbackPaymentCancel))
	assert.ErrorIs(t, s.Verify(cancelToken, 10, CallbackPaymentSuccess), ErrInvalidCallbackToken)
	assert.ErrorIs(t, s.Verify(successToken, 10, CallbackPaymentCancel), ErrInvalidCallbackToken)
}
