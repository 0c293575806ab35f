package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidCallbackToken = errors.New("invalid callback token")

// Callback purposes, carried as the token audience so a cancel link cannot
// be replayed against the success route.
const (
	CallbackPaymentSuccess = "payment-success"
	CallbackPaymentCancel  = "payment-cancel"
)

// CallbackSigner issues and checks the short-lived tokens appended to the
// checkout success/cancel URLs. A signer with an empty secret is disabled:
// it issues no tokens and accepts every callback.
type CallbackSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewCallbackSigner(secret string, ttl time.Duration) *CallbackSigner {
	return &CallbackSigner{secret: []byte(secret), ttl: ttl}
}

func (s *CallbackSigner) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// Sign returns a token bound to rentalID and purpose, or "" when signing is
// disabled.
func (s *CallbackSigner) Sign(rentalID int64, purpose string, now time.Time) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(rentalID, 10),
		Audience:  jwt.ClaimStrings{purpose},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks that token was issued for rentalID and purpose and has not
// expired.
func (s *CallbackSigner) Verify(token string, rentalID int64, purpose string) error {
	if !s.Enabled() {
		return nil
	}
	if token == "" {
		return ErrInvalidCallbackToken
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithAudience(purpose))
	if err != nil || !parsed.Valid {
		return ErrInvalidCallbackToken
	}

	if claims.Subject != strconv.FormatInt(rentalID, 10) {
		return ErrInvalidCallbackToken
	}
	return nil
}
