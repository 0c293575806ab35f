package usecase

import (
	"context"
	"testing"

	"car-rental/internal/dto/request"
	"car-rental/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*memStore, AuthService) {
	t.Helper()
	store := newMemStore()
	cfg := &utils.Config{Session: utils.SessionConfig{ExpiryHours: 24}}
	return store, NewAuthService(store.repository(), cfg, testLog)
}

func TestRegisterLoginLogout(t *testing.T) {
	store, svc := newAuthFixture(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &request.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.NotEqual(t, "secret123", store.users[reg.UserID].PasswordHash)

	_, err = svc.Register(ctx, &request.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Login(ctx, &request.LoginRequest{Email: "ana@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	login, err := svc.Login(ctx, &request.LoginRequest{Email: "ana@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, login.UserID)

	require.NoError(t, svc.Logout(ctx, login.Token))
	assert.ErrorIs(t, svc.Logout(ctx, login.Token), ErrUnauthorized)
	assert.ErrorIs(t, svc.Logout(ctx, "not-a-uuid"), ErrUnauthorized)

	me, err := svc.CurrentUser(ctx, reg.UserID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", me.Email)
}

func TestRegister_Validation(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.Register(context.Background(), &request.RegisterRequest{Name: "", Email: "nope", Password: "short"})
	require.ErrorIs(t, err, ErrValidation)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "name")
	assert.Contains(t, vErr.Fields, "email")
	assert.Contains(t, vErr.Fields, "password")
}
