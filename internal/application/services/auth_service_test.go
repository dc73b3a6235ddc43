package services

import (
	"context"
	"testing"
	"time"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/config"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
	"github.com/KretovDmitry/order-management-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T, expiration time.Duration) *AuthService {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("gopher"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		JWT: config.JWT{SigningKey: "test-secret", Expiration: expiration},
		Users: []config.User{
			{ID: "u1", Login: "customer", PasswordHash: string(hash), Role: "customer"},
			{ID: "a1", Login: "admin", PasswordHash: string(hash), Role: "admin"},
		},
	}

	l, _ := logger.NewForTest()
	s, err := NewAuthService(cfg, l)
	require.NoError(t, err)
	return s
}

func TestNewAuthService(t *testing.T) {
	l, _ := logger.NewForTest()

	_, err := NewAuthService(nil, l)
	assert.Error(t, err)

	_, err = NewAuthService(&config.Config{}, l)
	assert.Error(t, err)

	_, err = NewAuthService(&config.Config{
		JWT:   config.JWT{SigningKey: "k"},
		Users: []config.User{{ID: "1", Login: "a"}, {ID: "2", Login: "a"}},
	}, l)
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	s := newTestAuthService(t, time.Minute)
	ctx := context.Background()

	tests := []struct {
		name     string
		login    string
		password string
		want     *user.User
		wantErr  error
	}{
		{name: "customer", login: "customer", password: "gopher", want: &user.User{ID: "u1", Role: user.RoleCustomer}},
		{name: "admin", login: "admin", password: "gopher", want: &user.User{ID: "a1", Role: user.RoleAdmin}},
		{name: "wrong password", login: "customer", password: "nope", wantErr: errs.ErrInvalidCredentials},
		{name: "unknown login", login: "ghost", password: "gopher", wantErr: errs.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := s.Login(ctx, tt.login, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestAuthService(t, time.Minute)
	ctx := context.Background()

	u, err := s.Login(ctx, "admin", "gopher")
	require.NoError(t, err)

	token, err := s.BuildAuthToken(u)
	require.NoError(t, err)

	got, err := s.GetUserFromToken(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestExpiredToken(t *testing.T) {
	s := newTestAuthService(t, -time.Minute)
	ctx := context.Background()

	token, err := s.BuildAuthToken(&user.User{ID: "u1", Role: user.RoleCustomer})
	require.NoError(t, err)

	_, err = s.GetUserFromToken(ctx, token)
	assert.ErrorIs(t, err, errs.ErrTokenExpired)
	assert.Equal(t, errs.ErrTokenExpired, errs.AuthError(err))
}
