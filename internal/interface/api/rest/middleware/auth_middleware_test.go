package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/application/policy"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
	"github.com/KretovDmitry/order-management-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct {
	tokens map[string]*user.User
	calls  int
	mu     sync.Mutex
}

func (m *mockAuthService) Login(context.Context, string, string) (*user.User, error) {
	return nil, errs.ErrInvalidCredentials
}

func (m *mockAuthService) BuildAuthToken(*user.User) (string, error) {
	return "", nil
}

func (m *mockAuthService) GetUserFromToken(_ context.Context, token string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	switch token {
	case "expired":
		return nil, errs.ErrTokenExpired
	case "forged":
		return nil, errs.ErrTokenSignature
	}
	u, ok := m.tokens[token]
	if !ok {
		return nil, errs.ErrTokenMalformed
	}
	return u, nil
}

func newMockAuthService() *mockAuthService {
	return &mockAuthService{tokens: map[string]*user.User{
		"customer": {ID: "u1", Role: user.RoleCustomer},
		"admin":    {ID: "a1", Role: user.RoleAdmin},
	}}
}

// echo responds with the id of the user found in the context.
var echo = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(u.ID))
})

func TestAuthenticate(t *testing.T) {
	l, _ := logger.NewForTest()
	handler := Authenticate(newMockAuthService(), l)(echo)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
		wantErr  string
	}{
		{name: "customer", header: "Bearer customer", wantCode: http.StatusOK, wantBody: "u1"},
		{name: "admin", header: "bearer admin", wantCode: http.StatusOK, wantBody: "a1"},
		{name: "no header", wantCode: http.StatusUnauthorized, wantErr: errs.ErrUnauthorized.Error()},
		{name: "basic scheme", header: "Basic abc", wantCode: http.StatusUnauthorized, wantErr: errs.ErrTokenMalformed.Error()},
		{name: "expired", header: "Bearer expired", wantCode: http.StatusUnauthorized, wantErr: errs.ErrTokenExpired.Error()},
		{name: "forged", header: "Bearer forged", wantCode: http.StatusUnauthorized, wantErr: errs.ErrTokenSignature.Error()},
		{name: "garbage", header: "Bearer garbage", wantCode: http.StatusUnauthorized, wantErr: errs.ErrTokenMalformed.Error()},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/orders", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			res := w.Result()
			defer res.Body.Close()

			require.Equal(t, tt.wantCode, res.StatusCode)
			if tt.wantErr == "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
				return
			}

			assert.Equal(t, "Bearer", res.Header.Get("WWW-Authenticate"))
			var body errs.JSON
			require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
			assert.Equal(t, tt.wantErr, body.Error)
		})
	}
}

func TestAuthenticateSkipsServiceWithoutHeader(t *testing.T) {
	l, _ := logger.NewForTest()
	service := newMockAuthService()
	handler := Authenticate(service, l)(echo)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, service.calls)
}

func TestPermit(t *testing.T) {
	l, _ := logger.NewForTest()

	// Reaching the handler means the body would have been read.
	var reached bool
	var mu sync.Mutex
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		reached = true
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	handler := Authenticate(newMockAuthService(), l)(Permit(policy.DeleteOrder, l)(next))

	r := httptest.NewRequest(http.MethodDelete, "/orders/1", nil)
	r.Header.Set("Authorization", "Bearer customer")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, reached)

	r = httptest.NewRequest(http.MethodDelete, "/orders/1", nil)
	r.Header.Set("Authorization", "Bearer admin")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, reached)
}

func TestPermitWithoutUser(t *testing.T) {
	l, _ := logger.NewForTest()
	handler := Permit(policy.UpdateOrder, l)(echo)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/orders/1", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
