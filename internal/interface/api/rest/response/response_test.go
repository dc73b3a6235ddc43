package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantBody   errs.JSON
		wantHeader string
	}{
		{
			name:       "missing header",
			err:        errs.ErrUnauthorized,
			wantCode:   http.StatusUnauthorized,
			wantBody:   errs.JSON{Error: "authorization header required"},
			wantHeader: "Bearer",
		},
		{
			name:       "expired token",
			err:        fmt.Errorf("parse token: %w", errs.ErrTokenExpired),
			wantCode:   http.StatusUnauthorized,
			wantBody:   errs.JSON{Error: "token expired"},
			wantHeader: "Bearer",
		},
		{
			name:       "unknown login hides details",
			err:        fmt.Errorf("%w: user with login %q not found", errs.ErrInvalidCredentials, "ghost"),
			wantCode:   http.StatusUnauthorized,
			wantBody:   errs.JSON{Error: "invalid login or password"},
			wantHeader: "Bearer",
		},
		{
			name:     "validation",
			err:      fmt.Errorf("create order: %w", errs.NewValidationError("items[0].quantity", "must be greater than 0, got %d", 0)),
			wantCode: http.StatusBadRequest,
			wantBody: errs.JSON{
				Error:      "invalid request: items[0].quantity must be greater than 0, got 0",
				Field:      "items[0].quantity",
				Constraint: "must be greater than 0, got 0",
			},
		},
		{
			name:     "forbidden",
			err:      fmt.Errorf("%w: update admin_required", errs.ErrForbidden),
			wantCode: http.StatusForbidden,
			wantBody: errs.JSON{Error: "forbidden"},
		},
		{
			name:     "not found",
			err:      fmt.Errorf("get order 1: %w", errs.ErrNotFound),
			wantCode: http.StatusNotFound,
			wantBody: errs.JSON{Error: "not found"},
		},
		{
			name:     "conflict",
			err:      fmt.Errorf("%w: duplicate key", errs.ErrDataConflict),
			wantCode: http.StatusConflict,
			wantBody: errs.JSON{Error: "data conflict"},
		},
		{
			name:     "storage down",
			err:      fmt.Errorf("%w: no reachable servers", errs.ErrStorageUnavailable),
			wantCode: http.StatusBadGateway,
			wantBody: errs.JSON{Error: MsgStorageUnavailable},
		},
		{
			name:     "deadline",
			err:      fmt.Errorf("list orders: %w", context.DeadlineExceeded),
			wantCode: http.StatusGatewayTimeout,
			wantBody: errs.JSON{Error: MsgTimeout},
		},
		{
			name:     "internal hides cause",
			err:      errors.New("connection string contains password"),
			wantCode: http.StatusInternalServerError,
			wantBody: errs.JSON{Error: MsgInternal},
		},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			code := WriteError(w, tt.err)

			res := w.Result()
			defer res.Body.Close()

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantCode, res.StatusCode)
			assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
			assert.Equal(t, tt.wantHeader, res.Header.Get("WWW-Authenticate"))

			var body errs.JSON
			require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestNewOrderFromEntity(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	order := &entities.Order{
		ID:         "o1",
		CustomerID: "u1",
		Items: []entities.Item{
			{ProductID: "p001", Quantity: 2, Price: decimal.RequireFromString("9.99")},
			{ProductID: "p002", Quantity: 1, Price: decimal.RequireFromString("5")},
		},
		Status:    entities.PENDING,
		CreatedAt: now,
		UpdatedAt: now,
	}

	b, err := json.Marshal(NewOrderFromEntity(order))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "o1",
		"customer_id": "u1",
		"items": [
			{"product_id": "p001", "quantity": 2, "price": 9.99},
			{"product_id": "p002", "quantity": 1, "price": 5.00}
		],
		"total_price": 24.98,
		"status": "Pending",
		"created_at": "2024-01-02T03:04:05Z",
		"updated_at": "2024-01-02T03:04:05Z"
	}`, string(b))
}

func TestNewListOrdersFromEntity(t *testing.T) {
	page := &entities.OrderPage{
		Orders:   []*entities.Order{{ID: "o1"}, {ID: "o2"}},
		Total:    5,
		Page:     1,
		PageSize: 2,
	}

	got := NewListOrdersFromEntity(page)
	assert.Len(t, got.Orders, 2)
	assert.Equal(t, 5, got.Total)
	assert.Equal(t, 2, got.Limit)
	assert.Equal(t, 3, got.TotalPages)

	empty := NewListOrdersFromEntity(&entities.OrderPage{Page: 1, PageSize: 10})
	b, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"orders":[],"total":0,"page":1,"limit":10,"total_pages":0}`, string(b))
}

func TestNewLogin(t *testing.T) {
	got := NewLogin("token", 30*time.Minute)
	assert.Equal(t, &Login{AccessToken: "token", TokenType: "bearer", ExpiresIn: 1800}, got)
}
