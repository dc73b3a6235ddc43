package memory

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
	"github.com/KretovDmitry/order-management-service/internal/domain/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(owner user.ID, status entities.OrderStatus) *entities.Order {
	return entities.NewOrder(owner, []entities.Item{
		{ProductID: "p001", Name: "Laptop", Quantity: 2, Price: decimal.RequireFromString("9.99")},
	}, status)
}

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	order := newOrder("u1", "")
	id, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, id, order.ID)
	assert.False(t, order.CreatedAt.IsZero())
	assert.Equal(t, order.CreatedAt, order.UpdatedAt)

	got, err := repo.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, order, got)

	// Mutating the returned value must not leak into the store.
	got.Items[0].Quantity = 100
	again, err := repo.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Items[0].Quantity)

	later := order.CreatedAt.Add(time.Second)
	repo.now = func() time.Time { return later }

	updated, err := repo.UpdateOrderStatus(ctx, id, entities.SHIPPED)
	require.NoError(t, err)
	assert.Equal(t, entities.SHIPPED, updated.Status)
	assert.Equal(t, order.CreatedAt, updated.CreatedAt)
	assert.Equal(t, later.UTC(), updated.UpdatedAt)

	require.NoError(t, repo.DeleteOrder(ctx, id))
	assert.ErrorIs(t, repo.DeleteOrder(ctx, id), errs.ErrNotFound)

	_, err = repo.GetOrder(ctx, id)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = repo.UpdateOrderStatus(ctx, id, entities.CANCELLED)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMalformedID(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	_, err := repo.GetOrder(ctx, "not-an-id")
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	assert.ErrorIs(t, repo.DeleteOrder(ctx, "not-an-id"), errs.ErrInvalidOrderID)
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := make([]entities.OrderID, 0, 5)
	for i := 0; i < 5; i++ {
		i := i
		repo.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		id, err := repo.CreateOrder(ctx, newOrder("u1", ""))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	// Someone else's order.
	_, err := repo.CreateOrder(ctx, newOrder("u2", ""))
	require.NoError(t, err)

	filter := repositories.OrderFilter{CustomerID: "u1"}

	seen := make([]entities.OrderID, 0, 5)
	for page := 1; page <= 3; page++ {
		orders, total, err := repo.ListOrders(ctx, filter, repositories.Pagination{Page: page, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		for _, o := range orders {
			seen = append(seen, o.ID)
		}
	}

	// Newest first, no overlap.
	assert.Equal(t, []entities.OrderID{ids[4], ids[3], ids[2], ids[1], ids[0]}, seen)

	for _, page := range []repositories.Pagination{
		{Page: 4, PageSize: 2},
		{Page: math.MaxInt, PageSize: 1},
		{Page: math.MaxInt, PageSize: 100},
	} {
		orders, total, err := repo.ListOrders(ctx, filter, page)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Empty(t, orders)
	}
}

func TestListSameTimestampKeepsCreationOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	frozen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return frozen }

	first, err := repo.CreateOrder(ctx, newOrder("u1", ""))
	require.NoError(t, err)
	second, err := repo.CreateOrder(ctx, newOrder("u1", ""))
	require.NoError(t, err)

	orders, _, err := repo.ListOrders(ctx, repositories.OrderFilter{}, repositories.Pagination{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second, orders[0].ID)
	assert.Equal(t, first, orders[1].ID)
}

func TestListStatusFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	for _, s := range []entities.OrderStatus{entities.PENDING, entities.SHIPPED, entities.SHIPPED} {
		_, err := repo.CreateOrder(ctx, newOrder("u1", s))
		require.NoError(t, err)
	}

	orders, total, err := repo.ListOrders(ctx,
		repositories.OrderFilter{Status: entities.SHIPPED},
		repositories.Pagination{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, o := range orders {
		assert.Equal(t, entities.SHIPPED, o.Status)
	}
}
