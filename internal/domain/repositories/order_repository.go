package repositories

import (
	"context"
	"math"

	"github.com/KretovDmitry/order-management-service/internal/domain/entities"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
)

// OrderFilter narrows the orders listing. Zero fields match everything.
type OrderFilter struct {
	CustomerID user.ID
	Status     entities.OrderStatus
}

// Pagination is a 1-based page over the listing ordered by creation time, newest first.
type Pagination struct {
	Page     int
	PageSize int
}

// Offset returns how many orders precede the page, saturating at math.MaxInt.
func (p Pagination) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

type OrderRepository interface {
	// CreateOrder assigns the order its ID and timestamps and persists it.
	CreateOrder(context.Context, *entities.Order) (entities.OrderID, error)
	GetOrder(context.Context, entities.OrderID) (*entities.Order, error)
	// ListOrders returns the requested page and the total count of matching orders.
	ListOrders(context.Context, OrderFilter, Pagination) ([]*entities.Order, int, error)
	UpdateOrderStatus(context.Context, entities.OrderID, entities.OrderStatus) (*entities.Order, error)
	DeleteOrder(context.Context, entities.OrderID) error
	Ping(context.Context) error
}
