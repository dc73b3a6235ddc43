package interfaces

import (
	"context"

	"github.com/KretovDmitry/order-management-service/internal/application/params"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
)

// OrderService represents all service actions.
type OrderService interface {
	CreateOrder(context.Context, *user.User, *params.CreateOrder) (*entities.Order, error)
	GetOrder(context.Context, *user.User, entities.OrderID) (*entities.Order, error)
	ListOrders(context.Context, *user.User, *params.ListOrders) (*entities.OrderPage, error)
	UpdateOrderStatus(context.Context, *user.User, entities.OrderID, entities.OrderStatus) (*entities.Order, error)
	DeleteOrder(context.Context, *user.User, entities.OrderID) error
	// Ping checks the order storage is reachable.
	Ping(context.Context) error
}
