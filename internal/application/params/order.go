package params

import (
	"github.com/KretovDmitry/order-management-service/internal/domain/entities"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
	"github.com/KretovDmitry/order-management-service/internal/domain/repositories"
)

// CreateOrder holds a validated order payload. CustomerID and Status
// are the values requested by the client, empty when not given.
type CreateOrder struct {
	CustomerID user.ID
	Items      []entities.Item
	Status     entities.OrderStatus
}

type ListOrders struct {
	Filter     repositories.OrderFilter
	Pagination repositories.Pagination
}
