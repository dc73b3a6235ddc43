package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/application/interfaces"
	"github.com/KretovDmitry/order-management-service/internal/application/params"
	"github.com/KretovDmitry/order-management-service/internal/application/policy"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
	"github.com/KretovDmitry/order-management-service/internal/domain/repositories"
	"github.com/KretovDmitry/order-management-service/pkg/logger"
)

type OrderService struct {
	repo   repositories.OrderRepository
	logger logger.Logger
}

func NewOrderService(repo repositories.OrderRepository, logger logger.Logger) (*OrderService, error) {
	if repo == nil {
		return nil, errors.New("nil dependency: order repository")
	}
	if logger == nil {
		return nil, errors.New("nil dependency: logger")
	}
	return &OrderService{repo: repo, logger: logger}, nil
}

var _ interfaces.OrderService = (*OrderService)(nil)

// Create new order. Customers always create pending orders of their own.
func (s *OrderService) CreateOrder(ctx context.Context, u *user.User, p *params.CreateOrder) (*entities.Order, error) {
	decision, err := authorize(u, policy.CreateOrder, "")
	if err != nil {
		return nil, err
	}

	owner, status := p.CustomerID, p.Status
	if decision.Restricted || owner == "" {
		owner = u.ID
	}
	if decision.Restricted {
		status = entities.PENDING
	}

	order := entities.NewOrder(owner, p.Items, status)

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	if _, err = s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.With(ctx, "order_id", order.ID, "customer_id", order.CustomerID).
		Infof("order created by %s %s", u.Role, u.ID)

	return order, nil
}

// Get order by id. A foreign order is reported as missing to customers.
func (s *OrderService) GetOrder(ctx context.Context, u *user.User, id entities.OrderID) (*entities.Order, error) {
	if u == nil {
		return nil, errs.ErrUnauthorized
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}

	if decision := policy.Authorize(u, policy.ReadOrder, order.CustomerID); !decision.Allowed {
		s.logger.With(ctx, "order_id", id).
			Warnf("read of order denied for %s: %s", u.ID, decision.Reason)
		return nil, fmt.Errorf("get order %s: %w", id, errs.ErrNotFound)
	}

	return order, nil
}

// List orders. Customers only ever see their own.
func (s *OrderService) ListOrders(ctx context.Context, u *user.User, p *params.ListOrders) (*entities.OrderPage, error) {
	decision, err := authorize(u, policy.ListOrders, "")
	if err != nil {
		return nil, err
	}

	filter := p.Filter
	if decision.Restricted {
		filter.CustomerID = u.ID
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	orders, total, err := s.repo.ListOrders(ctx, filter, p.Pagination)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return &entities.OrderPage{
		Orders:   orders,
		Total:    total,
		Page:     p.Pagination.Page,
		PageSize: p.Pagination.PageSize,
	}, nil
}

// Update order status. Admins only.
func (s *OrderService) UpdateOrderStatus(
	ctx context.Context, u *user.User, id entities.OrderID, status entities.OrderStatus,
) (*entities.Order, error) {
	if _, err := authorize(u, policy.UpdateOrder, ""); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	order, err := s.repo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}

	s.logger.With(ctx, "order_id", id, "status", status).
		Infof("order status changed by %s", u.ID)

	return order, nil
}

// Delete order. Admins only.
func (s *OrderService) DeleteOrder(ctx context.Context, u *user.User, id entities.OrderID) error {
	if _, err := authorize(u, policy.DeleteOrder, ""); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}

	s.logger.With(ctx, "order_id", id).Infof("order deleted by %s", u.ID)

	return nil
}

func (s *OrderService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// authorize turns a denying policy decision into an error.
func authorize(u *user.User, op policy.Operation, owner user.ID) (policy.Decision, error) {
	decision := policy.Authorize(u, op, owner)

	switch {
	case decision.Allowed:
		return decision, nil
	case decision.Reason == policy.ReasonUnauthenticated:
		return decision, errs.ErrUnauthorized
	default:
		return decision, fmt.Errorf("%w: %s %s", errs.ErrForbidden, op, decision.Reason)
	}
}
