package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities"
	"github.com/KretovDmitry/order-management-service/internal/domain/repositories"
	"github.com/google/uuid"
)

// record keeps the insertion sequence to break ties between equal timestamps.
type record struct {
	order entities.Order
	seq   uint64
}

// OrderRepository keeps orders in process memory.
type OrderRepository struct {
	mu     sync.RWMutex
	seq    uint64
	orders map[entities.OrderID]*record
	now    func() time.Time
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[entities.OrderID]*record),
		now:    time.Now,
	}
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

func (r *OrderRepository) CreateOrder(_ context.Context, order *entities.Order) (entities.OrderID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC().Truncate(time.Millisecond)

	order.ID = entities.OrderID(uuid.NewString())
	order.CreatedAt = now
	order.UpdatedAt = now

	r.seq++
	r.orders[order.ID] = &record{order: clone(order), seq: r.seq}

	return order.ID, nil
}

func (r *OrderRepository) GetOrder(_ context.Context, id entities.OrderID) (*entities.Order, error) {
	if _, err := uuid.Parse(string(id)); err != nil {
		return nil, errs.ErrInvalidOrderID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.orders[id]
	if !ok {
		return nil, errs.ErrNotFound
	}

	o := clone(&rec.order)
	return &o, nil
}

func (r *OrderRepository) ListOrders(
	_ context.Context, filter repositories.OrderFilter, page repositories.Pagination,
) ([]*entities.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*record, 0)
	for _, rec := range r.orders {
		if filter.CustomerID != "" && rec.order.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && rec.order.Status != filter.Status {
			continue
		}
		matched = append(matched, rec)
	}

	// Newest first.
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.order.CreatedAt.Equal(b.order.CreatedAt) {
			return a.order.CreatedAt.After(b.order.CreatedAt)
		}
		return a.seq > b.seq
	})

	total := len(matched)

	from := min(page.Offset(), total)
	to := total
	if page.PageSize > 0 {
		to = min(from+page.PageSize, total)
	}

	orders := make([]*entities.Order, 0, to-from)
	for _, rec := range matched[from:to] {
		o := clone(&rec.order)
		orders = append(orders, &o)
	}

	return orders, total, nil
}

func (r *OrderRepository) UpdateOrderStatus(
	_ context.Context, id entities.OrderID, status entities.OrderStatus,
) (*entities.Order, error) {
	if _, err := uuid.Parse(string(id)); err != nil {
		return nil, errs.ErrInvalidOrderID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.orders[id]
	if !ok {
		return nil, errs.ErrNotFound
	}

	rec.order.Status = status
	rec.order.UpdatedAt = r.now().UTC().Truncate(time.Millisecond)

	o := clone(&rec.order)
	return &o, nil
}

func (r *OrderRepository) DeleteOrder(_ context.Context, id entities.OrderID) error {
	if _, err := uuid.Parse(string(id)); err != nil {
		return errs.ErrInvalidOrderID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.orders, id)

	return nil
}

func (r *OrderRepository) Ping(context.Context) error {
	return nil
}

// clone copies the order so callers never share the items slice with the store.
func clone(o *entities.Order) entities.Order {
	c := *o
	c.Items = append([]entities.Item(nil), o.Items...)
	return c
}
