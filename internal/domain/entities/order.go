package entities

import (
	"time"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	PENDING    OrderStatus = "Pending"
	PROCESSING OrderStatus = "Processing"
	SHIPPED    OrderStatus = "Shipped"
	DELIVERED  OrderStatus = "Delivered"
	CANCELLED  OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in the order they usually happen.
var OrderStatuses = []OrderStatus{PENDING, PROCESSING, SHIPPED, DELIVERED, CANCELLED}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// NewOrderStatus creates a selfvalidating order status.
func NewOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !status.Valid() {
		return "", errs.NewValidationError("status",
			"must be one of Pending, Processing, Shipped, Delivered, Cancelled, got %q", s)
	}
	return status, nil
}

type OrderID string

// Item is an order line.
type Item struct {
	ProductID string
	Name      string
	Quantity  int
	Price     decimal.Decimal
}

// Subtotal is the price of all units of the line.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID         OrderID
	CustomerID user.ID
	Items      []Item
	Status     OrderStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewOrder creates an order not yet persisted. Empty status means Pending.
func NewOrder(customerID user.ID, items []Item, status OrderStatus) *Order {
	if status == "" {
		status = PENDING
	}
	return &Order{
		CustomerID: customerID,
		Items:      items,
		Status:     status,
	}
}

// TotalPrice sums subtotals of all items.
func (o *Order) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// OrderPage is a slice of the orders listing.
type OrderPage struct {
	Orders   []*Order
	Total    int
	Page     int
	PageSize int
}

// TotalPages returns how many pages of PageSize the listing holds.
func (p *OrderPage) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}
