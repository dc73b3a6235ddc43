package response

import (
	"encoding/json"
	"time"

	"github.com/KretovDmitry/order-management-service/internal/domain/entities"
	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ProductID string      `json:"product_id"`
	Name      string      `json:"name,omitempty"`
	Quantity  int         `json:"quantity"`
	Price     json.Number `json:"price"`
}

type Order struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customer_id"`
	Items      []OrderItem `json:"items"`
	TotalPrice json.Number `json:"total_price"`
	Status     string      `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func NewOrderFromEntity(e *entities.Order) *Order {
	items := make([]OrderItem, len(e.Items))
	for i, item := range e.Items {
		items[i] = OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     money(item.Price),
		}
	}

	return &Order{
		ID:         string(e.ID),
		CustomerID: string(e.CustomerID),
		Items:      items,
		TotalPrice: money(e.TotalPrice()),
		Status:     string(e.Status),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

type ListOrders struct {
	Orders     []*Order `json:"orders"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"total_pages"`
}

func NewListOrdersFromEntity(e *entities.OrderPage) *ListOrders {
	orders := make([]*Order, len(e.Orders))
	for i, order := range e.Orders {
		orders[i] = NewOrderFromEntity(order)
	}

	return &ListOrders{
		Orders:     orders,
		Total:      e.Total,
		Page:       e.Page,
		Limit:      e.PageSize,
		TotalPages: e.TotalPages(),
	}
}

// money renders an amount as a JSON number with two fraction digits.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
