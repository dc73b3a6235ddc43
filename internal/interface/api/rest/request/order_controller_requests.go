package request

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/application/params"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
	"github.com/KretovDmitry/order-management-service/internal/domain/repositories"
	"github.com/shopspring/decimal"
)

// Prices are whole cents.
const priceScale = 2

// Price is a JSON number, quoted decimals are rejected.
type Price struct {
	decimal.Decimal
}

func (p *Price) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return &json.UnmarshalTypeError{Value: "string", Type: reflect.TypeOf(float64(0))}
	}
	return p.Decimal.UnmarshalJSON(b)
}

// OrderItem defines an order line of CreateOrder.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  *int   `json:"quantity"`
	Price     *Price `json:"price"`
}

// CreateOrder defines parameters for CreateOrder.
// Status and CustomerID are only honored for admins.
type CreateOrder struct {
	CustomerID string      `json:"customer_id"`
	Items      []OrderItem `json:"items"`
	Status     *string     `json:"status"`
}

// ToParams validates the payload, the first violation rejects it.
func (p *CreateOrder) ToParams() (*params.CreateOrder, error) {
	if len(p.Items) == 0 {
		return nil, errs.NewValidationError("items", "must contain at least one item")
	}

	items := make([]entities.Item, 0, len(p.Items))
	for i, item := range p.Items {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

		if item.ProductID == "" {
			return nil, errs.NewValidationError(field("product_id"), "is required")
		}
		if item.Quantity == nil {
			return nil, errs.NewValidationError(field("quantity"), "is required")
		}
		if *item.Quantity <= 0 {
			return nil, errs.NewValidationError(field("quantity"), "must be greater than 0, got %d", *item.Quantity)
		}
		if item.Price == nil {
			return nil, errs.NewValidationError(field("price"), "is required")
		}
		if item.Price.IsNegative() {
			return nil, errs.NewValidationError(field("price"), "must not be negative, got %s", item.Price)
		}
		if !item.Price.Equal(item.Price.Round(priceScale)) {
			return nil, errs.NewValidationError(field("price"), "must have at most 2 decimal places, got %s", item.Price)
		}

		items = append(items, entities.Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  *item.Quantity,
			Price:     item.Price.Decimal,
		})
	}

	var status entities.OrderStatus
	if p.Status != nil {
		s, err := entities.NewOrderStatus(*p.Status)
		if err != nil {
			return nil, err
		}
		status = s
	}

	return &params.CreateOrder{
		CustomerID: user.ID(p.CustomerID),
		Items:      items,
		Status:     status,
	}, nil
}

// UpdateOrder defines parameters for UpdateOrder.
type UpdateOrder struct {
	Status *string `json:"status"`
}

func (p *UpdateOrder) ToStatus() (entities.OrderStatus, error) {
	if p.Status == nil {
		return "", errs.NewValidationError("status", "is required")
	}
	return entities.NewOrderStatus(*p.Status)
}

// ParseListOrders reads the listing query: page, page_size (or limit),
// status and customer_id.
func ParseListOrders(q url.Values, defaultPageSize, maxPageSize int) (*params.ListOrders, error) {
	field, v := "page_size", q.Get("page_size")
	if v == "" {
		field, v = "limit", q.Get("limit")
	}

	pageSize := defaultPageSize
	if v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPageSize {
			return nil, errs.NewValidationError(field, "must be an integer between 1 and %d, got %q", maxPageSize, v)
		}
		pageSize = n
	}

	page := 1
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, errs.NewValidationError("page", "must be an integer >= 1, got %q", v)
		}
		// The offset of the page must fit in an int.
		if n-1 > math.MaxInt/pageSize {
			return nil, errs.NewValidationError("page", "is out of range for page size %d, got %q", pageSize, v)
		}
		page = n
	}

	var filter repositories.OrderFilter

	if v := q.Get("status"); v != "" {
		status, err := entities.NewOrderStatus(v)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}

	filter.CustomerID = user.ID(q.Get("customer_id"))

	return &params.ListOrders{
		Filter:     filter,
		Pagination: repositories.Pagination{Page: page, PageSize: pageSize},
	}, nil
}
