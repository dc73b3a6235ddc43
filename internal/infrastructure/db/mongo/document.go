package mongo

import (
	"fmt"
	"time"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
	"github.com/KretovDmitry/order-management-service/internal/domain/repositories"
	"github.com/juju/mgo/v3/bson"
	"github.com/shopspring/decimal"
)

// Prices are kept as decimal strings so no precision is lost on the way.
type itemDocument struct {
	ProductID string `bson:"product_id"`
	Name      string `bson:"name,omitempty"`
	Quantity  int    `bson:"quantity"`
	Price     string `bson:"price"`
}

type orderDocument struct {
	ID         bson.ObjectId  `bson:"_id"`
	CustomerID string         `bson:"customer_id"`
	Items      []itemDocument `bson:"items"`
	Status     string         `bson:"status"`
	TotalPrice string         `bson:"total_price"`
	CreatedAt  time.Time      `bson:"created_at"`
	UpdatedAt  time.Time      `bson:"updated_at"`
}

func newOrderDocument(o *entities.Order) *orderDocument {
	items := make([]itemDocument, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, itemDocument{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price.String(),
		})
	}

	return &orderDocument{
		ID:         bson.ObjectIdHex(string(o.ID)),
		CustomerID: string(o.CustomerID),
		Items:      items,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice().String(),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func (d *orderDocument) toEntity() (*entities.Order, error) {
	items := make([]entities.Item, 0, len(d.Items))
	for _, item := range d.Items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return nil, fmt.Errorf("order %s: item %s price %q: %w", d.ID.Hex(), item.ProductID, item.Price, err)
		}
		items = append(items, entities.Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     price,
		})
	}

	return &entities.Order{
		ID:         entities.OrderID(d.ID.Hex()),
		CustomerID: user.ID(d.CustomerID),
		Items:      items,
		Status:     entities.OrderStatus(d.Status),
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}, nil
}

// objectID converts the public order id, rejecting anything mongo could not have issued.
func objectID(id entities.OrderID) (bson.ObjectId, error) {
	if !bson.IsObjectIdHex(string(id)) {
		return "", errs.ErrInvalidOrderID
	}
	return bson.ObjectIdHex(string(id)), nil
}

// filterQuery translates the listing filter, zero fields are left out.
func filterQuery(f repositories.OrderFilter) bson.M {
	q := bson.M{}
	if f.CustomerID != "" {
		q["customer_id"] = string(f.CustomerID)
	}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	return q
}
