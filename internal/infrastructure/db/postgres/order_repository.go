package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
	"github.com/KretovDmitry/order-management-service/internal/domain/repositories"
	"github.com/KretovDmitry/order-management-service/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type OrderRepository struct {
	db     *sql.DB
	getter *trmsql.CtxGetter
	trm    *manager.Manager
	logger logger.Logger
	now    func() time.Time
}

func NewOrderRepository(
	db *sql.DB, getter *trmsql.CtxGetter, trm *manager.Manager, logger logger.Logger,
) (*OrderRepository, error) {
	if db == nil {
		return nil, errors.New("nil dependency: database")
	}
	if getter == nil {
		return nil, errors.New("nil dependency: transaction getter")
	}
	if trm == nil {
		return nil, errors.New("nil dependency: transaction manager")
	}
	if logger == nil {
		return nil, errors.New("nil dependency: logger")
	}

	return &OrderRepository{db: db, getter: getter, trm: trm, logger: logger, now: time.Now}, nil
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

// document is the JSONB payload of an order row.
type document struct {
	Items      []item `json:"items"`
	TotalPrice string `json:"total_price"`
}

type item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *entities.Order) (entities.OrderID, error) {
	const query = `
		INSERT INTO orders (id, customer_id, status, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`

	doc, err := marshalDocument(order)
	if err != nil {
		return "", err
	}

	id := uuid.New()
	now := r.now().UTC().Truncate(time.Millisecond)

	_, err = r.getter.DefaultTrOrDB(ctx, r.db).
		ExecContext(ctx, query, id, string(order.CustomerID), string(order.Status), string(doc), now)
	if err != nil {
		return "", r.mapErr(ctx, fmt.Errorf("create order: %w", err))
	}

	order.ID = entities.OrderID(id.String())
	order.CreatedAt = now
	order.UpdatedAt = now

	return order.ID, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id entities.OrderID) (*entities.Order, error) {
	const query = `
		SELECT id, customer_id, status, document, created_at, updated_at
		FROM orders WHERE id = $1
	`

	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	row := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, uid)

	order, err := scanOrder(row)
	if err != nil {
		return nil, r.mapErr(ctx, err)
	}

	return order, nil
}

func (r *OrderRepository) ListOrders(
	ctx context.Context, filter repositories.OrderFilter, page repositories.Pagination,
) ([]*entities.Order, int, error) {
	const (
		// The count and the page must see the same snapshot.
		begin = "SET TRANSACTION ISOLATION LEVEL REPEATABLE READ, READ ONLY"
		count = `
			SELECT count(*) FROM orders
			WHERE ($1 = '' OR customer_id = $1) AND ($2 = '' OR status = $2)
		`
		query = `
			SELECT id, customer_id, status, document, created_at, updated_at
			FROM orders
			WHERE ($1 = '' OR customer_id = $1) AND ($2 = '' OR status = $2)
			ORDER BY created_at DESC, id DESC
			LIMIT NULLIF($3::bigint, 0) OFFSET $4::bigint
		`
	)

	var (
		total  int
		orders = make([]*entities.Order, 0, page.PageSize)
	)

	customerID, status := string(filter.CustomerID), string(filter.Status)

	err := r.trm.Do(ctx, func(ctx context.Context) error {
		tx := r.getter.DefaultTrOrDB(ctx, r.db)

		if _, err := tx.ExecContext(ctx, begin); err != nil {
			return fmt.Errorf("begin snapshot: %w", err)
		}

		if err := tx.QueryRowContext(ctx, count, customerID, status).Scan(&total); err != nil {
			return fmt.Errorf("count orders: %w", err)
		}

		rows, err := tx.QueryContext(ctx, query, customerID, status, page.PageSize, page.Offset())
		if err != nil {
			return fmt.Errorf("select orders: %w", err)
		}

		defer func() {
			if err = rows.Close(); err != nil {
				r.logger.Errorf("close rows: %s", err)
			}
		}()

		for rows.Next() {
			order, err := scanOrder(rows)
			if err != nil {
				return err
			}
			orders = append(orders, order)
		}

		// Rows.Err will report the last error encountered by Rows.Scan.
		return rows.Err()
	})
	if err != nil {
		return nil, 0, r.mapErr(ctx, err)
	}

	return orders, total, nil
}

func (r *OrderRepository) UpdateOrderStatus(
	ctx context.Context, id entities.OrderID, status entities.OrderStatus,
) (*entities.Order, error) {
	const query = `
		UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1
		RETURNING id, customer_id, status, document, created_at, updated_at
	`

	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC().Truncate(time.Millisecond)
	row := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, uid, string(status), now)

	order, err := scanOrder(row)
	if err != nil {
		return nil, r.mapErr(ctx, err)
	}

	return order, nil
}

func (r *OrderRepository) DeleteOrder(ctx context.Context, id entities.OrderID) error {
	const query = "DELETE FROM orders WHERE id = $1"

	uid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, uid)
	if err != nil {
		return r.mapErr(ctx, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return r.mapErr(ctx, err)
	}
	if n == 0 {
		return errs.ErrNotFound
	}

	return nil
}

func (r *OrderRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return r.mapErr(ctx, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*entities.Order, error) {
	var (
		order    entities.Order
		id       uuid.UUID
		customer string
		status   string
		raw      []byte
	)

	if err := row.Scan(&id, &customer, &status, &raw, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("order %s: decode document: %w", id, err)
	}

	order.ID = entities.OrderID(id.String())
	order.CustomerID = user.ID(customer)
	order.Status = entities.OrderStatus(status)
	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.UpdatedAt.UTC()
	order.Items = make([]entities.Item, 0, len(doc.Items))
	for _, i := range doc.Items {
		order.Items = append(order.Items, entities.Item{
			ProductID: i.ProductID,
			Name:      i.Name,
			Quantity:  i.Quantity,
			Price:     i.Price,
		})
	}

	return &order, nil
}

func marshalDocument(order *entities.Order) ([]byte, error) {
	doc := document{
		Items:      make([]item, 0, len(order.Items)),
		TotalPrice: order.TotalPrice().String(),
	}
	for _, i := range order.Items {
		doc.Items = append(doc.Items, item{
			ProductID: i.ProductID,
			Name:      i.Name,
			Quantity:  i.Quantity,
			Price:     i.Price,
		})
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

func parseID(id entities.OrderID) (uuid.UUID, error) {
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return uuid.Nil, errs.ErrInvalidOrderID
	}
	return uid, nil
}

// mapErr translates driver errors to the application ones.
func (r *OrderRepository) mapErr(ctx context.Context, err error) error {
	var (
		pgErr   *pgconn.PgError
		connErr *pgconn.ConnectError
		netErr  net.Error
	)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return errs.ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %s", errs.ErrDataConflict, pgErr.Detail)
	case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.QueryCanceled && ctx.Err() != nil:
		return ctx.Err()
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.As(err, &pgErr) && pgerrcode.IsConnectionException(pgErr.Code),
		errors.As(err, &connErr),
		errors.As(err, &netErr),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone):
		r.logger.With(ctx).Errorf("postgres unavailable: %s", err)
		return fmt.Errorf("%w: %s", errs.ErrStorageUnavailable, err)
	default:
		return err
	}
}
