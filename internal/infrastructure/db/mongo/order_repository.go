package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/config"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities"
	"github.com/KretovDmitry/order-management-service/internal/domain/repositories"
	"github.com/KretovDmitry/order-management-service/pkg/logger"
	"github.com/juju/mgo/v3"
	"github.com/juju/mgo/v3/bson"
)

// Server side error code of an operation that ran out of maxTimeMS.
const codeMaxTimeMSExpired = 50

// Newest first, the id keeps the order stable between equal timestamps.
var listSort = []string{"-created_at", "-_id"}

type OrderRepository struct {
	session    *mgo.Session
	database   string
	collection string
	timeout    time.Duration
	logger     logger.Logger
	now        func() time.Time
}

func NewOrderRepository(session *mgo.Session, cfg config.Storage, logger logger.Logger) (*OrderRepository, error) {
	if session == nil {
		return nil, errors.New("nil dependency: mongodb session")
	}
	if logger == nil {
		return nil, errors.New("nil dependency: logger")
	}
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, errors.New("mongodb database and collection are required")
	}

	return &OrderRepository{
		session:    session,
		database:   cfg.Database,
		collection: cfg.Collection,
		timeout:    cfg.OperationTimeout,
		logger:     logger,
		now:        time.Now,
	}, nil
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

// EnsureIndexes creates the indexes backing the listing queries.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	c, done, err := r.c(ctx)
	if err != nil {
		return err
	}
	defer done()

	indexes := []mgo.Index{
		{Key: []string{"-created_at", "-_id"}, Background: true},
		{Key: []string{"customer_id", "-created_at"}, Background: true},
		{Key: []string{"status", "-created_at"}, Background: true},
	}
	for _, index := range indexes {
		if err = c.EnsureIndex(index); err != nil {
			return fmt.Errorf("ensure index %v: %w", index.Key, r.mapErr(ctx, err))
		}
	}

	return nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *entities.Order) (entities.OrderID, error) {
	c, done, err := r.c(ctx)
	if err != nil {
		return "", err
	}
	defer done()

	now := r.now().UTC().Truncate(time.Millisecond)

	order.ID = entities.OrderID(bson.NewObjectId().Hex())
	order.CreatedAt = now
	order.UpdatedAt = now

	if err = c.Insert(newOrderDocument(order)); err != nil {
		order.ID = ""
		return "", r.mapErr(ctx, err)
	}

	return order.ID, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id entities.OrderID) (*entities.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	c, done, err := r.c(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	doc := new(orderDocument)
	if err = r.withMaxTime(ctx, c.FindId(oid)).One(doc); err != nil {
		return nil, r.mapErr(ctx, err)
	}

	return doc.toEntity()
}

func (r *OrderRepository) ListOrders(
	ctx context.Context, filter repositories.OrderFilter, page repositories.Pagination,
) ([]*entities.Order, int, error) {
	c, done, err := r.c(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer done()

	query := filterQuery(filter)

	total, err := r.withMaxTime(ctx, c.Find(query)).Count()
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", r.mapErr(ctx, err))
	}

	// mgo keeps the skip in an int32.
	offset := page.Offset()
	if offset >= total {
		return []*entities.Order{}, total, nil
	}

	q := r.withMaxTime(ctx, c.Find(query)).Sort(listSort...).Skip(offset)
	if page.PageSize > 0 {
		q = q.Limit(page.PageSize)
	}

	docs := make([]orderDocument, 0, page.PageSize)
	if err = q.All(&docs); err != nil {
		return nil, 0, fmt.Errorf("find orders: %w", r.mapErr(ctx, err))
	}

	orders := make([]*entities.Order, 0, len(docs))
	for i := range docs {
		order, err := docs[i].toEntity()
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}

	return orders, total, nil
}

func (r *OrderRepository) UpdateOrderStatus(
	ctx context.Context, id entities.OrderID, status entities.OrderStatus,
) (*entities.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	c, done, err := r.c(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	change := mgo.Change{
		Update: bson.M{"$set": bson.M{
			"status":     string(status),
			"updated_at": r.now().UTC().Truncate(time.Millisecond),
		}},
		ReturnNew: true,
	}

	doc := new(orderDocument)
	if _, err = c.FindId(oid).Apply(change, doc); err != nil {
		return nil, r.mapErr(ctx, err)
	}

	return doc.toEntity()
}

func (r *OrderRepository) DeleteOrder(ctx context.Context, id entities.OrderID) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	c, done, err := r.c(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err = c.RemoveId(oid); err != nil {
		return r.mapErr(ctx, err)
	}

	return nil
}

func (r *OrderRepository) Ping(ctx context.Context) error {
	s, err := r.copySession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err = s.Ping(); err != nil {
		return r.mapErr(ctx, err)
	}
	return nil
}

// c returns the orders collection on a session of its own.
// The returned func must be called to give the socket back to the pool.
func (r *OrderRepository) c(ctx context.Context) (*mgo.Collection, func(), error) {
	s, err := r.copySession(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s.DB(r.database).C(r.collection), s.Close, nil
}

// copySession bounds socket operations by whatever comes first,
// the context deadline or the configured operation timeout.
func (r *OrderRepository) copySession(ctx context.Context) (*mgo.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := r.session.Copy()
	if timeout := r.deadline(ctx); timeout > 0 {
		s.SetSocketTimeout(timeout)
	}
	return s, nil
}

func (r *OrderRepository) withMaxTime(ctx context.Context, q *mgo.Query) *mgo.Query {
	if timeout := r.deadline(ctx); timeout > 0 {
		return q.SetMaxTime(timeout)
	}
	return q
}

func (r *OrderRepository) deadline(ctx context.Context) time.Duration {
	timeout := r.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); timeout <= 0 || left < timeout {
			timeout = left
		}
	}
	return timeout
}

// mapErr translates driver errors to the application ones.
func (r *OrderRepository) mapErr(ctx context.Context, err error) error {
	var qerr *mgo.QueryError

	switch {
	case errors.Is(err, mgo.ErrNotFound):
		return errs.ErrNotFound
	case mgo.IsDup(err):
		return fmt.Errorf("%w: %s", errs.ErrDataConflict, err)
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.As(err, &qerr) && qerr.Code == codeMaxTimeMSExpired:
		return context.DeadlineExceeded
	case isConnectivity(err):
		r.logger.With(ctx).Errorf("mongodb unavailable: %s", err)
		return fmt.Errorf("%w: %s", errs.ErrStorageUnavailable, err)
	default:
		return err
	}
}

func isConnectivity(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) || errors.Is(err, io.EOF) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "no reachable servers") ||
		strings.Contains(msg, "Closed explicitly")
}
