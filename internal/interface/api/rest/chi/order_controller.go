package rest

import (
	"net/http"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/application/interfaces"
	"github.com/KretovDmitry/order-management-service/internal/application/policy"
	"github.com/KretovDmitry/order-management-service/internal/config"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
	"github.com/KretovDmitry/order-management-service/internal/interface/api/rest/middleware"
	"github.com/KretovDmitry/order-management-service/internal/interface/api/rest/request"
	"github.com/KretovDmitry/order-management-service/internal/interface/api/rest/response"
	"github.com/KretovDmitry/order-management-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type OrderController struct {
	service    interfaces.OrderService
	pagination config.Pagination
	logger     logger.Logger
}

// NewOrderController registers http.Handlers with additional options.
func NewOrderController(
	service interfaces.OrderService,
	pagination config.Pagination,
	logger logger.Logger,
	options ChiServerOptions,
) {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}

	c := OrderController{
		service:    service,
		pagination: pagination,
		logger:     logger,
	}

	r.Group(func(r chi.Router) {
		for _, mw := range options.Middlewares {
			r.Use(mw)
		}
		r.Post(options.BaseURL+"/orders", c.CreateOrder)
		r.Get(options.BaseURL+"/orders", c.ListOrders)
		r.Get(options.BaseURL+"/orders/{id}", c.GetOrder)

		// Admin only, rejected before the body is read.
		r.With(middleware.Permit(policy.UpdateOrder, logger)).
			Patch(options.BaseURL+"/orders/{id}", c.UpdateOrderStatus)
		r.With(middleware.Permit(policy.DeleteOrder, logger)).
			Delete(options.BaseURL+"/orders/{id}", c.DeleteOrder)
	})
}

// Create new order (POST /orders HTTP/1.1).
func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	// Get user from context.
	u, found := user.FromContext(r.Context())
	if !found {
		c.ErrorHandlerFunc(w, r, errs.ErrUnauthorized)
		return
	}

	// Read and decode payload.
	var p request.CreateOrder
	if err := decodeJSON(r, &p, false); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	// Validate payload.
	params, err := p.ToParams()
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	order, err := c.service.CreateOrder(r.Context(), u, params)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	w.Header().Set("Location", "/orders/"+string(order.ID))

	// Status 201.
	if err = response.WriteJSON(w, http.StatusCreated, response.NewOrderFromEntity(order)); err != nil {
		c.logger.With(r.Context()).Errorf("order controller: write response: %s", err)
	}
}

// Get order by id (GET /orders/{id} HTTP/1.1).
func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		c.ErrorHandlerFunc(w, r, errs.ErrUnauthorized)
		return
	}

	order, err := c.service.GetOrder(r.Context(), u, entities.OrderID(chi.URLParam(r, "id")))
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = response.WriteJSON(w, http.StatusOK, response.NewOrderFromEntity(order)); err != nil {
		c.logger.With(r.Context()).Errorf("order controller: write response: %s", err)
	}
}

// List orders (GET /orders HTTP/1.1). Customers only see their own.
func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		c.ErrorHandlerFunc(w, r, errs.ErrUnauthorized)
		return
	}

	params, err := request.ParseListOrders(r.URL.Query(),
		c.pagination.DefaultPageSize, c.pagination.MaxPageSize)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	page, err := c.service.ListOrders(r.Context(), u, params)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = response.WriteJSON(w, http.StatusOK, response.NewListOrdersFromEntity(page)); err != nil {
		c.logger.With(r.Context()).Errorf("order controller: write response: %s", err)
	}
}

// Update order status (PATCH /orders/{id} HTTP/1.1).
func (c *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		c.ErrorHandlerFunc(w, r, errs.ErrUnauthorized)
		return
	}

	// Only the status may be changed.
	var p request.UpdateOrder
	if err := decodeJSON(r, &p, true); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	status, err := p.ToStatus()
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	order, err := c.service.UpdateOrderStatus(r.Context(), u, entities.OrderID(chi.URLParam(r, "id")), status)
	if err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	if err = response.WriteJSON(w, http.StatusOK, response.NewOrderFromEntity(order)); err != nil {
		c.logger.With(r.Context()).Errorf("order controller: write response: %s", err)
	}
}

// Delete order (DELETE /orders/{id} HTTP/1.1).
func (c *OrderController) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	u, found := user.FromContext(r.Context())
	if !found {
		c.ErrorHandlerFunc(w, r, errs.ErrUnauthorized)
		return
	}

	if err := c.service.DeleteOrder(r.Context(), u, entities.OrderID(chi.URLParam(r, "id"))); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	// Status 204.
	w.WriteHeader(http.StatusNoContent)
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func (c *OrderController) ErrorHandlerFunc(w http.ResponseWriter, r *http.Request, err error) {
	handleError(w, r, c.logger, "order controller", err)
}
